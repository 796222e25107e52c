// Package api provides the HTTP client for the portfolio frontend API.
package api

// GJSON paths for extracting values from API responses.
const (
	// PathContent holds the assistant reply in a chat success body
	PathContent = "content"

	// PathError holds the failure detail in an error body
	PathError = "error"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 1 << 20

// maxErrorBodySize caps the body detail kept on an APIError
const maxErrorBodySize = 4096

// maxInlineDetail is the longest plain-text error body used as the detail
const maxInlineDetail = 200
