// Package models contains data types and constants for the portfolio chat API.
package models

import "time"

// Endpoints of the portfolio frontend API
const (
	DefaultBaseURL = "http://localhost:3000"
	EndpointChat   = "/api/chat"
)

// Content resources served by the backend, keyed by CLI name
var ContentResources = map[string]string{
	"projects":     "/api/projects",
	"certificates": "/api/certificates",
	"posts":        "/api/blog/posts",
	"categories":   "/api/blog/categories",
	"products":     "/api/products",
}

// DefaultChatTimeout bounds a single chat turn
const DefaultChatTimeout = 30 * time.Second

// DefaultHeaders returns the default headers for chat requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "folio-cli",
	}
}
