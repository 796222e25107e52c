package errors

// Fallback texts shown to the user when a turn fails.
const (
	// FallbackReply replaces the pending placeholder after any failure.
	FallbackReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

	// TimeoutBanner is the error string for a turn that hit the client-side timeout.
	TimeoutBanner = "The request took too long. Please try again."

	// connectionBannerPrefix starts the error string for every other failure.
	connectionBannerPrefix = "Connection issue"
)

// FormatFailure converts a failed turn into the assistant fallback message and
// the user-visible error string. The output depends only on the error's type
// and text, so repeated calls with the same error produce the same strings.
func FormatFailure(err error) (fallback, banner string) {
	switch {
	case err == nil:
		return FallbackReply, connectionBannerPrefix + ". Please try again."
	case IsTimeoutError(err):
		return FallbackReply, TimeoutBanner
	default:
		return FallbackReply, connectionBannerPrefix + ": " + err.Error()
	}
}
