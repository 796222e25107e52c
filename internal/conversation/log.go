// Package conversation owns the chat message log and drives one
// request/response cycle per user turn.
package conversation

import "github.com/diogo/folio/internal/models"

// The functions in this file never modify their input slice; each returns a
// fresh slice so snapshots handed to the presentation layer stay stable.

// Append returns log with m added at the end
func Append(log []models.Message, m models.Message) []models.Message {
	out := make([]models.Message, len(log), len(log)+1)
	copy(out, log)
	return append(out, m)
}

// AppendPending returns log with a pending placeholder at the end.
// If log already holds a placeholder it is returned unchanged.
func AppendPending(log []models.Message) []models.Message {
	if HasPending(log) {
		return log
	}
	return Append(log, models.NewPendingMessage())
}

// DropPending returns log without any pending placeholder
func DropPending(log []models.Message) []models.Message {
	out := make([]models.Message, 0, len(log))
	for _, m := range log {
		if !m.IsPending() {
			out = append(out, m)
		}
	}
	return out
}

// Finals returns the final messages of log in order
func Finals(log []models.Message) []models.Message {
	return DropPending(log)
}

// History maps the final messages of log to the wire shape
func History(log []models.Message) []models.WireMessage {
	history := make([]models.WireMessage, 0, len(log))
	for _, m := range log {
		if m.IsPending() {
			continue
		}
		history = append(history, m.Wire())
	}
	return history
}

// HasPending reports whether log holds a placeholder
func HasPending(log []models.Message) bool {
	return CountPending(log) > 0
}

// CountPending counts the placeholders in log
func CountPending(log []models.Message) int {
	n := 0
	for _, m := range log {
		if m.IsPending() {
			n++
		}
	}
	return n
}

// Consistent reports whether log holds at most one placeholder and, if it
// holds one, that it is the last entry.
func Consistent(log []models.Message) bool {
	switch CountPending(log) {
	case 0:
		return true
	case 1:
		return log[len(log)-1].IsPending()
	default:
		return false
	}
}
