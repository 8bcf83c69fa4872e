// Package transport carries messages between users and the agent runtime:
// an outbound Messenger abstraction, a per-user proxy that remembers the
// recent dialog, and an HTTP gateway exposing the chat surface.
package transport

import "context"

// Messenger delivers agent text to a user. It is the single outbound
// operation the runtime performs.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string) error
}
