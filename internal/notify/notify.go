// Package notify sends admin notifications about corpus and model changes.
package notify

import "context"

// Notifier delivers a short text to the administrators.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
