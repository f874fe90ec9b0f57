// Package notify delivers user-facing notifications. Notifications are
// fire-and-forget: they are logged and pushed to every connected websocket
// client without waiting for delivery.
package notify

import "time"

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Notification is the frame sent to clients.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Sink accepts notifications. Notify must not block.
type Sink interface {
	Notify(kind Kind, title, message string)
}
