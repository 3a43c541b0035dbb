// Package email mirrors in-app notifications to a user's mailbox.
// Delivery is best-effort and asynchronous; the portal never waits for or
// reacts to the outcome.
package email

import "log"

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Sender delivers messages without reporting failures to the caller.
type Sender interface {
	Send(messages ...Message)
}

// Console writes messages to the log. Used in development and as the
// fallback when no SendGrid key is configured.
type Console struct{}

func (Console) Send(messages ...Message) {
	for _, msg := range messages {
		log.Printf("email to %s <%s>: %s: %s", msg.ToName, msg.ToEmail, msg.Subject, msg.Body)
	}
}
