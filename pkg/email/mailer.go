// Package email delivers transactional mail. Production uses Postmark; a
// logging sender stands in for local development.
package email

import (
	"context"
	"fmt"
	"regexp"
)

// Sender sends a single transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the message has a deliverable recipient and content.
func (m Message) Validate() error {
	if m.To == "" || !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q", ErrInvalidMessage, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidMessage)
	}
	if m.BodyHTML == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	return nil
}
