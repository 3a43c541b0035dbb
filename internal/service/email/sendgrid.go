package email

import (
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid delivers messages through the SendGrid v3 API.
type SendGrid struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGrid(key, fromName, fromEmail string) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(key),
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

// Send delivers each message in its own goroutine. Failures are logged and
// dropped.
func (s *SendGrid) Send(messages ...Message) {
	for _, msg := range messages {
		msg := msg
		go func() {
			m := sgmail.NewSingleEmail(
				s.from,
				msg.Subject,
				sgmail.NewEmail(msg.ToName, msg.ToEmail),
				msg.Body,
				"",
			)
			resp, err := s.client.Send(m)
			if err != nil {
				log.Printf("warning: failed to send email to %s: %v", msg.ToEmail, err)
				return
			}
			if resp.StatusCode >= 400 {
				log.Printf("warning: sendgrid returned %d for email to %s", resp.StatusCode, msg.ToEmail)
			}
		}()
	}
}
