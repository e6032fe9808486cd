package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service sends transactional mail through Sendgrid. With an empty API key
// sending becomes a no-op, which keeps local development and tests offline.
type Service struct {
	apiKey string
	from   string
}

func NewService(apiKey, from string) *Service {
	return &Service{apiKey: apiKey, from: from}
}

func (s *Service) SendEnrollmentConfirmation(toEmail, toName, courseTitle string) error {
	if s.apiKey == "" {
		return nil
	}

	from := mail.NewEmail("LearnHub", s.from)
	to := mail.NewEmail(toName, toEmail)
	subject := fmt.Sprintf("You are enrolled in %s", courseTitle)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour enrollment in %s is confirmed. Happy learning!\n",
		toName, courseTitle,
	)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	resp, err := sendgrid.NewSendClient(s.apiKey).Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
