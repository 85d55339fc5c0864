package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendGenerationCompleted(toEmail, questionXPath, action, language string) error
	SendGenerationFailed(toEmail, questionXPath, action, language string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendGenerationCompleted(toEmail, questionXPath, action, language string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Automatic annotation ready for review")

	body := fmt.Sprintf(
		"The %s (%s) for question %q finished and is waiting for your review. Open the submission to accept or edit it.",
		action, language, questionXPath,
	)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendGenerationFailed(toEmail, questionXPath, action, language string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Automatic annotation failed")

	body := fmt.Sprintf(
		"The %s (%s) for question %q could not be generated. You can retry from the submission view or enter it manually.",
		action, language, questionXPath,
	)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}
