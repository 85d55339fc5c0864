package service

import (
	"context"
	"fmt"

	"ai-annotation-be/internal/pkg/logger"
	"ai-annotation-be/internal/pkg/mailer"
	"ai-annotation-be/pkg/events"
	pktNats "ai-annotation-be/pkg/nats"
)

// NotificationService turns generation lifecycle events into emails to the
// reviewer. It runs off the NATS bus so a mail outage never blocks the
// generation pipeline.
type NotificationService struct {
	subscriber   *pktNats.Subscriber
	emailService mailer.IEmailService
	// Fallback recipient for events without a user email; typically the
	// reviewing team's shared inbox.
	defaultRecipient string
	logger           logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, email mailer.IEmailService, defaultRecipient string, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber:       sub,
		emailService:     email,
		defaultRecipient: defaultRecipient,
		logger:           log,
	}
}

// Start begins listening to the event bus with a durable consumer, so events
// published while the service was down are still delivered.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("annotation.>", "annotation-notifier", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.logger.Info("NotificationService", "Listening for generation lifecycle events", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	xpath, _ := payload["question_xpath"].(string)
	action, _ := payload["action"].(string)
	language, _ := payload["language"].(string)

	recipient, _ := payload["user_email"].(string)
	if recipient == "" {
		recipient = s.defaultRecipient
	}
	if recipient == "" {
		return nil // nowhere to send; not an error worth redelivery
	}

	var err error
	switch event.EventType() {
	case events.TypeGenerationCompleted:
		err = s.emailService.SendGenerationCompleted(recipient, xpath, action, language)
	case events.TypeGenerationFailed:
		err = s.emailService.SendGenerationFailed(recipient, xpath, action, language)
	default:
		// GENERATION_REQUESTED is informational only.
		return nil
	}

	if err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("Failed to send email for %s", event.EventType()), map[string]interface{}{
			"recipient": recipient,
			"error":     err.Error(),
		})
		return err
	}
	return nil
}
