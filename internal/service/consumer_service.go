package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-annotation-be/internal/constant"
	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/pkg/logger"
	"ai-annotation-be/internal/repository/specification"
	"ai-annotation-be/internal/repository/unitofwork"
	"ai-annotation-be/pkg/events"
	pktNats "ai-annotation-be/pkg/nats"
	"ai-annotation-be/pkg/provider"
	"ai-annotation-be/pkg/supplement"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the generation job queue: it calls the annotation
// provider and moves the pending version to a terminal status.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub             *gochannel.GoChannel
	topicName          string
	uowFactory         unitofwork.RepositoryFactory
	annotationProvider provider.AnnotationProvider
	eventPublisher     *pktNats.Publisher
	supplementService  ISupplementService
	logger             logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	annotationProvider provider.AnnotationProvider,
	eventPublisher *pktNats.Publisher,
	supplementService ISupplementService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:             pubSub,
		topicName:          topicName,
		uowFactory:         uowFactory,
		annotationProvider: annotationProvider,
		eventPublisher:     eventPublisher,
		supplementService:  supplementService,
		logger:             log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishGenerationJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal generation job", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads never become valid; do not retry
		return
	}

	cs.logger.Info("ConsumerService", "Processing generation job", map[string]interface{}{
		"version_uuid": payload.VersionUuid,
		"action":       payload.Action,
		"language":     payload.Language,
	})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	version, err := uow.VersionRepository().FindOne(ctx, specification.ByUuid{Uuid: payload.VersionUuid})
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to load pending version", map[string]interface{}{
			"version_uuid": payload.VersionUuid,
			"error":        err.Error(),
		})
		msg.Nack()
		return
	}
	if version == nil || version.Status != constant.StatusInProgress {
		// Discarded or already completed while queued. Nothing to do.
		msg.Ack()
		return
	}

	value, genErr := cs.generate(ctx, payload)

	status := constant.StatusCompleted
	var valuePtr *string
	if genErr != nil {
		status = constant.StatusFailed
		cs.logger.Warn("ConsumerService", "Provider generation failed", map[string]interface{}{
			"version_uuid": payload.VersionUuid,
			"action":       payload.Action,
			"error":        genErr.Error(),
		})
	} else {
		valuePtr = &value
	}

	if err := uow.VersionRepository().Complete(ctx, payload.VersionUuid, status, valuePtr); err != nil {
		cs.logger.Error("ConsumerService", "Failed to finalize version", map[string]interface{}{
			"version_uuid": payload.VersionUuid,
			"error":        err.Error(),
		})
		msg.Nack()
		return
	}

	// Refresh the in-memory store so open sessions see the terminal state on
	// their next poll even before the poller's own re-fetch lands.
	if _, err := cs.supplementService.Refresh(ctx, payload.SubmissionRootId, payload.QuestionXPath); err != nil {
		cs.logger.Warn("ConsumerService", "Post-completion refresh failed", map[string]interface{}{
			"version_uuid": payload.VersionUuid,
			"error":        err.Error(),
		})
	}

	cs.publishLifecycle(ctx, payload, status)
	msg.Ack()
}

func (cs *consumerService) generate(ctx context.Context, payload dto.PublishGenerationJobMessage) (string, error) {
	switch constant.KindOfAction(payload.Action) {
	case constant.KindTranscription:
		return cs.annotationProvider.Transcribe(ctx, provider.TranscriptionRequest{
			MediaURL: payload.MediaURL,
			Language: payload.Language,
		})
	case constant.KindTranslation:
		return cs.translate(ctx, payload)
	default:
		return "", errors.New("action has no automatic generator: " + payload.Action)
	}
}

// translate resolves the current transcript and sends it to the provider. The
// transcript is the single source text for every translation language.
func (cs *consumerService) translate(ctx context.Context, payload dto.PublishGenerationJobMessage) (string, error) {
	slice, err := cs.supplementService.Refresh(ctx, payload.SubmissionRootId, payload.QuestionXPath)
	if err != nil {
		return "", err
	}

	transcript := supplement.LatestTranscript(slice)
	if !supplement.HasValue(transcript) {
		return "", errors.New("no transcript available to translate")
	}

	return cs.annotationProvider.Translate(ctx, provider.TranslationRequest{
		SourceText:     *transcript.Data.Value,
		SourceLanguage: transcript.Data.Language,
		TargetLanguage: payload.Language,
	})
}

func (cs *consumerService) publishLifecycle(ctx context.Context, payload dto.PublishGenerationJobMessage, status string) {
	if cs.eventPublisher == nil {
		return
	}

	eventType := events.TypeGenerationCompleted
	if status == constant.StatusFailed {
		eventType = events.TypeGenerationFailed
	}

	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"version_uuid":       payload.VersionUuid,
			"submission_root_id": payload.SubmissionRootId,
			"question_xpath":     payload.QuestionXPath,
			"action":             payload.Action,
			"language":           payload.Language,
		},
		OccurredAt: time.Now(),
	}
	// Notifications are auxiliary; a publish failure must not fail the job.
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to publish lifecycle event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
