package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-annotation-be/internal/constant"
	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/pkg/logger"
	"ai-annotation-be/internal/repository/memory"
	"ai-annotation-be/pkg/access"
	"ai-annotation-be/pkg/events"
	pktNats "ai-annotation-be/pkg/nats"
	"ai-annotation-be/pkg/store"
	"ai-annotation-be/pkg/supplement"

	"github.com/google/uuid"
)

// IWorkflowService drives the review workflow for one annotation group at a
// time: opening a question view, picking a language, drafting, saving
// (accepting or forking), requesting automatic generation and discarding.
// Every transition is explicit; there is no state outside the session.
type IWorkflowService interface {
	Open(ctx context.Context, userId, role string, req *dto.OpenWorkflowRequest) (*dto.WorkflowStateResponse, error)
	SelectLanguage(ctx context.Context, sessionId, language string) (*dto.WorkflowStateResponse, error)
	UpdateDraft(ctx context.Context, req *dto.UpdateDraftRequest) (*dto.WorkflowStateResponse, error)
	State(ctx context.Context, sessionId string) (*dto.WorkflowStateResponse, error)
	SaveManual(ctx context.Context, userId, role string, req *dto.SaveManualRequest) (*dto.SaveManualResponse, error)
	Accept(ctx context.Context, userId, role string, req *dto.AcceptRequest) (*dto.AcceptResponse, error)
	RequestAutomatic(ctx context.Context, userId, role, organizationId string, req *dto.RequestAutomaticRequest) (*dto.RequestAutomaticResponse, error)
	Discard(ctx context.Context, userId, role string, req *dto.DiscardRequest) (*dto.DiscardResponse, error)
	Close(ctx context.Context, req *dto.CloseWorkflowRequest) error
}

type workflowService struct {
	supplementService ISupplementService
	reconcileService  IReconcileService
	usageService      IUsageService
	pollerService     IPollerService
	publisherService  IPublisherService
	sessions          *memory.ReviewSessionRepository
	accessVerifier    *access.Verifier
	eventPublisher    *pktNats.Publisher
	logger            logger.ILogger
}

func NewWorkflowService(
	supplementService ISupplementService,
	reconcileService IReconcileService,
	usageService IUsageService,
	pollerService IPollerService,
	publisherService IPublisherService,
	sessions *memory.ReviewSessionRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IWorkflowService {
	return &workflowService{
		supplementService: supplementService,
		reconcileService:  reconcileService,
		usageService:      usageService,
		pollerService:     pollerService,
		publisherService:  publisherService,
		sessions:          sessions,
		accessVerifier:    access.NewVerifier(),
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

// Open establishes the session for a (user, question, kind, group) and
// derives its initial state from the resolved slice. Reopening the same group
// returns a fresh evaluation under the same session id.
func (c *workflowService) Open(ctx context.Context, userId, role string, req *dto.OpenWorkflowRequest) (*dto.WorkflowStateResponse, error) {
	canChange := c.accessVerifier.CanChangeSubmission(role, userId, "")

	slice, err := c.supplementService.Refresh(ctx, req.SubmissionRootId, req.QuestionXPath)
	if err != nil {
		return nil, err
	}

	groupKey := req.Language
	if req.Kind == constant.KindQual {
		groupKey = req.QualQuestionUuid
	}

	session := &store.ReviewSession{
		ID:               store.SessionKey(userId, req.SubmissionRootId.String(), req.QuestionXPath, req.Kind, groupKey),
		UserID:           userId,
		Role:             role,
		SubmissionRootID: req.SubmissionRootId.String(),
		QuestionXPath:    req.QuestionXPath,
		Kind:             req.Kind,
		GroupKey:         groupKey,
	}

	// Translation without a chosen language starts at the selector.
	if req.Kind == constant.KindTranslation && groupKey == "" {
		session.State = store.StateSelectLanguage
	} else {
		c.evaluate(session, slice, canChange)
	}

	session.ObservedGeneration = c.supplementService.Store(req.SubmissionRootId, req.QuestionXPath).Generation()
	c.sessions.Save(session)

	if hasInProgress(slice) {
		c.pollerService.Watch(req.SubmissionRootId, req.QuestionXPath)
	}

	return c.toStateResponse(session, slice, canChange), nil
}

// evaluate derives the session state from the latest resolved item of its
// group. The one non-obvious rule: a completed automatic result nobody has
// accepted yet opens directly in edit mode, seeded with the generated value,
// so the reviewer's first keystroke is already a correction.
func (c *workflowService) evaluate(session *store.ReviewSession, slice supplement.Slice, canChange bool) {
	latest := resolveGroup(slice, session.Kind, session.GroupKey)

	session.Draft = nil
	session.ReviewedVersionUuid = ""
	session.SeedValue = nil

	switch {
	case latest == nil:
		session.State = store.StateBegin
	case latest.Data.Status == supplement.StatusInProgress:
		session.State = store.StateAutomaticPending
		session.AwaitingGeneration = true
	case !supplement.HasValue(latest):
		// Cleared by a discard, or a failed generation. Either way there is
		// nothing to review.
		session.State = store.StateBegin
		session.AwaitingGeneration = false
	case supplement.IsAutomatic(latest) && !supplement.IsAccepted(latest) && canChange:
		session.State = store.StateEditing
		session.AwaitingGeneration = false
		session.ReviewedVersionUuid = latest.Uuid.String()
		session.SeedValue = latest.Data.Value
		session.Draft = &store.Draft{LanguageCode: session.GroupKey, Value: latest.Data.Value}
	default:
		session.State = store.StateViewing
		session.AwaitingGeneration = false
	}
}

// SelectLanguage resolves the selector into a concrete group. The old
// selector session is dropped; the group session takes over.
func (c *workflowService) SelectLanguage(ctx context.Context, sessionId, language string) (*dto.WorkflowStateResponse, error) {
	session, ok := c.sessions.Get(sessionId)
	if !ok {
		return nil, dto.ErrSessionNotFound
	}
	if session.State != store.StateSelectLanguage {
		return nil, fmt.Errorf("cannot select a language from state %s", session.State)
	}
	if language == "" {
		return nil, errors.New("language is required")
	}

	// Languages already carrying versions are hidden from the selector; reject
	// them here too so a hand-crafted request cannot pick one. Their groups are
	// reached by opening the question with the language directly.
	slice, _ := c.snapshot(session)
	if _, taken := supplement.LatestTranslationsByLanguage(slice, true)[language]; taken {
		return nil, fmt.Errorf("language %s is already annotated for this question", language)
	}

	submissionRootId, err := uuid.Parse(session.SubmissionRootID)
	if err != nil {
		return nil, err
	}

	req := &dto.OpenWorkflowRequest{
		SubmissionRootId: submissionRootId,
		QuestionXPath:    session.QuestionXPath,
		Kind:             session.Kind,
		Language:         language,
	}
	c.sessions.Delete(sessionId)

	return c.Open(ctx, session.UserID, session.Role, req)
}

// UpdateDraft records an unsaved edit. Drafts never touch the database.
func (c *workflowService) UpdateDraft(ctx context.Context, req *dto.UpdateDraftRequest) (*dto.WorkflowStateResponse, error) {
	session, ok := c.sessions.Get(req.SessionId)
	if !ok {
		return nil, dto.ErrSessionNotFound
	}
	if !c.accessVerifier.CanChangeSubmission(session.Role, session.UserID, "") {
		return nil, errors.New("not allowed to change this submission")
	}

	// Drafting from BEGIN starts a first manual value; from VIEWING it starts
	// an edit over the resolved one.
	switch session.State {
	case store.StateBegin:
		session.State = store.StateManualCreate
	case store.StateViewing:
		session.State = store.StateEditing
	}

	if !session.CanEdit() {
		return nil, fmt.Errorf("cannot draft from state %s", session.State)
	}

	session.Draft = &store.Draft{LanguageCode: session.GroupKey, Value: req.Value}
	c.sessions.Save(session)

	slice, _ := c.snapshot(session)
	return c.toStateResponse(session, slice, true), nil
}

// State re-evaluates the session against the current store snapshot. While a
// generation is pending this is what moves the session out of
// AUTOMATIC_PENDING once the poller observes a terminal status.
func (c *workflowService) State(ctx context.Context, sessionId string) (*dto.WorkflowStateResponse, error) {
	session, ok := c.sessions.Get(sessionId)
	if !ok {
		return nil, dto.ErrSessionNotFound
	}

	canChange := c.accessVerifier.CanChangeSubmission(session.Role, session.UserID, "")
	slice, gen := c.snapshot(session)

	// Only re-derive when the store actually changed and the user is not
	// mid-draft; a concurrent refresh must not eat unsaved edits.
	if gen != session.ObservedGeneration && !session.CanEdit() && session.State != store.StateSelectLanguage {
		c.evaluate(session, slice, canChange)
		session.ObservedGeneration = gen
		c.sessions.Save(session)
	}

	return c.toStateResponse(session, slice, canChange), nil
}

// SaveManual persists the draft. If the draft was seeded from an unaccepted
// automatic version and came back unchanged, the save is an accept of that
// version; any edit forks a new manual version instead.
func (c *workflowService) SaveManual(ctx context.Context, userId, role string, req *dto.SaveManualRequest) (*dto.SaveManualResponse, error) {
	if !c.accessVerifier.CanChangeSubmission(role, userId, "") {
		return nil, errors.New("not allowed to change this submission")
	}

	groupKey := req.Language
	if req.Kind == constant.KindQual {
		groupKey = req.QualQuestionUuid
	}
	sessionId := store.SessionKey(userId, req.SubmissionRootId.String(), req.QuestionXPath, req.Kind, groupKey)
	session, hasSession := c.sessions.Get(sessionId)

	resume := c.pollerService.Suspend(req.SubmissionRootId, req.QuestionXPath)
	defer resume()

	// Accept path: unchanged review of an automatic result.
	if hasSession && session.ReviewedVersionUuid != "" && valuesEqual(session.SeedValue, req.Value) {
		reviewedUuid, err := uuid.Parse(session.ReviewedVersionUuid)
		if err == nil {
			if _, err := c.supplementService.Accept(ctx, req.SubmissionRootId, req.QuestionXPath, reviewedUuid); err != nil {
				return nil, &dto.SaveError{Err: err}
			}
			c.afterSave(ctx, session, events.TypeVersionAccepted, reviewedUuid)
			return &dto.SaveManualResponse{Uuid: reviewedUuid, Accepted: true, State: string(store.StateViewing)}, nil
		}
	}

	// Fork path: a new manual version under the kind's manual action.
	action := constant.ActionsOfKind(req.Kind)[0]
	param := entity.FeatureParam{Language: req.Language}
	if req.Kind == constant.KindQual {
		param = entity.FeatureParam{QuestionUuid: req.QualQuestionUuid}
	}
	if err := c.reconcileService.Reconcile(ctx, req.QuestionXPath, action, param); err != nil {
		return nil, err
	}

	version := &entity.Version{
		Uuid:             uuid.New(),
		SubmissionRootId: req.SubmissionRootId,
		QuestionXPath:    req.QuestionXPath,
		Action:           action,
		Language:         req.Language,
		QualQuestionUuid: req.QualQuestionUuid,
		Value:            req.Value,
	}
	if _, err := c.supplementService.CreateManual(ctx, version); err != nil {
		return nil, &dto.SaveError{Err: err}
	}

	c.afterSave(ctx, session, "", version.Uuid)
	return &dto.SaveManualResponse{Uuid: version.Uuid, Accepted: false, State: string(store.StateViewing)}, nil
}

// Accept confirms a specific automatic version as-is, stamping date_accepted
// and leaving the value and history untouched.
func (c *workflowService) Accept(ctx context.Context, userId, role string, req *dto.AcceptRequest) (*dto.AcceptResponse, error) {
	if !c.accessVerifier.CanChangeSubmission(role, userId, "") {
		return nil, errors.New("not allowed to change this submission")
	}

	resume := c.pollerService.Suspend(req.SubmissionRootId, req.QuestionXPath)
	defer resume()

	if _, err := c.supplementService.Accept(ctx, req.SubmissionRootId, req.QuestionXPath, req.VersionUuid); err != nil {
		return nil, &dto.SaveError{Err: err}
	}

	c.publishEvent(ctx, events.TypeVersionAccepted, req.VersionUuid, map[string]interface{}{
		"user_id": userId,
	})
	return &dto.AcceptResponse{Uuid: req.VersionUuid, State: string(store.StateViewing)}, nil
}

// RequestAutomatic meters, reconciles the feature, appends the in_progress
// placeholder and hands the job to the worker. The session sits in
// AUTOMATIC_PENDING until the poller observes a terminal status.
func (c *workflowService) RequestAutomatic(ctx context.Context, userId, role, organizationId string, req *dto.RequestAutomaticRequest) (*dto.RequestAutomaticResponse, error) {
	if !c.accessVerifier.CanChangeSubmission(role, userId, "") {
		return nil, errors.New("not allowed to change this submission")
	}

	var action string
	switch req.Kind {
	case constant.KindTranscription:
		action = constant.ActionAutomaticTranscription
	case constant.KindTranslation:
		action = constant.ActionAutomaticTranslation
	default:
		return nil, &dto.GenerationRequestError{Action: req.Kind, Language: req.Language,
			Err: errors.New("kind has no automatic generator")}
	}

	if err := c.usageService.CheckAndConsume(ctx, organizationId); err != nil {
		return nil, err
	}

	// Suspend before the feature write: it is part of the in-flight mutation a
	// poll must not interleave with.
	resume := c.pollerService.Suspend(req.SubmissionRootId, req.QuestionXPath)
	defer resume()

	if err := c.reconcileService.Reconcile(ctx, req.QuestionXPath, action, entity.FeatureParam{Language: req.Language}); err != nil {
		c.usageService.Refund(ctx, organizationId)
		return nil, err
	}

	version := &entity.Version{
		Uuid:             uuid.New(),
		SubmissionRootId: req.SubmissionRootId,
		QuestionXPath:    req.QuestionXPath,
		Action:           action,
		Language:         req.Language,
	}
	if _, err := c.supplementService.CreatePending(ctx, version); err != nil {
		c.usageService.Refund(ctx, organizationId)
		return nil, &dto.SaveError{Err: err}
	}

	job := dto.PublishGenerationJobMessage{
		VersionUuid:      version.Uuid,
		SubmissionRootId: req.SubmissionRootId,
		QuestionXPath:    req.QuestionXPath,
		Action:           action,
		Language:         req.Language,
		MediaURL:         req.MediaURL,
	}
	jobJson, err := json.Marshal(job)
	if err != nil {
		c.usageService.Refund(ctx, organizationId)
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, jobJson); err != nil {
		c.usageService.Refund(ctx, organizationId)
		return nil, &dto.GenerationRequestError{Action: action, Language: req.Language, Err: err}
	}

	sessionId := store.SessionKey(userId, req.SubmissionRootId.String(), req.QuestionXPath, req.Kind, req.Language)
	if session, ok := c.sessions.Get(sessionId); ok {
		session.State = store.StateAutomaticPending
		session.AwaitingGeneration = true
		session.Draft = nil
		c.sessions.Save(session)
	}

	c.pollerService.Watch(req.SubmissionRootId, req.QuestionXPath)
	c.publishEvent(ctx, events.TypeGenerationRequested, version.Uuid, map[string]interface{}{
		"action":   action,
		"language": req.Language,
		"user_id":  userId,
	})

	return &dto.RequestAutomaticResponse{Uuid: version.Uuid, State: string(store.StateAutomaticPending)}, nil
}

// Discard clears the group by appending a version whose value is nil. The
// history stays; only resolution changes.
func (c *workflowService) Discard(ctx context.Context, userId, role string, req *dto.DiscardRequest) (*dto.DiscardResponse, error) {
	if !c.accessVerifier.CanChangeSubmission(role, userId, "") {
		return nil, errors.New("not allowed to change this submission")
	}

	resume := c.pollerService.Suspend(req.SubmissionRootId, req.QuestionXPath)
	defer resume()

	action := constant.ActionsOfKind(req.Kind)[0]
	version := &entity.Version{
		Uuid:             uuid.New(),
		SubmissionRootId: req.SubmissionRootId,
		QuestionXPath:    req.QuestionXPath,
		Action:           action,
		Language:         req.Language,
		QualQuestionUuid: req.QualQuestionUuid,
	}
	if _, _, err := c.supplementService.Discard(ctx, version); err != nil {
		return nil, &dto.SaveError{Err: err}
	}

	groupKey := req.Language
	if req.Kind == constant.KindQual {
		groupKey = req.QualQuestionUuid
	}
	sessionId := store.SessionKey(userId, req.SubmissionRootId.String(), req.QuestionXPath, req.Kind, groupKey)
	if session, ok := c.sessions.Get(sessionId); ok {
		session.State = store.StateBegin
		session.Draft = nil
		session.ReviewedVersionUuid = ""
		session.SeedValue = nil
		c.sessions.Save(session)
	}

	c.publishEvent(ctx, events.TypeVersionDiscarded, version.Uuid, map[string]interface{}{
		"action":  action,
		"user_id": userId,
	})

	return &dto.DiscardResponse{Uuid: version.Uuid, State: string(store.StateBegin)}, nil
}

// Close tears the session down and releases every resource scoped to the
// question view. Outstanding generations keep running in the worker; only the
// watching stops.
func (c *workflowService) Close(ctx context.Context, req *dto.CloseWorkflowRequest) error {
	session, ok := c.sessions.Get(req.SessionId)
	if !ok {
		return nil // closing an expired session is a no-op
	}

	submissionRootId, err := uuid.Parse(session.SubmissionRootID)
	if err == nil {
		c.pollerService.Stop(submissionRootId, session.QuestionXPath)
		c.supplementService.Release(submissionRootId, session.QuestionXPath)
	}
	c.sessions.Delete(req.SessionId)
	return nil
}

func (c *workflowService) afterSave(ctx context.Context, session *store.ReviewSession, eventType string, versionUuid uuid.UUID) {
	if session != nil {
		session.State = store.StateViewing
		session.Draft = nil
		session.ReviewedVersionUuid = ""
		session.SeedValue = nil
		c.sessions.Save(session)
	}
	if eventType != "" {
		c.publishEvent(ctx, eventType, versionUuid, nil)
	}
}

func (c *workflowService) publishEvent(ctx context.Context, eventType string, versionUuid uuid.UUID, extra map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}
	data := map[string]interface{}{"version_uuid": versionUuid}
	for k, v := range extra {
		data[k] = v
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("WorkflowService", "Failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

func (c *workflowService) snapshot(session *store.ReviewSession) (supplement.Slice, uint64) {
	submissionRootId, err := uuid.Parse(session.SubmissionRootID)
	if err != nil {
		return supplement.Slice{}, 0
	}
	return c.supplementService.Store(submissionRootId, session.QuestionXPath).Snapshot()
}

func (c *workflowService) toStateResponse(session *store.ReviewSession, slice supplement.Slice, canChange bool) *dto.WorkflowStateResponse {
	resp := &dto.WorkflowStateResponse{
		SessionId: session.ID,
		State:     string(session.State),
		CanChange: canChange,
		Seed:      session.SeedValue,
	}
	if session.Draft != nil {
		resp.Draft = session.Draft.Value
	}
	if session.State == store.StateSelectLanguage {
		for lang := range supplement.LatestTranslationsByLanguage(slice, true) {
			resp.HiddenLanguages = append(resp.HiddenLanguages, lang)
		}
	}
	return resp
}

func resolveGroup(slice supplement.Slice, kind, groupKey string) *supplement.VersionItem {
	switch kind {
	case constant.KindTranscription:
		return supplement.LatestTranscript(slice)
	case constant.KindTranslation:
		return supplement.LatestTranslation(slice, groupKey)
	case constant.KindQual:
		return supplement.LatestQual(slice, groupKey)
	default:
		return nil
	}
}

func valuesEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
