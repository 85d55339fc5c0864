package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-annotation-be/internal/constant"
	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/repository/memory"
	"ai-annotation-be/pkg/store"

	"github.com/google/uuid"
)

type workflowFixture struct {
	svc        IWorkflowService
	factory    *fakeRepositoryFactory
	supplement ISupplementService
	usage      *fakeUsageService
	poller     *fakePollerService
	publisher  *fakePublisherService
	sessions   *memory.ReviewSessionRepository
}

func newWorkflowFixture() *workflowFixture {
	factory := newFakeRepositoryFactory()
	supplementSvc := NewSupplementService(factory)
	usage := &fakeUsageService{}
	poller := &fakePollerService{}
	publisher := &fakePublisherService{}
	sessions := memory.NewReviewSessionRepository()

	svc := NewWorkflowService(
		supplementSvc,
		NewReconcileService(factory, nopLogger{}),
		usage,
		poller,
		publisher,
		sessions,
		nil, // no event bus in unit tests
		nopLogger{},
	)
	return &workflowFixture{
		svc:        svc,
		factory:    factory,
		supplement: supplementSvc,
		usage:      usage,
		poller:     poller,
		publisher:  publisher,
		sessions:   sessions,
	}
}

func seedVersion(t *testing.T, f *workflowFixture, v *entity.Version) *entity.Version {
	t.Helper()
	if err := f.factory.uow.versionRepo.Create(context.Background(), v); err != nil {
		t.Fatalf("seed version: %v", err)
	}
	return v
}

var (
	testSubmission = uuid.MustParse("99999999-9999-9999-9999-999999999999")
	testXPath      = "interview/audio_response"
)

func TestOpenEmptyHistoryStartsAtBegin(t *testing.T) {
	f := newWorkflowFixture()

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if res.State != string(store.StateBegin) {
		t.Errorf("expected BEGIN, got %s", res.State)
	}
	if !res.CanChange {
		t.Error("editor must be able to change")
	}
}

func TestOpenViewerCannotChange(t *testing.T) {
	f := newWorkflowFixture()
	seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})

	res, err := f.svc.Open(context.Background(), "user-1", "viewer", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	// Viewers never land in edit mode, even over an unaccepted automatic
	// result.
	if res.State != string(store.StateViewing) {
		t.Errorf("expected VIEWING for a viewer, got %s", res.State)
	}
	if res.CanChange {
		t.Error("viewer must not be able to change")
	}
}

func TestOpenUnacceptedAutomaticGoesStraightToEditing(t *testing.T) {
	f := newWorkflowFixture()
	v := seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if res.State != string(store.StateEditing) {
		t.Fatalf("expected EDITING over an unreviewed automatic result, got %s", res.State)
	}
	if res.Seed == nil || *res.Seed != "generated text" {
		t.Errorf("expected the draft seeded with the generated value, got %v", res.Seed)
	}

	session, ok := f.sessions.Get(res.SessionId)
	if !ok {
		t.Fatal("session not stored")
	}
	if session.ReviewedVersionUuid != v.Uuid.String() {
		t.Errorf("session must track the reviewed version, got %q", session.ReviewedVersionUuid)
	}
}

func TestOpenAcceptedAutomaticIsViewing(t *testing.T) {
	f := newWorkflowFixture()
	accepted := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	v := seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})
	if err := f.factory.uow.versionRepo.Accept(context.Background(), v.Uuid, accepted); err != nil {
		t.Fatalf("accept seed: %v", err)
	}

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if res.State != string(store.StateViewing) {
		t.Errorf("accepted results open in VIEWING, got %s", res.State)
	}
}

func TestOpenPendingGeneration(t *testing.T) {
	f := newWorkflowFixture()
	seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Status:           constant.StatusInProgress,
	})

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if res.State != string(store.StateAutomaticPending) {
		t.Errorf("expected AUTOMATIC_PENDING, got %s", res.State)
	}
	if len(f.poller.watched) != 1 {
		t.Error("opening over a pending generation must start the watcher")
	}
}

func TestSaveUnchangedSeedAcceptsInsteadOfForking(t *testing.T) {
	f := newWorkflowFixture()
	v := seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})

	_, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	res, err := f.svc.SaveManual(context.Background(), "user-1", "editor", &dto.SaveManualRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
		Value:            strPointer("generated text"), // untouched seed
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !res.Accepted {
		t.Fatal("unchanged seed must resolve to an accept")
	}
	if res.Uuid != v.Uuid {
		t.Errorf("accept must target the reviewed version, got %s", res.Uuid)
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 1 {
		t.Fatalf("accept must not append a version, history has %d records", len(stored))
	}
	if stored[0].DateAccepted == nil {
		t.Error("accepted version must carry date_accepted")
	}
	if f.poller.suspends == 0 || f.poller.resumes != f.poller.suspends {
		t.Error("save must suspend polling and resume it afterwards")
	}
}

func TestSaveEditedSeedForksManualVersion(t *testing.T) {
	f := newWorkflowFixture()
	v := seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})

	_, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	res, err := f.svc.SaveManual(context.Background(), "user-1", "editor", &dto.SaveManualRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
		Value:            strPointer("generated text, corrected"),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if res.Accepted {
		t.Fatal("an edited seed must fork, not accept")
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 2 {
		t.Fatalf("fork must append a record, history has %d", len(stored))
	}
	fork := stored[1]
	if fork.Action != constant.ActionManualTranscription {
		t.Errorf("fork lands under the manual action, got %s", fork.Action)
	}
	if *fork.Value != "generated text, corrected" {
		t.Errorf("fork value mismatch: %q", *fork.Value)
	}
	// The automatic original stays unaccepted and untouched.
	if stored[0].Uuid != v.Uuid || stored[0].DateAccepted != nil || *stored[0].Value != "generated text" {
		t.Error("the reviewed automatic version must remain as it was")
	}
}

func TestSaveManualDeniedForViewer(t *testing.T) {
	f := newWorkflowFixture()
	_, err := f.svc.SaveManual(context.Background(), "user-1", "viewer", &dto.SaveManualRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
		Value:            strPointer("nope"),
	})
	if err == nil {
		t.Fatal("viewer save must be rejected")
	}
}

func TestAcceptStampsVersionWithoutAppending(t *testing.T) {
	f := newWorkflowFixture()
	v := seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})

	res, err := f.svc.Accept(context.Background(), "user-1", "editor", &dto.AcceptRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		VersionUuid:      v.Uuid,
	})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if res.Uuid != v.Uuid {
		t.Errorf("accept must target the requested version, got %s", res.Uuid)
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 1 {
		t.Fatalf("accept must not append a version, history has %d records", len(stored))
	}
	if stored[0].DateAccepted == nil {
		t.Error("accepted version must carry date_accepted")
	}
	if *stored[0].Value != "generated text" {
		t.Error("accept must not alter the value")
	}

	// Accepting twice is an error; the first stamp is final.
	if _, err := f.svc.Accept(context.Background(), "user-1", "editor", &dto.AcceptRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		VersionUuid:      v.Uuid,
	}); err == nil {
		t.Fatal("second accept must be rejected")
	}
}

func TestAcceptDeniedForViewer(t *testing.T) {
	f := newWorkflowFixture()
	v := seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})

	if _, err := f.svc.Accept(context.Background(), "user-1", "viewer", &dto.AcceptRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		VersionUuid:      v.Uuid,
	}); err == nil {
		t.Fatal("viewer accept must be rejected")
	}
}

func TestStateUnknownSessionIsNotFound(t *testing.T) {
	f := newWorkflowFixture()
	_, err := f.svc.State(context.Background(), "no-such-session")
	if !errors.Is(err, dto.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRequestAutomaticCreatesPendingAndEnqueues(t *testing.T) {
	f := newWorkflowFixture()

	res, err := f.svc.RequestAutomatic(context.Background(), "user-1", "editor", "org-1", &dto.RequestAutomaticRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
		MediaURL:         "https://media.example/a.mp3",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.State != string(store.StateAutomaticPending) {
		t.Errorf("expected AUTOMATIC_PENDING, got %s", res.State)
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 1 || stored[0].Status != constant.StatusInProgress {
		t.Fatalf("expected one in_progress version, got %+v", stored)
	}
	if stored[0].Value != nil {
		t.Error("pending version must carry no value")
	}
	if len(f.publisher.payloads) != 1 {
		t.Fatalf("expected one queued job, got %d", len(f.publisher.payloads))
	}
	if f.usage.consumed != 1 {
		t.Errorf("expected one usage unit consumed, got %d", f.usage.consumed)
	}
	if len(f.poller.watched) != 1 {
		t.Error("request must start the completion watcher")
	}

	// Reconciliation ran before the version was created.
	feature, _ := f.factory.uow.featureRepo.FindByQuestionAction(context.Background(), testXPath, constant.ActionAutomaticTranscription)
	if feature == nil || !feature.HasLanguage("en") {
		t.Error("feature must be reconciled for the requested language")
	}
}

func TestRequestAutomaticBlockedByUsageLimit(t *testing.T) {
	f := newWorkflowFixture()
	f.usage.deny = &dto.LimitExceededError{Limit: 10, Used: 10}

	_, err := f.svc.RequestAutomatic(context.Background(), "user-1", "editor", "org-1", &dto.RequestAutomaticRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err == nil {
		t.Fatal("expected limit error")
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 0 {
		t.Error("blocked request must not touch the history")
	}
	if len(f.publisher.payloads) != 0 {
		t.Error("blocked request must not enqueue a job")
	}
}

func TestRequestAutomaticRefundsWhenEnqueueFails(t *testing.T) {
	f := newWorkflowFixture()
	f.publisher.fail = context.DeadlineExceeded

	_, err := f.svc.RequestAutomatic(context.Background(), "user-1", "editor", "org-1", &dto.RequestAutomaticRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err == nil {
		t.Fatal("expected enqueue failure to surface")
	}
	if f.usage.refunded != 1 {
		t.Errorf("expected the usage unit refunded, got %d", f.usage.refunded)
	}
}

func TestDiscardAppendsClearedVersion(t *testing.T) {
	f := newWorkflowFixture()
	seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionManualTranscription,
		Language:         "en",
		Value:            strPointer("hello"),
	})

	res, err := f.svc.Discard(context.Background(), "user-1", "editor", &dto.DiscardRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if res.State != string(store.StateBegin) {
		t.Errorf("discard returns to BEGIN, got %s", res.State)
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 2 {
		t.Fatalf("discard appends, never deletes: history has %d records", len(stored))
	}
	if stored[1].Value != nil {
		t.Error("the discard record must persist a null value, not an empty string")
	}
	if *stored[0].Value != "hello" {
		t.Error("earlier records must stay intact")
	}
}

func TestSelectLanguageHidesExistingTranslations(t *testing.T) {
	f := newWorkflowFixture()
	seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionManualTranslation,
		Language:         "es",
		Value:            strPointer("hola"),
	})

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranslation,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if res.State != string(store.StateSelectLanguage) {
		t.Fatalf("translation without a language starts at SELECT_LANGUAGE, got %s", res.State)
	}
	if len(res.HiddenLanguages) != 1 || res.HiddenLanguages[0] != "es" {
		t.Errorf("es already has a translation and must be hidden, got %v", res.HiddenLanguages)
	}

	next, err := f.svc.SelectLanguage(context.Background(), res.SessionId, "fr")
	if err != nil {
		t.Fatalf("select language failed: %v", err)
	}
	if next.State != string(store.StateBegin) {
		t.Errorf("fresh language starts at BEGIN, got %s", next.State)
	}
	if _, stillThere := f.sessions.Get(res.SessionId); stillThere {
		t.Error("selector session must be replaced by the group session")
	}
}

func TestSelectLanguageRejectsAnnotatedLanguage(t *testing.T) {
	f := newWorkflowFixture()
	seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionManualTranslation,
		Language:         "es",
		Value:            strPointer("hola"),
	})

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranslation,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := f.svc.SelectLanguage(context.Background(), res.SessionId, "es"); err == nil {
		t.Fatal("selecting an already annotated language must be rejected")
	}
	// The selector session survives a rejected pick.
	if session, ok := f.sessions.Get(res.SessionId); !ok || session.State != store.StateSelectLanguage {
		t.Error("rejected selection must leave the selector session intact")
	}
}

func TestSelectLanguageKeepsViewerReadOnly(t *testing.T) {
	f := newWorkflowFixture()
	seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranslation,
		Language:         "fr",
		Value:            strPointer("texte généré"),
		Status:           constant.StatusCompleted,
	})

	res, err := f.svc.Open(context.Background(), "user-1", "viewer", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranslation,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if res.State != string(store.StateSelectLanguage) || res.CanChange {
		t.Fatalf("viewer selector must be read-only, got %s canChange=%v", res.State, res.CanChange)
	}

	// The fr group already has an unaccepted automatic version; picking it is
	// rejected for anyone, so a viewer cannot slide into its edit seat.
	if _, err := f.svc.SelectLanguage(context.Background(), res.SessionId, "fr"); err == nil {
		t.Fatal("selecting the annotated language must be rejected")
	}

	// A fresh language carries the viewer's role into the group session.
	next, err := f.svc.SelectLanguage(context.Background(), res.SessionId, "de")
	if err != nil {
		t.Fatalf("select language failed: %v", err)
	}
	if next.State != string(store.StateBegin) || next.CanChange {
		t.Errorf("viewer group session must stay read-only, got %s canChange=%v", next.State, next.CanChange)
	}
	session, ok := f.sessions.Get(next.SessionId)
	if !ok || session.Role != "viewer" {
		t.Errorf("session must keep the caller's role, got %+v", session)
	}
}

func TestStateKeepsViewerOutOfEditing(t *testing.T) {
	f := newWorkflowFixture()
	v := seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Status:           constant.StatusInProgress,
	})

	res, err := f.svc.Open(context.Background(), "user-1", "viewer", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if res.State != string(store.StateAutomaticPending) {
		t.Fatalf("expected AUTOMATIC_PENDING, got %s", res.State)
	}

	// The generation completes while the viewer polls.
	if err := f.factory.uow.versionRepo.Complete(context.Background(), v.Uuid, constant.StatusCompleted, strPointer("generated text")); err != nil {
		t.Fatalf("complete seed: %v", err)
	}
	if _, err := f.supplement.Refresh(context.Background(), testSubmission, testXPath); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	state, err := f.svc.State(context.Background(), res.SessionId)
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	// A capable user would be dropped into EDITING here; a viewer lands in
	// VIEWING and stays read-only.
	if state.State != string(store.StateViewing) {
		t.Errorf("viewer must not be promoted into EDITING, got %s", state.State)
	}
	if state.CanChange {
		t.Error("re-polling must not grant the viewer change capability")
	}

	if _, err := f.svc.UpdateDraft(context.Background(), &dto.UpdateDraftRequest{
		SessionId: res.SessionId,
		Value:     strPointer("nope"),
	}); err == nil {
		t.Error("viewer drafting must be rejected")
	}
}

func TestFailedSaveKeepsDraftAndState(t *testing.T) {
	f := newWorkflowFixture()
	seedVersion(t, f, &entity.Version{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Action:           constant.ActionAutomaticTranscription,
		Language:         "en",
		Value:            strPointer("generated text"),
		Status:           constant.StatusCompleted,
	})

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := f.svc.UpdateDraft(context.Background(), &dto.UpdateDraftRequest{
		SessionId: res.SessionId,
		Value:     strPointer("generated text, corrected"),
	}); err != nil {
		t.Fatalf("draft failed: %v", err)
	}

	f.factory.uow.versionRepo.failCreate = errors.New("db down")

	_, err = f.svc.SaveManual(context.Background(), "user-1", "editor", &dto.SaveManualRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
		Value:            strPointer("generated text, corrected"),
	})
	var saveErr *dto.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected a SaveError, got %v", err)
	}

	// The session still holds the draft so the user can retry.
	session, ok := f.sessions.Get(res.SessionId)
	if !ok {
		t.Fatal("session must survive a failed save")
	}
	if session.State != store.StateEditing {
		t.Errorf("failed save must keep the editing state, got %s", session.State)
	}
	if session.Draft == nil || session.Draft.Value == nil || *session.Draft.Value != "generated text, corrected" {
		t.Errorf("failed save must preserve the draft, got %+v", session.Draft)
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 1 {
		t.Errorf("failed save must not append a version, history has %d records", len(stored))
	}
}

func TestRequestAutomaticSuspendsAroundReconcile(t *testing.T) {
	f := newWorkflowFixture()
	f.factory.uow.featureRepo.failCreate = errors.New("db down")

	_, err := f.svc.RequestAutomatic(context.Background(), "user-1", "editor", "org-1", &dto.RequestAutomaticRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err == nil {
		t.Fatal("expected the reconcile failure to surface")
	}

	// The feature write happens under the suspend token, and the token is
	// released on the failure path.
	if f.poller.suspends != 1 || f.poller.resumes != 1 {
		t.Errorf("expected one balanced suspend around the reconcile, got %d/%d", f.poller.suspends, f.poller.resumes)
	}
	if f.usage.refunded != 1 {
		t.Errorf("expected the usage unit refunded, got %d", f.usage.refunded)
	}

	stored, _ := f.factory.uow.versionRepo.FindSlice(context.Background(), testSubmission, testXPath)
	if len(stored) != 0 {
		t.Error("failed reconcile must not create a version")
	}
}

func TestDraftLifecycle(t *testing.T) {
	f := newWorkflowFixture()

	res, err := f.svc.Open(context.Background(), "user-1", "editor", &dto.OpenWorkflowRequest{
		SubmissionRootId: testSubmission,
		QuestionXPath:    testXPath,
		Kind:             constant.KindTranscription,
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	updated, err := f.svc.UpdateDraft(context.Background(), &dto.UpdateDraftRequest{
		SessionId: res.SessionId,
		Value:     strPointer("typing..."),
	})
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if updated.State != string(store.StateManualCreate) {
		t.Errorf("drafting from BEGIN enters MANUAL_CREATE, got %s", updated.State)
	}
	if updated.Draft == nil || *updated.Draft != "typing..." {
		t.Errorf("draft not echoed, got %v", updated.Draft)
	}

	// Close drops the session and its scoped resources.
	if err := f.svc.Close(context.Background(), &dto.CloseWorkflowRequest{SessionId: res.SessionId}); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, ok := f.sessions.Get(res.SessionId); ok {
		t.Error("session must be gone after close")
	}
	if len(f.poller.stopped) != 1 {
		t.Error("close must stop the question watcher")
	}
}

func strPointer(s string) *string { return &s }
