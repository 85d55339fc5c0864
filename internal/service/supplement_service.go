package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-annotation-be/internal/constant"
	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/mapper"
	"ai-annotation-be/internal/repository/unitofwork"
	"ai-annotation-be/pkg/supplement"

	"github.com/google/uuid"
)

// ISupplementService owns the per-question version stores and every mutation
// of the version history. Each mutation is followed by a wholesale re-fetch:
// the database is the source of truth after a write, never the client's idea
// of what the write did.
type ISupplementService interface {
	Store(submissionRootId uuid.UUID, xpath string) *supplement.Store
	Refresh(ctx context.Context, submissionRootId uuid.UUID, xpath string) (supplement.Slice, error)
	Release(submissionRootId uuid.UUID, xpath string)

	CreateManual(ctx context.Context, v *entity.Version) (supplement.Slice, error)
	CreatePending(ctx context.Context, v *entity.Version) (supplement.Slice, error)
	Accept(ctx context.Context, submissionRootId uuid.UUID, xpath string, versionUuid uuid.UUID) (supplement.Slice, error)
	Discard(ctx context.Context, v *entity.Version) (*entity.Version, supplement.Slice, error)
}

type supplementService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.VersionMapper

	mu     sync.Mutex
	stores map[string]*supplement.Store
}

func NewSupplementService(uowFactory unitofwork.RepositoryFactory) ISupplementService {
	return &supplementService{
		uowFactory: uowFactory,
		mapper:     mapper.NewVersionMapper(),
		stores:     make(map[string]*supplement.Store),
	}
}

func storeKey(submissionRootId uuid.UUID, xpath string) string {
	return submissionRootId.String() + "|" + xpath
}

func (s *supplementService) Store(submissionRootId uuid.UUID, xpath string) *supplement.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(submissionRootId, xpath)
	st, ok := s.stores[key]
	if !ok {
		st = supplement.NewStore()
		s.stores[key] = st
	}
	return st
}

// Refresh loads the full history for (submission, question) and replaces the
// store wholesale. Resolved views must be recomputed by callers afterwards.
func (s *supplementService) Refresh(ctx context.Context, submissionRootId uuid.UUID, xpath string) (supplement.Slice, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	versions, err := uow.VersionRepository().FindSlice(ctx, submissionRootId, xpath)
	if err != nil {
		return nil, err
	}
	slice := s.mapper.ToSlice(versions)
	s.Store(submissionRootId, xpath).Replace(slice)
	return slice, nil
}

// Release drops the store when the question context closes.
func (s *supplementService) Release(submissionRootId uuid.UUID, xpath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, storeKey(submissionRootId, xpath))
}

func (s *supplementService) validate(v *entity.Version) error {
	if !constant.IsValidAction(v.Action) {
		return fmt.Errorf("unknown annotation action %q", v.Action)
	}
	if constant.KindOfAction(v.Action) == constant.KindQual {
		if v.QualQuestionUuid == "" {
			return fmt.Errorf("qual versions require a sub-question uuid")
		}
	} else if v.Language == "" {
		return fmt.Errorf("action %q requires a language", v.Action)
	}
	return nil
}

func (s *supplementService) createAndRefresh(ctx context.Context, v *entity.Version) (supplement.Slice, error) {
	if err := s.validate(v); err != nil {
		return nil, err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.VersionRepository().Create(ctx, v); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, v.SubmissionRootId, v.QuestionXPath)
}

// CreateManual appends a human-entered version. Editing never rewrites
// history; it lands here as a fresh record.
func (s *supplementService) CreateManual(ctx context.Context, v *entity.Version) (supplement.Slice, error) {
	if constant.IsAutomaticAction(v.Action) {
		return nil, fmt.Errorf("manual create called with automatic action %q", v.Action)
	}
	v.Status = ""
	return s.createAndRefresh(ctx, v)
}

// CreatePending appends the in_progress placeholder an automatic request
// starts from.
func (s *supplementService) CreatePending(ctx context.Context, v *entity.Version) (supplement.Slice, error) {
	if !constant.IsAutomaticAction(v.Action) {
		return nil, fmt.Errorf("pending create called with manual action %q", v.Action)
	}
	v.Status = constant.StatusInProgress
	v.Value = nil
	return s.createAndRefresh(ctx, v)
}

// Accept stamps date_accepted on an existing automatic version, leaving its
// value untouched.
func (s *supplementService) Accept(ctx context.Context, submissionRootId uuid.UUID, xpath string, versionUuid uuid.UUID) (supplement.Slice, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.VersionRepository().Accept(ctx, versionUuid, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, submissionRootId, xpath)
}

// Discard appends a cleared version (value NULL). History stays retrievable;
// only resolution treats the group as empty afterwards.
func (s *supplementService) Discard(ctx context.Context, v *entity.Version) (*entity.Version, supplement.Slice, error) {
	v.Value = nil
	v.Status = ""
	slice, err := s.createAndRefresh(ctx, v)
	if err != nil {
		return nil, nil, err
	}
	return v, slice, nil
}
