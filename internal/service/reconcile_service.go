package service

import (
	"context"
	"sync"

	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/pkg/logger"
	"ai-annotation-be/internal/repository/unitofwork"
)

// IReconcileService ensures a Feature exists for a (question, action) pair and
// that its params cover the requested language or sub-question before any
// generation runs against it. Reconcile is idempotent: re-running it for a
// pair that is already covered performs no write.
type IReconcileService interface {
	Reconcile(ctx context.Context, xpath, action string, param entity.FeatureParam) error
}

type reconcileService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger

	// One lock per (question, action); concurrent reconciles of the same pair
	// would otherwise race the read-then-create and duplicate features.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReconcileService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IReconcileService {
	return &reconcileService{
		uowFactory: uowFactory,
		logger:     log,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *reconcileService) lockFor(xpath, action string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := xpath + "|" + action
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *reconcileService) Reconcile(ctx context.Context, xpath, action string, param entity.FeatureParam) error {
	l := s.lockFor(xpath, action)
	l.Lock()
	defer l.Unlock()

	if err := s.reconcile(ctx, xpath, action, param); err != nil {
		s.logger.Error("ReconcileService", "Feature reconciliation failed", map[string]interface{}{
			"question_xpath": xpath,
			"action":         action,
			"error":          err.Error(),
		})
		return &dto.ReconciliationError{QuestionXPath: xpath, Action: action, Err: err}
	}
	return nil
}

func (s *reconcileService) reconcile(ctx context.Context, xpath, action string, param entity.FeatureParam) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.FeatureRepository()

	feature, err := repo.FindByQuestionAction(ctx, xpath, action)
	if err != nil {
		return err
	}

	if feature == nil {
		feature = &entity.Feature{
			QuestionXPath: xpath,
			Action:        action,
			Params:        []entity.FeatureParam{param},
		}
		return repo.Create(ctx, feature)
	}

	if s.covers(feature, param) {
		return nil
	}

	feature.Params = append(feature.Params, param)
	return repo.Update(ctx, feature)
}

func (s *reconcileService) covers(feature *entity.Feature, param entity.FeatureParam) bool {
	if param.QuestionUuid != "" {
		return feature.HasQuestionUuid(param.QuestionUuid)
	}
	return feature.HasLanguage(param.Language)
}
