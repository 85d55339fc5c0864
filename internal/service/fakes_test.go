package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/repository/contract"
	"ai-annotation-be/internal/repository/specification"
	"ai-annotation-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory doubles of the persistence layer, shared by the service tests.

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeFeatureRepo struct {
	mu          sync.Mutex
	features    []*entity.Feature
	createCalls int
	updateCalls int
	failCreate  error
}

func (r *fakeFeatureRepo) Create(ctx context.Context, feature *entity.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.createCalls++
	if feature.Uid == uuid.Nil {
		feature.Uid = uuid.New()
	}
	cp := *feature
	r.features = append(r.features, &cp)
	return nil
}

func (r *fakeFeatureRepo) Update(ctx context.Context, feature *entity.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	for i, f := range r.features {
		if f.Uid == feature.Uid {
			cp := *feature
			r.features[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("feature %s not found", feature.Uid)
}

func (r *fakeFeatureRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.features) == 0 {
		return nil, nil
	}
	cp := *r.features[0]
	return &cp, nil
}

func (r *fakeFeatureRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Feature, 0, len(r.features))
	for _, f := range r.features {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeFeatureRepo) FindByQuestionAction(ctx context.Context, xpath, action string) (*entity.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.features {
		if f.QuestionXPath == xpath && f.Action == action {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeVersionRepo struct {
	mu         sync.Mutex
	versions   []*entity.Version
	clock      time.Time
	failCreate error
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *fakeVersionRepo) Create(ctx context.Context, version *entity.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	if version.Uuid == uuid.Nil {
		version.Uuid = uuid.New()
	}
	r.clock = r.clock.Add(time.Minute)
	version.DateCreated = r.clock
	cp := *version
	r.versions = append(r.versions, &cp)
	return nil
}

func (r *fakeVersionRepo) Accept(ctx context.Context, id uuid.UUID, acceptedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.Uuid == id {
			if v.DateAccepted != nil {
				return fmt.Errorf("version %s already accepted", id)
			}
			at := acceptedAt
			v.DateAccepted = &at
			return nil
		}
	}
	return fmt.Errorf("version %s not found", id)
}

func (r *fakeVersionRepo) Complete(ctx context.Context, id uuid.UUID, status string, value *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.Uuid == id {
			if v.Status != "in_progress" {
				return fmt.Errorf("version %s is not in progress", id)
			}
			v.Status = status
			v.Value = value
			return nil
		}
	}
	return fmt.Errorf("version %s not found", id)
}

func (r *fakeVersionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byUuid, ok := spec.(specification.ByUuid); ok {
			for _, v := range r.versions {
				if v.Uuid == byUuid.Uuid {
					cp := *v
					return &cp, nil
				}
			}
			return nil, nil
		}
	}
	if len(r.versions) == 0 {
		return nil, nil
	}
	cp := *r.versions[0]
	return &cp, nil
}

func (r *fakeVersionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Version, 0, len(r.versions))
	for _, v := range r.versions {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeVersionRepo) FindSlice(ctx context.Context, submissionRootId uuid.UUID, xpath string) ([]*entity.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Version
	for _, v := range r.versions {
		if v.SubmissionRootId == submissionRootId && v.QuestionXPath == xpath {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeVersionRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.versions)), nil
}

type fakeUnitOfWork struct {
	featureRepo *fakeFeatureRepo
	versionRepo *fakeVersionRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) FeatureRepository() contract.FeatureRepository { return u.featureRepo }
func (u *fakeUnitOfWork) VersionRepository() contract.VersionRepository { return u.versionRepo }

type fakeRepositoryFactory struct {
	uow *fakeUnitOfWork
}

func newFakeRepositoryFactory() *fakeRepositoryFactory {
	return &fakeRepositoryFactory{
		uow: &fakeUnitOfWork{
			featureRepo: &fakeFeatureRepo{},
			versionRepo: newFakeVersionRepo(),
		},
	}
}

func (f *fakeRepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// Collaborator doubles for the workflow tests.

type fakeUsageService struct {
	consumed int
	refunded int
	deny     error
}

func (s *fakeUsageService) CheckAndConsume(ctx context.Context, organizationId string) error {
	if s.deny != nil {
		return s.deny
	}
	s.consumed++
	return nil
}

func (s *fakeUsageService) Refund(ctx context.Context, organizationId string) { s.refunded++ }

func (s *fakeUsageService) Usage(ctx context.Context, organizationId string) (int, int, error) {
	return s.consumed, 100, nil
}

type fakePublisherService struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     error
}

func (s *fakePublisherService) Publish(ctx context.Context, payload []byte) error {
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return nil
}

type fakePollerService struct {
	mu       sync.Mutex
	watched  []string
	suspends int
	resumes  int
	stopped  []string
}

func (s *fakePollerService) Watch(submissionRootId uuid.UUID, xpath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched = append(s.watched, xpath)
}

func (s *fakePollerService) Suspend(submissionRootId uuid.UUID, xpath string) func() {
	s.mu.Lock()
	s.suspends++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.resumes++
		s.mu.Unlock()
	}
}

func (s *fakePollerService) Stop(submissionRootId uuid.UUID, xpath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = append(s.stopped, xpath)
}

func (s *fakePollerService) StopAll() {}
