package service

import (
	"context"
	"sync"
	"time"

	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/pkg/logger"
	"ai-annotation-be/pkg/supplement"

	"github.com/google/uuid"
)

const (
	// Interval between polls, measured from the end of one fetch to the start
	// of the next, so a slow fetch never causes overlapping requests.
	pollInterval = 3 * time.Second

	// Consecutive failed refreshes tolerated before the watcher gives up.
	// A single failure is retried silently on the next tick.
	pollFailureCap = 5
)

// IPollerService watches questions with outstanding automatic generations and
// refreshes their stores until every pending version reaches a terminal
// status. One watcher runs per (submission, question); it dies with the
// question context and holds no global state.
type IPollerService interface {
	// Watch starts a watcher for the question if none is running.
	Watch(submissionRootId uuid.UUID, xpath string)
	// Suspend pauses polling for the question while a mutation is in flight;
	// the returned function resumes it. A poll landing between a mutation and
	// its re-fetch would otherwise clobber the fresher slice.
	Suspend(submissionRootId uuid.UUID, xpath string) func()
	// Stop cancels the watcher for one question.
	Stop(submissionRootId uuid.UUID, xpath string)
	// StopAll cancels every watcher; used on shutdown.
	StopAll()
}

type questionPoller struct {
	cancel    context.CancelFunc
	suspendMu sync.Mutex
	suspended int
}

type pollerService struct {
	supplementService ISupplementService
	logger            logger.ILogger
	interval          time.Duration

	mu      sync.Mutex
	pollers map[string]*questionPoller
}

func NewPollerService(supplementService ISupplementService, log logger.ILogger) IPollerService {
	return &pollerService{
		supplementService: supplementService,
		logger:            log,
		interval:          pollInterval,
		pollers:           make(map[string]*questionPoller),
	}
}

func pollerKey(submissionRootId uuid.UUID, xpath string) string {
	return submissionRootId.String() + "|" + xpath
}

func (s *pollerService) Watch(submissionRootId uuid.UUID, xpath string) {
	key := pollerKey(submissionRootId, xpath)

	s.mu.Lock()
	if _, running := s.pollers[key]; running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &questionPoller{cancel: cancel}
	s.pollers[key] = p
	s.mu.Unlock()

	go s.run(ctx, p, submissionRootId, xpath)
}

func (s *pollerService) Suspend(submissionRootId uuid.UUID, xpath string) func() {
	s.mu.Lock()
	p, ok := s.pollers[pollerKey(submissionRootId, xpath)]
	s.mu.Unlock()
	if !ok {
		return func() {}
	}

	p.suspendMu.Lock()
	p.suspended++
	p.suspendMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.suspendMu.Lock()
			p.suspended--
			p.suspendMu.Unlock()
		})
	}
}

func (s *pollerService) Stop(submissionRootId uuid.UUID, xpath string) {
	s.remove(pollerKey(submissionRootId, xpath))
}

func (s *pollerService) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, p := range s.pollers {
		p.cancel()
		delete(s.pollers, key)
	}
}

func (s *pollerService) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pollers[key]; ok {
		p.cancel()
		delete(s.pollers, key)
	}
}

func (p *questionPoller) isSuspended() bool {
	p.suspendMu.Lock()
	defer p.suspendMu.Unlock()
	return p.suspended > 0
}

func (s *pollerService) run(ctx context.Context, p *questionPoller, submissionRootId uuid.UUID, xpath string) {
	key := pollerKey(submissionRootId, xpath)
	defer s.remove(key)

	consecutiveFailures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}

		if p.isSuspended() {
			continue
		}

		slice, err := s.supplementService.Refresh(ctx, submissionRootId, xpath)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			consecutiveFailures++
			if consecutiveFailures >= pollFailureCap {
				pollErr := &dto.PollError{Consecutive: consecutiveFailures, Err: err}
				s.logger.Error("PollerService", "Giving up on question watcher", map[string]interface{}{
					"submission_root_id": submissionRootId,
					"question_xpath":     xpath,
					"error":              pollErr.Error(),
				})
				return
			}
			continue
		}
		consecutiveFailures = 0

		if !hasInProgress(slice) {
			s.logger.Debug("PollerService", "All generations terminal, watcher done", map[string]interface{}{
				"submission_root_id": submissionRootId,
				"question_xpath":     xpath,
			})
			return
		}
	}
}

func hasInProgress(slice supplement.Slice) bool {
	for _, groups := range slice {
		for _, items := range groups {
			for i := range items {
				if items[i].Data.Status == supplement.StatusInProgress {
					return true
				}
			}
		}
	}
	return false
}
