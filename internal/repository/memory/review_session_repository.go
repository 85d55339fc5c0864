package memory

import (
	"time"

	"ai-annotation-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ReviewSessionRepository keeps workflow sessions (and their drafts) in
// process memory with a TTL. Sessions are ephemeral: an expired entry simply
// forces the client to reopen the question view.
type ReviewSessionRepository struct {
	cache *cache.Cache
}

func NewReviewSessionRepository() *ReviewSessionRepository {
	// 1 hour lifetime, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ReviewSessionRepository{
		cache: c,
	}
}

func (r *ReviewSessionRepository) Save(session *store.ReviewSession) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *ReviewSessionRepository) Get(sessionID string) (*store.ReviewSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.ReviewSession), true
	}
	return nil, false
}

func (r *ReviewSessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
