package service

import (
	"context"
	"fmt"
	"time"

	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// IUsageService meters automatic generations per organization per month.
type IUsageService interface {
	// CheckAndConsume increments the counter, or returns LimitExceededError
	// without consuming when the quota is already spent.
	CheckAndConsume(ctx context.Context, organizationId string) error
	// Refund gives a unit back when a consumed request never reached the
	// provider (e.g. the enqueue failed).
	Refund(ctx context.Context, organizationId string)
	Usage(ctx context.Context, organizationId string) (used, limit int, err error)
}

type usageService struct {
	rdb          *redis.Client
	monthlyLimit int
	logger       logger.ILogger
}

func NewUsageService(rdb *redis.Client, monthlyLimit int, log logger.ILogger) IUsageService {
	return &usageService{
		rdb:          rdb,
		monthlyLimit: monthlyLimit,
		logger:       log,
	}
}

func usageKey(organizationId string, now time.Time) string {
	return fmt.Sprintf("usage:generation:%s:%s", organizationId, now.Format("2006-01"))
}

func monthEnd(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

func (s *usageService) CheckAndConsume(ctx context.Context, organizationId string) error {
	now := time.Now().UTC()
	key := usageKey(organizationId, now)

	used, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		// Fail open: metering must not take generation down with it.
		s.logger.Warn("UsageService", "Usage counter unavailable, allowing request", map[string]interface{}{
			"organization_id": organizationId,
			"error":           err.Error(),
		})
		return nil
	}
	if used == 1 {
		// First hit this month; expire the key when the month rolls over.
		s.rdb.ExpireAt(ctx, key, monthEnd(now))
	}

	if int(used) > s.monthlyLimit {
		s.rdb.Decr(ctx, key)
		return &dto.LimitExceededError{
			Limit:      s.monthlyLimit,
			Used:       s.monthlyLimit,
			ResetAfter: monthEnd(now),
		}
	}
	return nil
}

func (s *usageService) Refund(ctx context.Context, organizationId string) {
	key := usageKey(organizationId, time.Now().UTC())
	if err := s.rdb.Decr(ctx, key).Err(); err != nil {
		s.logger.Warn("UsageService", "Failed to refund usage unit", map[string]interface{}{
			"organization_id": organizationId,
			"error":           err.Error(),
		})
	}
}

func (s *usageService) Usage(ctx context.Context, organizationId string) (int, int, error) {
	key := usageKey(organizationId, time.Now().UTC())
	used, err := s.rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, s.monthlyLimit, nil
	}
	if err != nil {
		return 0, s.monthlyLimit, err
	}
	return used, s.monthlyLimit, nil
}
