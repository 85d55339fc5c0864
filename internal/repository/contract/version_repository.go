// Repository interface for annotation Versions (append-only history)
package contract

import (
	"context"
	"time"

	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type VersionRepository interface {
	Create(ctx context.Context, version *entity.Version) error
	// Accept stamps date_accepted on an existing version. This and Complete are
	// the only in-place writes the history permits.
	Accept(ctx context.Context, uuid uuid.UUID, acceptedAt time.Time) error
	// Complete transitions an in_progress version to a terminal status,
	// attaching the provider's value (nil on failure).
	Complete(ctx context.Context, uuid uuid.UUID, status string, value *string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Version, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Version, error)
	// FindSlice loads the full history for one (submission, question), in
	// creation order. This is the wholesale supplement fetch.
	FindSlice(ctx context.Context, submissionRootId uuid.UUID, xpath string) ([]*entity.Version, error)
	Count(ctx context.Context) (int64, error)
}
