// Repository interface for annotation Features
package contract

import (
	"context"

	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/repository/specification"
)

type FeatureRepository interface {
	Create(ctx context.Context, feature *entity.Feature) error
	// Update replaces the whole params array (the patch-feature call).
	Update(ctx context.Context, feature *entity.Feature) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error)
	FindByQuestionAction(ctx context.Context, xpath, action string) (*entity.Feature, error)
}
