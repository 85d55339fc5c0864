package unitofwork

import (
	"context"

	"ai-annotation-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FeatureRepository() contract.FeatureRepository
	VersionRepository() contract.VersionRepository
}
