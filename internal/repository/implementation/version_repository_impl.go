// Implementation of VersionRepository
package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/mapper"
	"ai-annotation-be/internal/model"
	"ai-annotation-be/internal/repository/contract"
	"ai-annotation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VersionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VersionMapper
}

func NewVersionRepository(db *gorm.DB) contract.VersionRepository {
	return &VersionRepositoryImpl{
		db:     db,
		mapper: mapper.NewVersionMapper(),
	}
}

func (r *VersionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *VersionRepositoryImpl) Create(ctx context.Context, version *entity.Version) error {
	m := r.mapper.ToModel(version)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	// Echo back DB-assigned fields (uuid, date_created)
	*version = *r.mapper.ToEntity(m)
	return nil
}

func (r *VersionRepositoryImpl) Accept(ctx context.Context, id uuid.UUID, acceptedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Version{}).
		Where("uuid = ? AND date_accepted IS NULL", id).
		Update("date_accepted", acceptedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("version %s not found or already accepted", id)
	}
	return nil
}

func (r *VersionRepositoryImpl) Complete(ctx context.Context, id uuid.UUID, status string, value *string) error {
	// Only an in_progress job may reach a terminal state; a second completion
	// for the same job is a no-op conflict, not a silent overwrite.
	res := r.db.WithContext(ctx).
		Model(&model.Version{}).
		Where("uuid = ? AND status = ?", id, "in_progress").
		Updates(map[string]interface{}{"status": status, "value": value})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("version %s is not in progress", id)
	}
	return nil
}

func (r *VersionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Version, error) {
	var m model.Version
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *VersionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Version, error) {
	var models []*model.Version
	query := r.applySpecifications(r.db.WithContext(ctx).Order("date_created ASC"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *VersionRepositoryImpl) FindSlice(ctx context.Context, submissionRootId uuid.UUID, xpath string) ([]*entity.Version, error) {
	return r.FindAll(ctx,
		specification.BySubmission{SubmissionRootId: submissionRootId},
		specification.ByQuestion{XPath: xpath},
	)
}

func (r *VersionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Version{}).Count(&count).Error
	return count, err
}
