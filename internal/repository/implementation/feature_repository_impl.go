// Implementation of FeatureRepository
package implementation

import (
	"context"
	"errors"

	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/mapper"
	"ai-annotation-be/internal/repository/contract"
	"ai-annotation-be/internal/repository/specification"

	"ai-annotation-be/internal/model"

	"gorm.io/gorm"
)

type FeatureRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeatureMapper
}

func NewFeatureRepository(db *gorm.DB) contract.FeatureRepository {
	return &FeatureRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeatureMapper(),
	}
}

func (r *FeatureRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FeatureRepositoryImpl) Create(ctx context.Context, feature *entity.Feature) error {
	m := r.mapper.ToModel(feature)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*feature = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeatureRepositoryImpl) Update(ctx context.Context, feature *entity.Feature) error {
	m := r.mapper.ToModel(feature)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*feature = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeatureRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error) {
	var m model.Feature
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeatureRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error) {
	var models []*model.Feature
	query := r.applySpecifications(r.db.WithContext(ctx).Order("created_at ASC"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FeatureRepositoryImpl) FindByQuestionAction(ctx context.Context, xpath, action string) (*entity.Feature, error) {
	return r.FindOne(ctx,
		specification.ByQuestion{XPath: xpath},
		specification.ByAction{Action: action},
	)
}
