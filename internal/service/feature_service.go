package service

import (
	"context"

	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/repository/specification"
	"ai-annotation-be/internal/repository/unitofwork"
)

// IFeatureService is the read surface over the feature catalog. Writes go
// through the reconciler only; nothing else may create or patch features.
type IFeatureService interface {
	List(ctx context.Context) ([]*dto.FeatureResponse, error)
	ListByQuestion(ctx context.Context, xpath string) ([]*dto.FeatureResponse, error)
}

type featureService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewFeatureService(uowFactory unitofwork.RepositoryFactory) IFeatureService {
	return &featureService{uowFactory: uowFactory}
}

func (c *featureService) List(ctx context.Context) ([]*dto.FeatureResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	features, err := uow.FeatureRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toFeatureResponses(features), nil
}

func (c *featureService) ListByQuestion(ctx context.Context, xpath string) ([]*dto.FeatureResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	features, err := uow.FeatureRepository().FindAll(ctx, specification.ByQuestion{XPath: xpath})
	if err != nil {
		return nil, err
	}
	return toFeatureResponses(features), nil
}

func toFeatureResponses(features []*entity.Feature) []*dto.FeatureResponse {
	out := make([]*dto.FeatureResponse, 0, len(features))
	for _, f := range features {
		params := make([]dto.FeatureParamResponse, 0, len(f.Params))
		for _, p := range f.Params {
			params = append(params, dto.FeatureParamResponse{
				Language:     p.Language,
				QuestionUuid: p.QuestionUuid,
			})
		}
		out = append(out, &dto.FeatureResponse{
			Uid:           f.Uid,
			QuestionXPath: f.QuestionXPath,
			Action:        f.Action,
			Params:        params,
			CreatedAt:     f.CreatedAt,
			UpdatedAt:     f.UpdatedAt,
		})
	}
	return out
}
