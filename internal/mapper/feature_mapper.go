// Mapper for Feature entity <-> model conversion
package mapper

import (
	"encoding/json"

	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/model"

	"gorm.io/datatypes"
)

type FeatureMapper struct{}

func NewFeatureMapper() *FeatureMapper {
	return &FeatureMapper{}
}

func (m *FeatureMapper) ToEntity(model *model.Feature) *entity.Feature {
	if model == nil {
		return nil
	}
	var params []entity.FeatureParam
	// Params is stored as a JSONB array; a corrupt row degrades to no params
	// rather than failing the read.
	_ = json.Unmarshal(model.Params, &params)
	return &entity.Feature{
		Uid:           model.Uid,
		QuestionXPath: model.QuestionXPath,
		Action:        model.Action,
		Params:        params,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func (m *FeatureMapper) ToModel(entity *entity.Feature) *model.Feature {
	if entity == nil {
		return nil
	}
	params, err := json.Marshal(entity.Params)
	if err != nil || entity.Params == nil {
		params = []byte("[]")
	}
	return &model.Feature{
		Uid:           entity.Uid,
		QuestionXPath: entity.QuestionXPath,
		Action:        entity.Action,
		Params:        datatypes.JSON(params),
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
	}
}

func (m *FeatureMapper) ToEntities(models []*model.Feature) []*entity.Feature {
	entities := make([]*entity.Feature, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
