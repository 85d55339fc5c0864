// Mapper for Version entity <-> model conversion and the supplement view
package mapper

import (
	"ai-annotation-be/internal/entity"
	"ai-annotation-be/internal/model"
	"ai-annotation-be/pkg/supplement"
)

type VersionMapper struct{}

func NewVersionMapper() *VersionMapper {
	return &VersionMapper{}
}

func (m *VersionMapper) ToEntity(model *model.Version) *entity.Version {
	if model == nil {
		return nil
	}
	return &entity.Version{
		Uuid:             model.Uuid,
		SubmissionRootId: model.SubmissionRootId,
		QuestionXPath:    model.QuestionXPath,
		Action:           model.Action,
		Language:         model.Language,
		QualQuestionUuid: model.QualQuestionUuid,
		Value:            model.Value,
		Status:           model.Status,
		DateCreated:      model.DateCreated,
		DateAccepted:     model.DateAccepted,
	}
}

func (m *VersionMapper) ToModel(entity *entity.Version) *model.Version {
	if entity == nil {
		return nil
	}
	return &model.Version{
		Uuid:             entity.Uuid,
		SubmissionRootId: entity.SubmissionRootId,
		QuestionXPath:    entity.QuestionXPath,
		Action:           entity.Action,
		Language:         entity.Language,
		QualQuestionUuid: entity.QualQuestionUuid,
		Value:            entity.Value,
		Status:           entity.Status,
		DateCreated:      entity.DateCreated,
		DateAccepted:     entity.DateAccepted,
	}
}

func (m *VersionMapper) ToEntities(models []*model.Version) []*entity.Version {
	entities := make([]*entity.Version, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

// ToVersionItem converts a persisted version into the normalized view consumed
// by the resolver.
func (m *VersionMapper) ToVersionItem(e *entity.Version) supplement.VersionItem {
	return supplement.VersionItem{
		Uuid:         e.Uuid,
		DateCreated:  e.DateCreated,
		DateAccepted: e.DateAccepted,
		Data: supplement.Payload{
			Language:     e.Language,
			QuestionUuid: e.QualQuestionUuid,
			Value:        e.Value,
			Status:       supplement.Status(e.Status),
		},
	}
}

// ToSlice folds version rows into a supplement slice, preserving row order
// within each (action, group) history.
func (m *VersionMapper) ToSlice(versions []*entity.Version) supplement.Slice {
	slice := supplement.Slice{}
	for _, v := range versions {
		slice.Append(v.Action, m.ToVersionItem(v))
	}
	return slice
}
