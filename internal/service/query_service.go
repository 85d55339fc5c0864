package service

import (
	"context"

	"ai-annotation-be/internal/dto"
	"ai-annotation-be/pkg/supplement"

	"github.com/google/uuid"
)

// IQueryService is the read surface over annotation histories: the wholesale
// slice and the collapsed "current" view per question.
type IQueryService interface {
	GetSupplement(ctx context.Context, submissionRootId uuid.UUID, xpath string) (*dto.GetSupplementResponse, error)
	GetResolved(ctx context.Context, submissionRootId uuid.UUID, xpath string) (*dto.ResolvedSupplementResponse, error)
}

type queryService struct {
	supplementService ISupplementService
}

func NewQueryService(supplementService ISupplementService) IQueryService {
	return &queryService{supplementService: supplementService}
}

func (c *queryService) GetSupplement(ctx context.Context, submissionRootId uuid.UUID, xpath string) (*dto.GetSupplementResponse, error) {
	slice, err := c.supplementService.Refresh(ctx, submissionRootId, xpath)
	if err != nil {
		return nil, err
	}

	versions := make(map[string]map[string][]dto.VersionItemResponse, len(slice))
	for action, groups := range slice {
		versions[action] = make(map[string][]dto.VersionItemResponse, len(groups))
		for key, items := range groups {
			history := make([]dto.VersionItemResponse, 0, len(items))
			for i := range items {
				history = append(history, toVersionItemResponse(&items[i]))
			}
			versions[action][key] = history
		}
	}

	return &dto.GetSupplementResponse{
		SubmissionRootId: submissionRootId,
		QuestionXPath:    xpath,
		Versions:         versions,
	}, nil
}

func (c *queryService) GetResolved(ctx context.Context, submissionRootId uuid.UUID, xpath string) (*dto.ResolvedSupplementResponse, error) {
	slice, err := c.supplementService.Refresh(ctx, submissionRootId, xpath)
	if err != nil {
		return nil, err
	}

	resp := &dto.ResolvedSupplementResponse{
		Translations: make(map[string]dto.VersionItemResponse),
	}

	if transcript := supplement.LatestTranscript(slice); supplement.HasValue(transcript) {
		r := toVersionItemResponse(transcript)
		resp.Transcript = &r
	}
	for lang, item := range supplement.LatestTranslationsByLanguage(slice, false) {
		resp.Translations[lang] = toVersionItemResponse(&item)
	}

	return resp, nil
}

func toVersionItemResponse(item *supplement.VersionItem) dto.VersionItemResponse {
	return dto.VersionItemResponse{
		Uuid:         item.Uuid,
		DateCreated:  item.DateCreated,
		DateAccepted: item.DateAccepted,
		Language:     item.Data.Language,
		QuestionUuid: item.Data.QuestionUuid,
		Value:        item.Data.Value,
		Status:       string(item.Data.Status),
	}
}
