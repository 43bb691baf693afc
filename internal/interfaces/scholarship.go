package interfaces

import (
	"context"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
)

// ScholarshipAPI is the upstream student API the form talks to.
type ScholarshipAPI interface {
	FetchTypes(ctx context.Context, tid string) (*dto.TypesResponse, error)
	InsertEntranceApplication(ctx context.Context, req dto.EntranceApplicationRequest) (*dto.InsertResponse, error)
}
