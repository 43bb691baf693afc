package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SundayYogurt/scholarship_service/internal/clients/scholarship"
	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/SundayYogurt/scholarship_service/internal/interfaces"
)

var ErrReferenceUnavailable = errors.New("reference data unavailable")

type ReferenceLists struct {
	AcademicYears []dto.ReferenceOption
	Semesters     []dto.ReferenceOption
}

// AcademicYears selects the academic year options out of the fetched rows.
func AcademicYears(rows []dto.ReferenceOption) []dto.ReferenceOption {
	return cloneOptions(rows)
}

// Semesters selects the semester options out of the fetched rows.
// The upstream has no separate semester query, so both lists share one source.
func Semesters(rows []dto.ReferenceOption) []dto.ReferenceOption {
	return cloneOptions(rows)
}

func cloneOptions(rows []dto.ReferenceOption) []dto.ReferenceOption {
	out := make([]dto.ReferenceOption, len(rows))
	copy(out, rows)
	return out
}

type ReferenceFetcher struct {
	api interfaces.ScholarshipAPI
}

func NewReferenceFetcher(api interfaces.ScholarshipAPI) *ReferenceFetcher {
	return &ReferenceFetcher{api: api}
}

func (r *ReferenceFetcher) Fetch(ctx context.Context, tid string) (*ReferenceLists, error) {
	resp, err := r.api.FetchTypes(ctx, tid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReferenceUnavailable, err)
	}
	if resp == nil || resp.Status != scholarship.StatusSuccess {
		msg := ""
		if resp != nil {
			msg = resp.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrReferenceUnavailable, msg)
	}

	return &ReferenceLists{
		AcademicYears: AcademicYears(resp.Data),
		Semesters:     Semesters(resp.Data),
	}, nil
}
