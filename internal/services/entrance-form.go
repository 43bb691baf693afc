package services

import (
	"errors"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
)

type SubmitState string

const (
	StateIdle       SubmitState = "idle"
	StateSubmitting SubmitState = "submitting"
	StateSuccess    SubmitState = "success"
	StateFailed     SubmitState = "failed"
)

var ErrUnknownField = errors.New("unknown form field")

// EntranceForm is the live state of one applicant's entrance grant form.
type EntranceForm struct {
	StudentTypeID   string                `json:"student_type_id"`
	TypeID          string                `json:"type_id"`
	UserID          string                `json:"user_id"`
	HasSession      bool                  `json:"has_session"`
	Profile         dto.ApplicantProfile  `json:"form_data"`
	AcademicYears   []dto.ReferenceOption `json:"academic_years"`
	Semesters       []dto.ReferenceOption `json:"semesters"`
	ReferenceLoaded bool                  `json:"reference_loaded"`
	Consent         bool                  `json:"consent"`
	AttachmentOpen  bool                  `json:"attachment_open"`
	AppliedAt       string                `json:"applied_at"`
	State           SubmitState           `json:"state"`
	Error           string                `json:"error,omitempty"`
	Message         string                `json:"message,omitempty"`
	Notice          *dto.Notice           `json:"notice,omitempty"`
}

func NewEntranceForm(studentTypeID, typeID string) *EntranceForm {
	return &EntranceForm{
		StudentTypeID: studentTypeID,
		TypeID:        typeID,
		Profile:       InitialProfile(),
		AcademicYears: []dto.ReferenceOption{},
		Semesters:     []dto.ReferenceOption{},
		Consent:       true,
		State:         StateIdle,
	}
}

// InitialProfile is the profile a freshly opened form starts from.
func InitialProfile() dto.ApplicantProfile {
	return dto.ApplicantProfile{YearLevel: "1", Semester: "1"}
}

// ResetProfile is what a successful submission leaves behind.
// year_level goes blank while semester returns to "1".
func ResetProfile() dto.ApplicantProfile {
	return dto.ApplicantProfile{YearLevel: "", Semester: "1"}
}

var profileFields = map[string]func(p *dto.ApplicantProfile) *string{
	"first_name":               func(p *dto.ApplicantProfile) *string { return &p.FirstName },
	"middle_name":              func(p *dto.ApplicantProfile) *string { return &p.MiddleName },
	"last_name":                func(p *dto.ApplicantProfile) *string { return &p.LastName },
	"suffix":                   func(p *dto.ApplicantProfile) *string { return &p.Suffix },
	"academic_year":            func(p *dto.ApplicantProfile) *string { return &p.AcademicYear },
	"year_level":               func(p *dto.ApplicantProfile) *string { return &p.YearLevel },
	"semester":                 func(p *dto.ApplicantProfile) *string { return &p.Semester },
	"program":                  func(p *dto.ApplicantProfile) *string { return &p.Program },
	"department":               func(p *dto.ApplicantProfile) *string { return &p.Department },
	"email_address":            func(p *dto.ApplicantProfile) *string { return &p.EmailAddress },
	"contact_number":           func(p *dto.ApplicantProfile) *string { return &p.ContactNumber },
	"honors_received":          func(p *dto.ApplicantProfile) *string { return &p.HonorsReceived },
	"general_weighted_average": func(p *dto.ApplicantProfile) *string { return &p.GeneralWeightedAverage },
}

// EditableFields are the inputs the page renders enabled.
var EditableFields = []string{"contact_number", "honors_received", "general_weighted_average"}

// ChangeField sets one named profile field and leaves the rest alone.
func (f *EntranceForm) ChangeField(name, value string) error {
	field, ok := profileFields[name]
	if !ok {
		return ErrUnknownField
	}
	*field(&f.Profile) = value
	return nil
}

// SemesterLabel renders a semester code for the select input.
func SemesterLabel(semester string) string {
	switch semester {
	case "1":
		return "1st Semester"
	case "2":
		return "2nd Semester"
	default:
		return semester
	}
}
