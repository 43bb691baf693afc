package dto

// ApplicantProfile is the form data posted to the insert endpoint.
type ApplicantProfile struct {
	FirstName              string `json:"first_name"`
	MiddleName             string `json:"middle_name"`
	LastName               string `json:"last_name"`
	Suffix                 string `json:"suffix"`
	AcademicYear           string `json:"academic_year"`
	YearLevel              string `json:"year_level"`
	Semester               string `json:"semester"`
	Program                string `json:"program"`
	Department             string `json:"department"`
	EmailAddress           string `json:"email_address"`
	ContactNumber          string `json:"contact_number"`
	HonorsReceived         string `json:"honors_received"`
	GeneralWeightedAverage string `json:"general_weighted_average"`
}

type ReferenceOption struct {
	CurriculumYear string `json:"curriculum_year"`
	Semester       string `json:"semester"`
}

// EntranceApplicationRequest is the payload of insertEntranceApplication.
type EntranceApplicationRequest struct {
	UID      string           `json:"uid"`
	STID     string           `json:"stid"`
	TID      string           `json:"tid"`
	FormData ApplicantProfile `json:"formData"`
}

type TypesResponse struct {
	Status  string            `json:"status"`
	Data    []ReferenceOption `json:"data"`
	Message string            `json:"message,omitempty"`
}

type InsertResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type FieldChangeRequest struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

type ConsentRequest struct {
	Checked *bool `json:"checked" validate:"required"`
}

// Notice is a modal message shown to the applicant (title, text, icon).
type Notice struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Icon  string `json:"icon"`
}

type AttachmentFile struct {
	Filename string
	Bytes    []byte
}

type AttachmentResponse struct {
	URL string `json:"url"`
}
