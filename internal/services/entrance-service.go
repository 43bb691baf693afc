package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/SundayYogurt/scholarship_service/internal/clients/scholarship"
	"github.com/SundayYogurt/scholarship_service/internal/domain"
	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/SundayYogurt/scholarship_service/internal/helper"
	"github.com/SundayYogurt/scholarship_service/internal/interfaces"
	"github.com/SundayYogurt/scholarship_service/internal/repository"
)

var (
	ErrConsentRequired    = errors.New("consent is required")
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

var noticeConsentRequired = dto.Notice{
	Title: "Warning!",
	Text:  "You must agree to the terms and conditions.",
	Icon:  "warning",
}

type EntranceService interface {
	// Form lifecycle
	Mount(ctx context.Context, prev *EntranceForm, in MountInput) *EntranceForm
	ChangeField(form *EntranceForm, name, value string) error
	SetConsent(form *EntranceForm, checked bool)
	Submit(ctx context.Context, key string, form *EntranceForm) (*SubmitResult, error)

	// Attachment dialog
	OpenAttachment(form *EntranceForm)
	CloseAttachment(form *EntranceForm)
	UploadAttachment(ctx context.Context, form *EntranceForm, file dto.AttachmentFile) (string, error)

	// Applications list
	RecentSubmissions(userID string, limit int) ([]domain.AuditLog, error)
}

type MountInput struct {
	StudentTypeID string
	TypeID        string
	// SessionUser is the raw cached user record, empty when the session has none.
	SessionUser string
}

type SubmitResult struct {
	State    SubmitState `json:"state"`
	Notice   *dto.Notice `json:"notice,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

type EntranceOptions struct {
	Location         *time.Location
	ApplicationsPath string
	Now              func() time.Time
}

type entranceService struct {
	api       interfaces.ScholarshipAPI
	reference *ReferenceFetcher

	auditRepo   repository.AuditRepository
	consentRepo repository.ConsentRepository

	producer interfaces.ProducerHandler
	uploader interfaces.ImageUploader

	loc              *time.Location
	applicationsPath string
	now              func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewEntranceService(
	api interfaces.ScholarshipAPI,
	auditRepo repository.AuditRepository,
	consentRepo repository.ConsentRepository,
	producer interfaces.ProducerHandler,
	uploader interfaces.ImageUploader,
	opts EntranceOptions,
) EntranceService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ApplicationsPath == "" {
		opts.ApplicationsPath = "/student/applications"
	}

	return &entranceService{
		api:              api,
		reference:        NewReferenceFetcher(api),
		auditRepo:        auditRepo,
		consentRepo:      consentRepo,
		producer:         producer,
		uploader:         uploader,
		loc:              opts.Location,
		applicationsPath: opts.ApplicationsPath,
		now:              opts.Now,
		inflight:         make(map[string]struct{}),
	}
}

// Mount opens the form, or brings an already open one up to date with new ids.
// Profile and date are loaded once; reference lists reload when the type id changes.
// An open form keeps its ids when the request carries none.
func (s *entranceService) Mount(ctx context.Context, prev *EntranceForm, in MountInput) *EntranceForm {
	if prev == nil {
		form := NewEntranceForm(in.StudentTypeID, in.TypeID)
		form.AppliedAt = FormatAppliedAt(s.now(), s.loc)
		s.loadProfile(form, in.SessionUser)
		s.loadReference(ctx, form)
		return form
	}

	if in.StudentTypeID != "" {
		prev.StudentTypeID = in.StudentTypeID
	}
	if in.TypeID != "" && prev.TypeID != in.TypeID {
		prev.TypeID = in.TypeID
		s.loadReference(ctx, prev)
	}
	return prev
}

func (s *entranceService) loadProfile(form *EntranceForm, raw string) {
	user, err := ParseSessionUser(raw)
	if err != nil {
		log.Printf("load profile: %v", err)
		return
	}
	applySessionUser(form, user)
}

func (s *entranceService) loadReference(ctx context.Context, form *EntranceForm) {
	if form.TypeID == "" {
		return
	}

	lists, err := s.reference.Fetch(ctx, form.TypeID)
	if err != nil {
		// keep whatever lists the form already shows
		log.Printf("failed to fetch curriculum years for tid=%s: %v", form.TypeID, err)
		return
	}
	form.AcademicYears = lists.AcademicYears
	form.Semesters = lists.Semesters
	form.ReferenceLoaded = true
}

func (s *entranceService) ChangeField(form *EntranceForm, name, value string) error {
	return form.ChangeField(name, value)
}

func (s *entranceService) SetConsent(form *EntranceForm, checked bool) {
	form.Consent = checked
}

// Submit posts the form. key identifies the applicant's session for the in-flight guard.
func (s *entranceService) Submit(ctx context.Context, key string, form *EntranceForm) (*SubmitResult, error) {
	if !form.Consent {
		notice := noticeConsentRequired
		form.State = StateIdle
		form.Notice = &notice
		return &SubmitResult{State: StateIdle, Notice: &notice}, ErrConsentRequired
	}

	if !s.acquire(key) {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(key)

	form.State = StateSubmitting
	if form.UserID == "" {
		log.Printf("submitting entrance application without session user_id (stid=%s tid=%s)", form.StudentTypeID, form.TypeID)
	}

	req := dto.EntranceApplicationRequest{
		UID:      form.UserID,
		STID:     form.StudentTypeID,
		TID:      form.TypeID,
		FormData: form.Profile,
	}

	resp, err := s.api.InsertEntranceApplication(ctx, req)
	if err != nil || resp == nil || resp.Status != scholarship.StatusSuccess {
		return s.failed(form, resp, err), nil
	}
	return s.succeeded(form, req, resp), nil
}

func (s *entranceService) succeeded(form *EntranceForm, req dto.EntranceApplicationRequest, resp *dto.InsertResponse) *SubmitResult {
	notice := dto.Notice{Title: "Success!", Text: resp.Message, Icon: "success"}

	form.State = StateSuccess
	form.Notice = &notice
	form.Profile = ResetProfile()
	form.Error = ""

	s.recordAudit(domain.AuditActionSubmit, req, resp.Message)
	s.recordConsent(req.UID)
	s.publishSubmitted(req)

	return &SubmitResult{State: StateSuccess, Notice: &notice, Redirect: s.applicationsPath}
}

func (s *entranceService) failed(form *EntranceForm, resp *dto.InsertResponse, err error) *SubmitResult {
	msg := ""
	switch {
	case err != nil:
		log.Printf("insert entrance application error: %v", err)
		msg = err.Error()
	case resp != nil:
		msg = resp.Message
	}
	notice := dto.Notice{Title: "Error!", Text: msg, Icon: "error"}

	// only the message is cleared here; error and field values stay as they were
	form.State = StateFailed
	form.Notice = &notice
	form.Message = ""

	s.recordAudit(domain.AuditActionSubmitFailed, dto.EntranceApplicationRequest{
		UID:  form.UserID,
		STID: form.StudentTypeID,
		TID:  form.TypeID,
	}, msg)

	return &SubmitResult{State: StateFailed, Notice: &notice}
}

func (s *entranceService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *entranceService) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

func (s *entranceService) recordAudit(action string, req dto.EntranceApplicationRequest, note string) {
	if s.auditRepo == nil {
		return
	}
	entry := &domain.AuditLog{
		ActorID:  req.UID,
		Action:   action,
		Entity:   domain.AuditEntityApplication,
		EntityID: req.TID,
	}
	if note != "" {
		entry.Note = &note
	}
	if err := s.auditRepo.CreateAuditLog(entry); err != nil {
		log.Printf("audit log error: %v", err)
	}
}

func (s *entranceService) recordConsent(userID string) {
	if s.consentRepo == nil || userID == "" {
		return
	}
	accepted, err := s.consentRepo.HasConsent(userID, domain.ConsentEntranceGrantPrivacy)
	if err != nil {
		log.Printf("consent lookup error: %v", err)
	}
	if accepted {
		return
	}
	now := s.now()
	c := &domain.UserConsent{
		UserID:      userID,
		ConsentCode: domain.ConsentEntranceGrantPrivacy,
		Accepted:    true,
		AcceptedAt:  &now,
	}
	if err := s.consentRepo.CreateConsent(c); err != nil && !helper.IsDuplicateConsent(err) {
		log.Printf("consent record error: %v", err)
	}
}

func (s *entranceService) publishSubmitted(req dto.EntranceApplicationRequest) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(dto.EntranceSubmittedEvent{
		UserID:        req.UID,
		StudentTypeID: req.STID,
		TypeID:        req.TID,
		Email:         req.FormData.EmailAddress,
		FirstName:     req.FormData.FirstName,
		SubmittedAt:   s.now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("encode submitted event: %v", err)
		return
	}
	if err := s.producer.PublishMessage([]byte(dto.EventEntranceApplicationSubmitted), payload); err != nil {
		log.Printf("publish submitted event: %v", err)
	}
}

func (s *entranceService) OpenAttachment(form *EntranceForm) {
	form.AttachmentOpen = true
}

func (s *entranceService) CloseAttachment(form *EntranceForm) {
	form.AttachmentOpen = false
}

func (s *entranceService) RecentSubmissions(userID string, limit int) ([]domain.AuditLog, error) {
	if s.auditRepo == nil || userID == "" {
		return nil, nil
	}
	return s.auditRepo.ListByActor(userID, limit)
}
