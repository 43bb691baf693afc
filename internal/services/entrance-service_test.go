package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/SundayYogurt/scholarship_service/internal/domain"
	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionJSON = `{"user_id":"2021-00123","email":"jdoe@uph.edu.ph","first_name":"Juan","middle_name":"Santos","last_name":"Dela Cruz","department":"CCS","program":"BS Computer Science"}`

var loadTime = time.Date(2024, time.April, 5, 15, 45, 0, 0, time.UTC)

type harness struct {
	api      *fakeAPI
	audit    *fakeAudit
	consent  *fakeConsent
	producer *fakeProducer
	uploader *fakeUploader
	svc      EntranceService
	clock    *time.Time
}

func newHarness() *harness {
	h := &harness{
		api: &fakeAPI{
			typesResp: &dto.TypesResponse{
				Status: "success",
				Data:   []dto.ReferenceOption{{CurriculumYear: "2024-2025", Semester: "1"}},
			},
			insertResp: &dto.InsertResponse{Status: "success", Message: "Application submitted"},
		},
		audit:    &fakeAudit{},
		consent:  &fakeConsent{},
		producer: &fakeProducer{},
		uploader: &fakeUploader{},
	}
	clock := loadTime
	h.clock = &clock
	h.svc = NewEntranceService(h.api, h.audit, h.consent, h.producer, h.uploader, EntranceOptions{
		Location:         time.UTC,
		ApplicationsPath: "/student/applications",
		Now:              func() time.Time { return *h.clock },
	})
	return h
}

func (h *harness) mount(stid, tid, session string) *EntranceForm {
	return h.svc.Mount(context.Background(), nil, MountInput{StudentTypeID: stid, TypeID: tid, SessionUser: session})
}

func TestMountLoadsSessionProfile(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)

	assert.True(t, form.HasSession)
	assert.Equal(t, "2021-00123", form.UserID)
	assert.Equal(t, "Juan", form.Profile.FirstName)
	assert.Equal(t, "Santos", form.Profile.MiddleName)
	assert.Equal(t, "Dela Cruz", form.Profile.LastName)
	assert.Equal(t, "jdoe@uph.edu.ph", form.Profile.EmailAddress)
	assert.Equal(t, "BS Computer Science", form.Profile.Program)
	assert.Equal(t, "CCS", form.Profile.Department)
	assert.Equal(t, "1", form.Profile.YearLevel)
	assert.Equal(t, "1", form.Profile.Semester)
	assert.True(t, form.Consent)
	assert.Equal(t, StateIdle, form.State)
	assert.False(t, form.AttachmentOpen)
}

func TestMountWithoutSessionLeavesProfileEmpty(t *testing.T) {
	h := newHarness()

	for _, raw := range []string{"", "not json"} {
		var form *EntranceForm
		require.NotPanics(t, func() { form = h.mount("S1", "T1", raw) })
		assert.False(t, form.HasSession)
		assert.Empty(t, form.UserID)
		assert.Equal(t, InitialProfile(), form.Profile)
		assert.Nil(t, form.Notice)
	}
}

func TestMountAppliedAtCapturedOnce(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)
	assert.Equal(t, "April 5, 2024 at 3:45 PM", form.AppliedAt)

	*h.clock = loadTime.Add(3 * time.Hour)
	again := h.svc.Mount(context.Background(), form, MountInput{StudentTypeID: "S1", TypeID: "T1", SessionUser: sessionJSON})
	assert.Equal(t, "April 5, 2024 at 3:45 PM", again.AppliedAt)
}

func TestMountReferenceListsMirrorResponse(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)

	want := []dto.ReferenceOption{{CurriculumYear: "2024-2025", Semester: "1"}}
	assert.Equal(t, []string{"T1"}, h.api.typeCalls)
	assert.Equal(t, want, form.AcademicYears)
	assert.Equal(t, want, form.Semesters)
	assert.True(t, form.ReferenceLoaded)
}

func TestMountWithoutTypeIDSkipsFetch(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "", sessionJSON)

	assert.Empty(t, h.api.typeCalls)
	assert.Empty(t, form.AcademicYears)
	assert.Empty(t, form.Semesters)
}

func TestMountRefetchesOnlyWhenTypeIDChanges(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)

	form = h.svc.Mount(context.Background(), form, MountInput{StudentTypeID: "S2", TypeID: "T1"})
	assert.Equal(t, []string{"T1"}, h.api.typeCalls)
	assert.Equal(t, "S2", form.StudentTypeID)

	h.api.typesResp = &dto.TypesResponse{Status: "success", Data: []dto.ReferenceOption{{CurriculumYear: "2025-2026", Semester: "2"}}}
	form = h.svc.Mount(context.Background(), form, MountInput{StudentTypeID: "S2", TypeID: "T2"})
	assert.Equal(t, []string{"T1", "T2"}, h.api.typeCalls)
	assert.Equal(t, "2025-2026", form.AcademicYears[0].CurriculumYear)
	assert.Equal(t, "2", form.Semesters[0].Semester)
}

func TestMountKeepsPriorListsOnFetchFailure(t *testing.T) {
	failures := map[string]func(*fakeAPI){
		"non-success status": func(a *fakeAPI) { a.typesResp = &dto.TypesResponse{Status: "error", Message: "nope"} },
		"transport error":    func(a *fakeAPI) { a.typesResp, a.typesErr = nil, errors.New("connection refused") },
	}
	for name, breakAPI := range failures {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			form := h.mount("S1", "T1", sessionJSON)
			before := form.AcademicYears

			breakAPI(h.api)
			form = h.svc.Mount(context.Background(), form, MountInput{StudentTypeID: "S1", TypeID: "T2"})

			assert.Equal(t, "T2", form.TypeID)
			assert.Equal(t, before, form.AcademicYears)
			assert.Equal(t, before, form.Semesters)
		})
	}
}

func TestChangeFieldUpdatesOnlyThatField(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)
	before := form.Profile

	require.NoError(t, h.svc.ChangeField(form, "contact_number", "09171234567"))

	want := before
	want.ContactNumber = "09171234567"
	assert.Equal(t, want, form.Profile)

	assert.ErrorIs(t, h.svc.ChangeField(form, "password", "x"), ErrUnknownField)
	assert.Equal(t, want, form.Profile)
}

func TestSubmitBlockedWithoutConsent(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)
	require.NoError(t, h.svc.ChangeField(form, "general_weighted_average", "1.25"))
	h.svc.SetConsent(form, false)

	res, err := h.svc.Submit(context.Background(), "sess-1", form)

	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.Equal(t, 0, h.api.inserts())
	assert.Equal(t, StateIdle, res.State)
	assert.Equal(t, StateIdle, form.State)
	require.NotNil(t, res.Notice)
	assert.Equal(t, "Warning!", res.Notice.Title)
	assert.Equal(t, "You must agree to the terms and conditions.", res.Notice.Text)
	assert.Equal(t, "warning", res.Notice.Icon)
	assert.Empty(t, res.Redirect)
}

func TestSubmitSuccessResetsForm(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)
	require.NoError(t, h.svc.ChangeField(form, "contact_number", "09171234567"))
	require.NoError(t, h.svc.ChangeField(form, "honors_received", "With Honors"))
	form.Error = "stale"
	submitted := form.Profile

	res, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)

	require.Len(t, h.api.insertCalls, 1)
	assert.Equal(t, dto.EntranceApplicationRequest{UID: "2021-00123", STID: "S1", TID: "T1", FormData: submitted}, h.api.insertCalls[0])

	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, "/student/applications", res.Redirect)
	assert.Equal(t, &dto.Notice{Title: "Success!", Text: "Application submitted", Icon: "success"}, res.Notice)

	assert.Equal(t, dto.ApplicantProfile{YearLevel: "", Semester: "1"}, form.Profile)
	assert.Empty(t, form.Error)
	assert.Equal(t, StateSuccess, form.State)

	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, domain.AuditActionSubmit, h.audit.entries[0].Action)
	assert.Equal(t, "2021-00123", h.audit.entries[0].ActorID)
	assert.Equal(t, "T1", h.audit.entries[0].EntityID)

	require.Len(t, h.consent.consents, 1)
	assert.Equal(t, domain.ConsentEntranceGrantPrivacy, h.consent.consents[0].ConsentCode)

	require.Len(t, h.producer.messages, 1)
	assert.Equal(t, dto.EventEntranceApplicationSubmitted, h.producer.messages[0].key)
	var event dto.EntranceSubmittedEvent
	require.NoError(t, json.Unmarshal([]byte(h.producer.messages[0].value), &event))
	assert.Equal(t, "jdoe@uph.edu.ph", event.Email)
	assert.Equal(t, "S1", event.StudentTypeID)
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	h := newHarness()
	h.api.insertResp = &dto.InsertResponse{Status: "error", Message: "GWA is required"}
	form := h.mount("S1", "T1", sessionJSON)
	require.NoError(t, h.svc.ChangeField(form, "contact_number", "09171234567"))
	form.Error = "kept"
	form.Message = "cleared"
	before := form.Profile

	res, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, res.State)
	assert.Empty(t, res.Redirect)
	assert.Equal(t, &dto.Notice{Title: "Error!", Text: "GWA is required", Icon: "error"}, res.Notice)
	assert.Equal(t, before, form.Profile)
	assert.Equal(t, "kept", form.Error)
	assert.Empty(t, form.Message)

	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, domain.AuditActionSubmitFailed, h.audit.entries[0].Action)
	assert.Empty(t, h.consent.consents)
	assert.Empty(t, h.producer.messages)
}

func TestSubmitTransportErrorIsAFailure(t *testing.T) {
	h := newHarness()
	h.api.insertResp, h.api.insertErr = nil, errors.New("dial tcp: connection refused")
	form := h.mount("S1", "T1", sessionJSON)
	before := form.Profile

	res, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, "dial tcp: connection refused", res.Notice.Text)
	assert.Equal(t, before, form.Profile)

	// the form stays usable
	h.api.insertResp, h.api.insertErr = &dto.InsertResponse{Status: "success", Message: "ok"}, nil
	res, err = h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, res.State)
}

func TestSubmitWithoutSessionStillPosts(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", "")

	res, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, res.State)
	require.Len(t, h.api.insertCalls, 1)
	assert.Empty(t, h.api.insertCalls[0].UID)
	assert.Empty(t, h.consent.consents)
}

func TestSubmitIgnoresDuplicateConsent(t *testing.T) {
	h := newHarness()
	h.consent.err = &pgconn.PgError{Code: "23505", ConstraintName: "uidx_user_consents_user_code"}
	form := h.mount("S1", "T1", sessionJSON)

	res, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, res.State)
}

func TestSubmitRecordsConsentOnce(t *testing.T) {
	h := newHarness()

	for i := 0; i < 2; i++ {
		form := h.mount("S1", "T1", sessionJSON)
		res, err := h.svc.Submit(context.Background(), "sess-1", form)
		require.NoError(t, err)
		require.Equal(t, StateSuccess, res.State)
	}

	assert.Len(t, h.consent.consents, 1)
	assert.Len(t, h.producer.messages, 2)
}

func TestMountWithoutIdsKeepsOpenForm(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)

	form = h.svc.Mount(context.Background(), form, MountInput{})
	assert.Equal(t, "S1", form.StudentTypeID)
	assert.Equal(t, "T1", form.TypeID)
	assert.Equal(t, []string{"T1"}, h.api.typeCalls)
	assert.Len(t, form.AcademicYears, 1)

	res, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)
	require.Equal(t, StateSuccess, res.State)
	assert.Equal(t, "S1", h.api.insertCalls[0].STID)
	assert.Equal(t, "T1", h.api.insertCalls[0].TID)
}

func TestSubmitPayloadAlwaysCarriesDepartment(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", `{"user_id":"2021-00123","email":"jdoe@uph.edu.ph"}`)

	_, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)

	b, err := json.Marshal(h.api.insertCalls[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"department":""`)
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	h := newHarness()
	h.api.entered = make(chan struct{})
	h.api.release = make(chan struct{})

	first := h.mount("S1", "T1", sessionJSON)
	second := h.mount("S1", "T1", sessionJSON)

	done := make(chan *SubmitResult)
	go func() {
		res, _ := h.svc.Submit(context.Background(), "sess-1", first)
		done <- res
	}()
	<-h.api.entered

	_, err := h.svc.Submit(context.Background(), "sess-1", second)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	// another applicant is not blocked
	other := make(chan error)
	go func() {
		_, err := h.svc.Submit(context.Background(), "sess-2", h.mount("S1", "T1", sessionJSON))
		other <- err
	}()
	<-h.api.entered
	h.api.release <- struct{}{}
	h.api.release <- struct{}{}

	assert.Equal(t, StateSuccess, (<-done).State)
	assert.NoError(t, <-other)
	assert.Equal(t, 2, h.api.inserts())

	// the guard is released afterwards
	h.api.entered, h.api.release = nil, nil
	res, err := h.svc.Submit(context.Background(), "sess-1", second)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, res.State)
}

func TestAttachmentToggle(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)

	h.svc.OpenAttachment(form)
	assert.True(t, form.AttachmentOpen)
	h.svc.CloseAttachment(form)
	assert.False(t, form.AttachmentOpen)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestUploadAttachment(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)
	file := dto.AttachmentFile{Filename: "Report Card.PNG", Bytes: pngBytes(t)}

	_, err := h.svc.UploadAttachment(context.Background(), form, file)
	assert.ErrorIs(t, err, ErrAttachmentClosed)

	h.svc.OpenAttachment(form)
	before := *form
	url, err := h.svc.UploadAttachment(context.Background(), form, file)
	require.NoError(t, err)

	require.Len(t, h.uploader.uploads, 1)
	assert.Equal(t, "scholarship/entrance/S1/T1", h.uploader.uploads[0].folder)
	assert.Contains(t, url, "scholarship/entrance/S1/T1")
	assert.Equal(t, before, *form)
}

func TestUploadAttachmentRejects(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)
	h.svc.OpenAttachment(form)

	_, err := h.svc.UploadAttachment(context.Background(), form, dto.AttachmentFile{Filename: "grades.pdf", Bytes: []byte("%PDF")})
	assert.ErrorIs(t, err, ErrUnsupportedAttachment)

	_, err = h.svc.UploadAttachment(context.Background(), form, dto.AttachmentFile{Filename: "fake.jpg", Bytes: []byte("not an image")})
	assert.ErrorIs(t, err, ErrUnsupportedAttachment)

	big := make([]byte, MaxAttachmentSize+1)
	_, err = h.svc.UploadAttachment(context.Background(), form, dto.AttachmentFile{Filename: "big.png", Bytes: big})
	assert.ErrorIs(t, err, ErrAttachmentTooLarge)

	assert.Empty(t, h.uploader.uploads)
}

func TestRecentSubmissions(t *testing.T) {
	h := newHarness()
	form := h.mount("S1", "T1", sessionJSON)
	_, err := h.svc.Submit(context.Background(), "sess-1", form)
	require.NoError(t, err)

	logs, err := h.svc.RecentSubmissions("2021-00123", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionSubmit, logs[0].Action)

	logs, err = h.svc.RecentSubmissions("", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
