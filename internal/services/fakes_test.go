package services

import (
	"context"
	"sync"

	"github.com/SundayYogurt/scholarship_service/internal/domain"
	"github.com/SundayYogurt/scholarship_service/internal/dto"
)

type fakeAPI struct {
	mu sync.Mutex

	typesResp *dto.TypesResponse
	typesErr  error
	typeCalls []string

	insertResp  *dto.InsertResponse
	insertErr   error
	insertCalls []dto.EntranceApplicationRequest

	// when set, InsertEntranceApplication signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeAPI) FetchTypes(ctx context.Context, tid string) (*dto.TypesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typeCalls = append(f.typeCalls, tid)
	return f.typesResp, f.typesErr
}

func (f *fakeAPI) InsertEntranceApplication(ctx context.Context, req dto.EntranceApplicationRequest) (*dto.InsertResponse, error) {
	f.mu.Lock()
	f.insertCalls = append(f.insertCalls, req)
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	return f.insertResp, f.insertErr
}

func (f *fakeAPI) inserts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.insertCalls)
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditLog
	err     error
}

func (f *fakeAudit) CreateAuditLog(entry *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return f.err
}

func (f *fakeAudit) ListByActor(actorID string, limit int) ([]domain.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AuditLog
	for _, e := range f.entries {
		if e.ActorID == actorID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeConsent struct {
	mu       sync.Mutex
	consents []domain.UserConsent
	err      error
}

func (f *fakeConsent) CreateConsent(c *domain.UserConsent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consents = append(f.consents, *c)
	return f.err
}

func (f *fakeConsent) HasConsent(userID, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, nil
	}
	for _, c := range f.consents {
		if c.UserID == userID && c.ConsentCode == code {
			return true, nil
		}
	}
	return false, nil
}

type published struct {
	key, value string
}

type fakeProducer struct {
	mu       sync.Mutex
	messages []published
}

func (f *fakeProducer) PublishMessage(key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{string(key), string(value)})
	return nil
}

type upload struct {
	folder, filename string
	size             int
}

type fakeUploader struct {
	uploads []upload
}

func (f *fakeUploader) UploadImage(ctx context.Context, folder, filename string, b []byte) (string, error) {
	f.uploads = append(f.uploads, upload{folder, filename, len(b)})
	return "https://res.cloudinary.com/demo/" + folder + "/" + filename + ".jpg", nil
}
