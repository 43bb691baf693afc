package scholarship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
)

const (
	StatusSuccess = "success"

	typesPath  = "/student/types"
	insertPath = "/student/entrance-applications"

	maxBody = 1 << 20
)

// envelope is the shape every upstream endpoint answers with.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTypes: curriculum year / semester rows for a type id.
// Endpoint: GET /student/types?tid=
func (c *Client) FetchTypes(ctx context.Context, tid string) (*dto.TypesResponse, error) {
	if strings.TrimSpace(tid) == "" {
		return nil, errors.New("tid is required")
	}

	q := url.Values{}
	q.Set("tid", tid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+typesPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}

	out := &dto.TypesResponse{Status: env.Status, Message: env.Message}
	if env.Status == StatusSuccess && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &out.Data); err != nil {
			return nil, fmt.Errorf("decode types data: %w", err)
		}
	}
	return out, nil
}

// InsertEntranceApplication posts the assembled form.
// Endpoint: POST /student/entrance-applications
func (c *Client) InsertEntranceApplication(ctx context.Context, in dto.EntranceApplicationRequest) (*dto.InsertResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+insertPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return &dto.InsertResponse{Status: env.Status, Message: env.Message}, nil
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	// non-2xx: hand back the envelope when the API explained itself, otherwise fail
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && env.Status != "" {
			if env.Status == StatusSuccess {
				env.Status = "error"
			}
			return &env, nil
		}
		return nil, fmt.Errorf("scholarship api http error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("decode scholarship api response: %w", decodeErr)
	}
	return &env, nil
}
