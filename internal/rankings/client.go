package rankings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const powerRankingsPath = "/rankings/power_rankings"

// maxResponseBytes caps how much of a backend answer is read.
const maxResponseBytes = 8 << 20

type Client interface {
	PowerRankings(ctx context.Context, req PowerRankingsRequest) (*PowerRankingsResponse, error)
}

// BackendError is a non-2xx answer from the ranking service.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("rankings backend: %d %s", e.StatusCode, e.Detail)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxBody    int64
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    maxResponseBytes,
	}
}

func (c *HTTPClient) PowerRankings(ctx context.Context, in PowerRankingsRequest) (*PowerRankingsResponse, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+powerRankingsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rankings backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, c.maxBody)
	}
	if resp.StatusCode >= 400 {
		return nil, &BackendError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	var out PowerRankingsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// errorDetail pulls the message out of a {"detail": "..."} error body and
// falls back to the raw body.
func errorDetail(body []byte) string {
	var wrapper struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Detail) > 0 {
		var msg string
		if err := json.Unmarshal(wrapper.Detail, &msg); err == nil {
			return msg
		}
		return string(wrapper.Detail)
	}
	return strings.TrimSpace(string(body))
}
