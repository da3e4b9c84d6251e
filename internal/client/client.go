// Package client is the HTTP client behind the queuectl command line.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/dto"
)

const DefaultServer = "http://localhost:8080"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the API at baseURL. A nil httpClient gets a
// default with a ten second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Enqueue(ctx context.Context, id, command string) (*dto.JobResponseDTO, error) {
	var out dto.JobResponseDTO
	err := c.do(ctx, http.MethodPost, "/enqueue", dto.EnqueueDTO{ID: id, Command: command}, &out)
	return &out, err
}

func (c *Client) Job(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	var out dto.JobResponseDTO
	err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, &out)
	return &out, err
}

func (c *Client) Status(ctx context.Context) ([]dto.JobResponseDTO, error) {
	var out []dto.JobResponseDTO
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}

func (c *Client) List(ctx context.Context, state string) ([]dto.JobResponseDTO, error) {
	q := url.Values{}
	q.Set("state", state)

	var out []dto.JobResponseDTO
	err := c.do(ctx, http.MethodGet, "/list?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) StartWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error) {
	var out dto.WorkerStatusDTO
	err := c.do(ctx, http.MethodPost, "/worker/start", dto.WorkerStartDTO{NumWorkers: n}, &out)
	return &out, err
}

func (c *Client) StopWorkers(ctx context.Context) (*dto.WorkerStatusDTO, error) {
	var out dto.WorkerStatusDTO
	err := c.do(ctx, http.MethodPost, "/worker/stop", nil, &out)
	return &out, err
}

func (c *Client) ResizeWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error) {
	var out dto.WorkerStatusDTO
	err := c.do(ctx, http.MethodPost, "/worker/resize", dto.WorkerResizeDTO{NumWorkers: n}, &out)
	return &out, err
}

func (c *Client) WorkerStatus(ctx context.Context) (*dto.WorkerStatusDTO, error) {
	var out dto.WorkerStatusDTO
	err := c.do(ctx, http.MethodGet, "/worker/status", nil, &out)
	return &out, err
}

func (c *Client) SetConfig(ctx context.Context, key string, value int) (*config.Settings, error) {
	var out config.Settings
	err := c.do(ctx, http.MethodPost, "/config", dto.ConfigSetDTO{Key: key, Value: value}, &out)
	return &out, err
}

func (c *Client) GetConfig(ctx context.Context) (*config.Settings, error) {
	var out config.Settings
	err := c.do(ctx, http.MethodGet, "/config", nil, &out)
	return &out, err
}

func (c *Client) ListDLQ(ctx context.Context) ([]dto.DlqEntryDTO, error) {
	var out []dto.DlqEntryDTO
	err := c.do(ctx, http.MethodGet, "/dlq/list", nil, &out)
	return out, err
}

func (c *Client) RetryDLQ(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	var out dto.JobResponseDTO
	err := c.do(ctx, http.MethodPost, "/dlq/retry", dto.DlqRetryDTO{ID: id}, &out)
	return &out, err
}

// do sends one request and decodes a 2xx body into out. Other statuses are
// returned as common.APIError carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := common.APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
