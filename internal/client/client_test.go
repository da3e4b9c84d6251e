package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

func newServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client()), rec
}

func TestClient_Requests(t *testing.T) {
	tests := []struct {
		name       string
		call       func(*Client) error
		response   string
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   string
	}{
		{
			name: "enqueue",
			call: func(c *Client) error {
				job, err := c.Enqueue(context.Background(), "job1", "echo hi")
				if err == nil {
					assert.Equal(t, "pending", job.State)
				}
				return err
			},
			response:   `{"id":"job1","command":"echo hi","state":"pending"}`,
			wantMethod: http.MethodPost,
			wantPath:   "/enqueue",
			wantBody:   `{"id":"job1","command":"echo hi"}`,
		},
		{
			name: "job path is escaped",
			call: func(c *Client) error {
				_, err := c.Job(context.Background(), "a/b")
				return err
			},
			response:   `{"id":"a/b"}`,
			wantMethod: http.MethodGet,
			wantPath:   "/jobs/a%2Fb",
		},
		{
			name: "list sends state",
			call: func(c *Client) error {
				jobs, err := c.List(context.Background(), "failed")
				if err == nil {
					assert.Len(t, jobs, 2)
				}
				return err
			},
			response:   `[{"id":"a"},{"id":"b"}]`,
			wantMethod: http.MethodGet,
			wantPath:   "/list",
			wantQuery:  "state=failed",
		},
		{
			name: "status",
			call: func(c *Client) error {
				_, err := c.Status(context.Background())
				return err
			},
			response:   `[]`,
			wantMethod: http.MethodGet,
			wantPath:   "/status",
		},
		{
			name: "worker start",
			call: func(c *Client) error {
				st, err := c.StartWorkers(context.Background(), 3)
				if err == nil {
					assert.True(t, st.Running)
					assert.Equal(t, 3, st.Slots)
				}
				return err
			},
			response:   `{"running":true,"generation":1,"slots":3}`,
			wantMethod: http.MethodPost,
			wantPath:   "/worker/start",
			wantBody:   `{"num_workers":3}`,
		},
		{
			name: "worker stop has no body",
			call: func(c *Client) error {
				_, err := c.StopWorkers(context.Background())
				return err
			},
			response:   `{"running":false}`,
			wantMethod: http.MethodPost,
			wantPath:   "/worker/stop",
		},
		{
			name: "worker resize",
			call: func(c *Client) error {
				_, err := c.ResizeWorkers(context.Background(), 5)
				return err
			},
			response:   `{"running":true,"slots":5}`,
			wantMethod: http.MethodPost,
			wantPath:   "/worker/resize",
			wantBody:   `{"num_workers":5}`,
		},
		{
			name: "worker status",
			call: func(c *Client) error {
				_, err := c.WorkerStatus(context.Background())
				return err
			},
			response:   `{"running":false}`,
			wantMethod: http.MethodGet,
			wantPath:   "/worker/status",
		},
		{
			name: "config set",
			call: func(c *Client) error {
				s, err := c.SetConfig(context.Background(), "max_retries", 5)
				if err == nil {
					assert.Equal(t, 5, s.MaxRetries)
				}
				return err
			},
			response:   `{"max_retries":5,"base_time":2}`,
			wantMethod: http.MethodPost,
			wantPath:   "/config",
			wantBody:   `{"key":"max_retries","value":5}`,
		},
		{
			name: "config get",
			call: func(c *Client) error {
				_, err := c.GetConfig(context.Background())
				return err
			},
			response:   `{"max_retries":3,"base_time":2}`,
			wantMethod: http.MethodGet,
			wantPath:   "/config",
		},
		{
			name: "dlq list",
			call: func(c *Client) error {
				entries, err := c.ListDLQ(context.Background())
				if err == nil {
					assert.Equal(t, []dto.DlqEntryDTO{{ID: "dead", Command: "false"}}, entries)
				}
				return err
			},
			response:   `[{"id":"dead","command":"false"}]`,
			wantMethod: http.MethodGet,
			wantPath:   "/dlq/list",
		},
		{
			name: "dlq retry",
			call: func(c *Client) error {
				_, err := c.RetryDLQ(context.Background(), "dead")
				return err
			},
			response:   `{"id":"dead","state":"pending"}`,
			wantMethod: http.MethodPost,
			wantPath:   "/dlq/retry",
			wantBody:   `{"id":"dead"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newServer(t, http.StatusOK, tt.response)

			require.NoError(t, tt.call(c))

			assert.Equal(t, tt.wantMethod, rec.method)
			assert.Equal(t, tt.wantPath, rec.path)
			assert.Equal(t, tt.wantQuery, rec.query)
			if tt.wantBody == "" {
				assert.Empty(t, rec.body)
			} else {
				assert.JSONEq(t, tt.wantBody, rec.body)
			}
		})
	}
}

func TestClient_Errors(t *testing.T) {
	t.Run("api error body", func(t *testing.T) {
		c, _ := newServer(t, http.StatusConflict, `{"error":"job id already exists","fields":{"id":"job1"}}`)

		_, err := c.Enqueue(context.Background(), "job1", "true")

		var apiErr common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.Status)
		assert.Equal(t, "job id already exists", apiErr.Message)
		assert.Equal(t, "job1", apiErr.Fields["id"])
	})

	t.Run("non json error body", func(t *testing.T) {
		c, _ := newServer(t, http.StatusBadGateway, "upstream down")

		_, err := c.Status(context.Background())

		var apiErr common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
		assert.Equal(t, "upstream down", apiErr.Message)
	})

	t.Run("empty error body", func(t *testing.T) {
		c, _ := newServer(t, http.StatusNotFound, "")

		_, err := c.Job(context.Background(), "x")

		assert.EqualError(t, err, http.StatusText(http.StatusNotFound))
	})

	t.Run("undecodable success body", func(t *testing.T) {
		c, _ := newServer(t, http.StatusOK, "{")

		_, err := c.GetConfig(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode response")
		var syntaxErr *json.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr)
	})

	t.Run("server unreachable", func(t *testing.T) {
		c := New("http://127.0.0.1:1", nil)

		_, err := c.WorkerStatus(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "/worker/status")
	})
}
