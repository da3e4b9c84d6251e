package job

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/joshu-sajeev/queuectl/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Enqueue handles POST /enqueue. It binds and validates the body, creates
// the job and returns it with HTTP 201.
func (h *JobHandler) Enqueue(c *gin.Context) {
	var req dto.EnqueueDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.Enqueue(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.Error(common.Errf(http.StatusBadRequest, "invalid ID"))
		return
	}

	resp, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status handles GET /status and returns every job.
func (h *JobHandler) Status(c *gin.Context) {
	jobs, err := h.service.Status(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// List handles GET /list?state=... and returns the jobs in that state.
func (h *JobHandler) List(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		c.Error(common.Errf(http.StatusBadRequest, "state parameter is required"))
		return
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), state)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) DLQList(c *gin.Context) {
	entries, err := h.service.ListDLQ(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// DLQRetry handles POST /dlq/retry and returns the reset job.
func (h *JobHandler) DLQRetry(c *gin.Context) {
	var req dto.DlqRetryDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.RetryDLQ(c.Request.Context(), req.ID)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, resp)
}
