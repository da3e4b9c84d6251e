package job

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/joshu-sajeev/queuectl/middleware"
)

type ControlHandler struct {
	service ControlServiceInterface
}

func NewControlHandler(s ControlServiceInterface) *ControlHandler {
	return &ControlHandler{service: s}
}

var _ ControlHandlerInterface = (*ControlHandler)(nil)

// WorkerStart handles POST /worker/start. An empty body starts the default
// number of workers.
func (h *ControlHandler) WorkerStart(c *gin.Context) {
	var req dto.WorkerStartDTO

	if !middleware.BindOptional(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.StartWorkers(c.Request.Context(), req.NumWorkers)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ControlHandler) WorkerStop(c *gin.Context) {
	resp, err := h.service.StopWorkers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ControlHandler) WorkerResize(c *gin.Context) {
	var req dto.WorkerResizeDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.ResizeWorkers(c.Request.Context(), req.NumWorkers)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ControlHandler) WorkerStatus(c *gin.Context) {
	resp, err := h.service.WorkerStatus(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfigSet handles POST /config and returns the settings after the change.
func (h *ControlHandler) ConfigSet(c *gin.Context) {
	var req dto.ConfigSetDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.SetConfig(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ControlHandler) ConfigGet(c *gin.Context) {
	resp, err := h.service.GetConfig(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
