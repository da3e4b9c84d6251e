package job

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/queuectl/middleware"
)

// NewRouter builds the gin engine with the middleware chain and every API
// route.
func NewRouter(jobs JobHandlerInterface, control ControlHandlerInterface, logger *slog.Logger, timeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.TimeoutMiddleware(timeout),
		middleware.ErrorHandler(),
	)

	r.POST("/enqueue", jobs.Enqueue)
	r.GET("/status", jobs.Status)
	r.GET("/list", jobs.List)
	r.GET("/jobs/:id", jobs.Get)

	dlq := r.Group("/dlq")
	dlq.GET("/list", jobs.DLQList)
	dlq.POST("/retry", jobs.DLQRetry)

	worker := r.Group("/worker")
	worker.POST("/start", control.WorkerStart)
	worker.POST("/stop", control.WorkerStop)
	worker.POST("/resize", control.WorkerResize)
	worker.GET("/status", control.WorkerStatus)

	r.POST("/config", control.ConfigSet)
	r.GET("/config", control.ConfigGet)

	return r
}
