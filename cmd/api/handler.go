package api

import (
	"time"

	authDelivery "flux-backend/internal/auth/delivery"
	authUsecase "flux-backend/internal/auth/usecase"
	taskDelivery "flux-backend/internal/task/delivery"
	taskUsecasePkg "flux-backend/internal/task/usecase"
	"flux-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

type Handler struct {
	authUsecase     authUsecase.AuthUsecase
	config          *config.Config
	taskHandler     *taskDelivery.TaskHandler
	reportHandler   *taskDelivery.ReportHandler
	settingsHandler *SettingsHandler
}

func NewHandler(
	cfg *config.Config,
	authUc authUsecase.AuthUsecase,
	taskUc taskUsecasePkg.TaskUsecase,
	pipelineUc taskUsecasePkg.PipelineUsecase,
	reportUc taskUsecasePkg.ReportUsecase,
	settings *RuntimeSettings,
	models ModelLister,
) *Handler {
	taskHandler := taskDelivery.NewTaskHandler(taskUc, pipelineUc, cfg.MaxFileSizeMB)
	reportHandler := taskDelivery.NewReportHandler(reportUc)
	log.Info("[API] Task and report handlers initialized")

	return &Handler{
		authUsecase:     authUc,
		config:          cfg,
		taskHandler:     taskHandler,
		reportHandler:   reportHandler,
		settingsHandler: NewSettingsHandler(settings, models),
	}
}

// Router builds the gin engine with middleware and routes.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(), cors())
	// multipart bodies above this spill to temp files
	r.MaxMultipartMemory = 32 << 20

	SetupRoutes(r, h)
	return r
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	return h.Router().Run(addr)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"request_id":  c.GetString("requestID"),
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if session := authDelivery.SessionFrom(c); session != nil {
			fields["session_id"] = session.ID
		}
		entry := log.WithFields(fields)
		if c.Writer.Status() >= 500 {
			entry.Error("[HTTP] Request failed")
			return
		}
		entry.Debug("[HTTP] Request handled")
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
