package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"flux-backend/pkg/ai"
	"flux-backend/pkg/gemini"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const ollamaPingTimeout = 5 * time.Second

// RuntimeSettings holds settings that can be changed without a restart. The text
// generator reads them on every call.
type RuntimeSettings struct {
	mu            sync.RWMutex
	ollamaBaseURL string
	ollamaModel   string
}

// NewRuntimeSettings initializes runtime settings from static config
func NewRuntimeSettings(ollamaBaseURL, ollamaModel string) *RuntimeSettings {
	return &RuntimeSettings{
		ollamaBaseURL: ollamaBaseURL,
		ollamaModel:   ollamaModel,
	}
}

// OllamaBaseURL returns the current runtime Ollama base URL
func (s *RuntimeSettings) OllamaBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ollamaBaseURL
}

// OllamaModel returns the current runtime Ollama model
func (s *RuntimeSettings) OllamaModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ollamaModel
}

func (s *RuntimeSettings) setOllama(baseURL, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ollamaBaseURL = baseURL
	if model != "" {
		s.ollamaModel = model
	}
}

// ModelLister lists the generative models available to the API key
type ModelLister interface {
	ListModels(ctx context.Context) ([]gemini.ModelInfo, error)
}

type SettingsHandler struct {
	settings *RuntimeSettings
	models   ModelLister
	ping     func(ctx context.Context, baseURL string) (int, error)
}

// NewSettingsHandler creates the settings handler. models may be nil when no
// Gemini key is configured.
func NewSettingsHandler(settings *RuntimeSettings, models ModelLister) *SettingsHandler {
	return &SettingsHandler{settings: settings, models: models, ping: ai.Ping}
}

// UpdateOllamaSettingsRequest represents the request body for updating Ollama settings
type UpdateOllamaSettingsRequest struct {
	OllamaBaseURL string `json:"ollama_base_url" binding:"required"`
	OllamaModel   string `json:"ollama_model,omitempty"`
}

// GetOllamaSettings returns current Ollama configuration
// GET /api/settings/ollama
func (h *SettingsHandler) GetOllamaSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ollama_base_url": h.settings.OllamaBaseURL(),
		"ollama_model":    h.settings.OllamaModel(),
	})
}

// UpdateOllamaSettings updates Ollama configuration at runtime
// PUT /api/settings/ollama
func (h *SettingsHandler) UpdateOllamaSettings(c *gin.Context) {
	var req UpdateOllamaSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.settings.setOllama(req.OllamaBaseURL, req.OllamaModel)
	log.Infof("[Settings] Ollama set to %s (%s)", req.OllamaBaseURL, h.settings.OllamaModel())

	c.JSON(http.StatusOK, gin.H{
		"message":         "Ollama settings updated successfully",
		"ollama_base_url": req.OllamaBaseURL,
		"ollama_model":    h.settings.OllamaModel(),
	})
}

// TestOllamaConnection tests if the Ollama server is reachable
// POST /api/settings/ollama/test
func (h *SettingsHandler) TestOllamaConnection(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	// An empty body tests the current settings
	_ = c.ShouldBindJSON(&req)
	if req.OllamaBaseURL == "" {
		req.OllamaBaseURL = h.settings.OllamaBaseURL()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ollamaPingTimeout)
	defer cancel()

	code, err := h.ping(ctx, req.OllamaBaseURL)
	if err != nil {
		resp := gin.H{"connected": false, "error": err.Error()}
		if code != 0 {
			resp["status_code"] = code
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":       true,
		"ollama_base_url": req.OllamaBaseURL,
	})
}

// ListModels returns the Gemini models that support content generation
// GET /api/settings/models
func (h *SettingsHandler) ListModels(c *gin.Context) {
	if h.models == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GEMINI_API_KEY is not configured"})
		return
	}
	models, err := h.models.ListModels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models, "count": len(models)})
}
