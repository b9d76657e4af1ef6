package delivery

import (
	"io"
	"net/http"
	"strconv"

	"flux-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase     usecase.TaskUsecase
	pipelineUsecase usecase.PipelineUsecase
	maxUploadBytes  int64
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase, pipelineUsecase usecase.PipelineUsecase, maxFileMB int) *TaskHandler {
	return &TaskHandler{
		taskUsecase:     taskUsecase,
		pipelineUsecase: pipelineUsecase,
		maxUploadBytes:  int64(maxFileMB) * 1024 * 1024,
	}
}

// UpdateStatusRequest represents the request body for moving a task
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChatRequest represents a question for the task assistant
type ChatRequest struct {
	Question    string `json:"question" binding:"required"`
	WithContext *bool  `json:"with_context"`
}

// GetTasks returns all tasks
// GET /api/tasks?status=Done&start=2024-05-01&end=2024-05-31
func (h *TaskHandler) GetTasks(c *gin.Context) {
	tasks, err := h.taskUsecase.ListTasks(c.Request.Context(), usecase.TaskFilter{
		Status: c.Query("status"),
		Start:  c.Query("start"),
		End:    c.Query("end"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// GetStats returns task counts per status
// GET /api/tasks/stats
func (h *TaskHandler) GetStats(c *gin.Context) {
	stats, err := h.taskUsecase.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Search ranks tasks against a free-text query
// GET /api/tasks/search?q=login&limit=10
func (h *TaskHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	hits, err := h.taskUsecase.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": hits,
		"count":   len(hits),
	})
}

// GetRecentNotes returns the newest notes
// GET /api/tasks/notes/recent?limit=5
func (h *TaskHandler) GetRecentNotes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	notes, err := h.taskUsecase.RecentNotes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// GetTaskByID returns a specific task
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	task, err := h.taskUsecase.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus moves a task to another workflow stage
// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask edits task columns
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// IngestEvidence uploads and analyzes a file
// POST /api/tasks/ingest (multipart: file, notes)
func (h *TaskHandler) IngestEvidence(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Form field 'file' is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	// one byte over the limit is enough for the size check to reject it
	limit := h.maxUploadBytes + 1
	if h.maxUploadBytes <= 0 {
		limit = fileHeader.Size + 1
	}
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.pipelineUsecase.IngestEvidence(c.Request.Context(), usecase.IngestRequest{
		Filename: fileHeader.Filename,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
		Notes:    c.PostForm("notes"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// CreateNote saves a quick note
// POST /api/tasks/notes
func (h *TaskHandler) CreateNote(c *gin.Context) {
	var req usecase.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.pipelineUsecase.SaveNote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Chat answers a question about the board
// POST /api/chat
func (h *TaskHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	withContext := true
	if req.WithContext != nil {
		withContext = *req.WithContext
	}

	answer, err := h.taskUsecase.Ask(c.Request.Context(), req.Question, withContext)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
