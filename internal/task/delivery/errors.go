package delivery

import (
	"errors"
	"net/http"

	"flux-backend/internal/task/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError writes err with the status its kind maps to. Anything that is not a
// validation or lookup failure came from an external service.
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	default:
		log.WithField("path", c.FullPath()).Errorf("[TaskAPI] %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
