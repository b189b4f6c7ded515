package ingest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the upload endpoint under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/upload", handler.uploadFile)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) uploadFile(c *gin.Context) {
	// a missing part and an unparsable form both count as "no file"
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fileHeader = nil
	}

	stored, err := h.service.Ingest(c.Request.Context(), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		case errors.Is(err, ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds %dMB limit", h.service.MaxFileSizeMB())})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "File uploaded successfully",
		File:    stored,
	})
}
