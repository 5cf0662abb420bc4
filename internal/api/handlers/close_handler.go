// backend-go/internal/api/handlers/close_handler.go
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invclose/backend-go/internal/domain"
	"github.com/andresuchdata/invclose/backend-go/internal/service"
	"github.com/andresuchdata/invclose/backend-go/internal/workbook"
	"github.com/andresuchdata/invclose/backend-go/pkg/logger"
)

type CloseHandler struct {
	closeService   *service.CloseService
	maxUploadBytes int64
}

func NewCloseHandler(closeService *service.CloseService, maxUploadMB int) *CloseHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &CloseHandler{
		closeService:   closeService,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// Close handles the multipart upload of the inventory ("inv") and sales
// ("ven") files together with the "period" field.
func (h *CloseHandler) Close(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	inv, err := formFile(c, "inv")
	if err != nil {
		fail(c, err)
		return
	}
	ven, err := formFile(c, "ven")
	if err != nil {
		fail(c, err)
		return
	}

	doc, err := h.closeService.CloseUploads(c.Request.Context(), c.PostForm("period"), inv, ven)
	if err != nil {
		fail(c, err)
		return
	}

	sendDocument(c, doc)
}

// CloseOneDrive handles {period, token, invId, venId}.
func (h *CloseHandler) CloseOneDrive(c *gin.Context) {
	var req domain.OneDriveCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	doc, err := h.closeService.CloseOneDrive(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	sendDocument(c, doc)
}

// CloseRemote handles {period, source, invId, venId}.
func (h *CloseHandler) CloseRemote(c *gin.Context) {
	var req domain.RemoteCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	doc, err := h.closeService.CloseRemote(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	sendDocument(c, doc)
}

// Sources lists the remote stores available to CloseRemote.
func (h *CloseHandler) Sources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": h.closeService.Sources()})
}

func formFile(c *gin.Context, field string) (domain.UploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("missing file %q: %w", field, err)
	}

	f, err := header.Open()
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}

	return domain.UploadedFile{Filename: header.Filename, Data: data}, nil
}

func sendDocument(c *gin.Context, doc *domain.Document) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	c.Header("X-Run-ID", doc.RunID)
	c.Data(http.StatusOK, workbook.ContentType, doc.Content)
}

// fail answers every error with its message as plain text.
func fail(c *gin.Context, err error) {
	logger.Log.Error().Stack().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.String(http.StatusInternalServerError, err.Error())
}
