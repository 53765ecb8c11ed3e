package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clienttracker/crm-system/internal/api/metrics"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// AttachmentHandler handles multipart uploads targeting clients and notes.
type AttachmentHandler struct {
	service ports.ClientService
}

func NewAttachmentHandler(service ports.ClientService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// UploadToClient handles POST /api/clients/:id/attachments.
//
// @Summary      Attach a file to a client
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Client id"
// @Param        file  formData  file    true  "File to attach"
// @Success      200   {object}  attachmentResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/clients/{id}/attachments [post]
func (h *AttachmentHandler) UploadToClient(c echo.Context) error {
	return h.upload(c, -1, "client")
}

// UploadToNote handles POST /api/clients/:id/notes/:index/attachments.
//
// @Summary      Attach a file to a specific note
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Client id"
// @Param        index  path      int     true  "Note index (0 = newest)"
// @Param        file   formData  file    true  "File to attach"
// @Success      200    {object}  attachmentResponse
// @Failure      400    {object}  errorResponse
// @Router       /api/clients/{id}/notes/{index}/attachments [post]
func (h *AttachmentHandler) UploadToNote(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "note index must be a non-negative integer")
	}
	return h.upload(c, index, "note")
}

func (h *AttachmentHandler) upload(c echo.Context, noteIndex int, target string) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	att, err := h.service.AddAttachment(c.Request().Context(), p, ports.AddAttachmentInput{
		ClientID:    c.Param("id"),
		NoteIndex:   noteIndex,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        src,
	})
	if err != nil {
		return err
	}

	metrics.AttachmentsUploadedTotal.WithLabelValues(target).Inc()
	return c.JSON(http.StatusOK, attachmentResponse{
		Message:    "attachment added",
		Attachment: att,
	})
}
