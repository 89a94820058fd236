package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/service"
)

type attachmentResponse struct {
	ID          string    `json:"id"`
	WorkOrderID string    `json:"workOrderId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func attachmentToResponse(att models.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:          att.ID,
		WorkOrderID: att.WorkOrderID,
		FileName:    att.FileName,
		ContentType: att.ContentType,
		SizeBytes:   att.SizeBytes,
		UploadedBy:  att.UploadedBy,
		CreatedAt:   att.CreatedAt,
	}
}

func (h HandlerSet) UploadAttachment(c *gin.Context) {
	wo, user, ok := h.fetchOwnedWorkOrder(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	att, err := h.attachments.Upload(c.Request.Context(), service.AttachmentInput{
		WorkOrderID: wo.ID,
		UploadedBy:  user.ID,
		File:        file,
		Header:      header,
	})
	if err != nil {
		if errors.Is(err, service.ErrAttachmentTooLarge) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("work_order_id", wo.ID).Msg("attachment upload failed")
		respondError(c, http.StatusInternalServerError, "upload failed")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"attachment": attachmentToResponse(att)})
}

func (h HandlerSet) ListAttachments(c *gin.Context) {
	wo, _, ok := h.fetchOwnedWorkOrder(c)
	if !ok {
		return
	}

	list, err := h.orders.ListAttachments(c.Request.Context(), wo.ID)
	if err != nil {
		h.log.Error().Err(err).Str("work_order_id", wo.ID).Msg("list attachments failed")
		respondError(c, http.StatusInternalServerError, "could not list attachments")
		return
	}

	items := make([]attachmentResponse, 0, len(list))
	for _, att := range list {
		items = append(items, attachmentToResponse(att))
	}
	respondOK(c, http.StatusOK, gin.H{"attachments": items})
}

func (h HandlerSet) DownloadAttachment(c *gin.Context) {
	wo, _, ok := h.fetchOwnedWorkOrder(c)
	if !ok {
		return
	}

	att, url, err := h.attachments.DownloadURL(c.Request.Context(), c.Param("attachmentId"))
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("attachment download failed")
		respondError(c, http.StatusInternalServerError, "could not build download link")
		return
	}
	if att.WorkOrderID != wo.ID {
		respondError(c, http.StatusNotFound, repository.ErrAttachmentNotFound.Error())
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"attachment": attachmentToResponse(att),
		"url":        url,
	})
}
