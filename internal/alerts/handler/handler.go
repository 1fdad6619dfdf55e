package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"alerthub_backend/internal/alerts/service"
	"alerthub_backend/internal/alerts/transport"
	"alerthub_backend/platform/httpkit"
	"alerthub_backend/platform/validator"
)

// hard cap on buffered uploads, independent of the storage limit
const maxEvidenceBytes = 50 << 20

const (
	msgInvalidRequest   = "invalid request body"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateAlertRequest
	if !h.bind(c, &req) {
		return
	}
	evidence, ok := h.readEvidence(c)
	if !ok {
		return
	}

	alert, err := h.svc.Create(c.Request.Context(), identity.UserID(), req, evidence)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, gin.H{
		"message": "alert created",
		"alert":   h.svc.Present(c.Request.Context(), alert),
	})
}

func (h *Handler) List(c *gin.Context) {
	alerts, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"alerts": h.svc.PresentAll(c.Request.Context(), alerts)})
}

func (h *Handler) Get(c *gin.Context) {
	alertID, ok := parseID(c)
	if !ok {
		return
	}
	alert, err := h.svc.Get(c.Request.Context(), alertID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"alert": h.svc.Present(c.Request.Context(), alert)})
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	alertID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateAlertRequest
	if !h.bind(c, &req) {
		return
	}
	evidence, evOK := h.readEvidence(c)
	if !evOK {
		return
	}

	alert, err := h.svc.Update(c.Request.Context(), alertID, identity.UserID(), identity.IsAdmin(), req, evidence)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"message": "alert updated",
		"alert":   h.svc.Present(c.Request.Context(), alert),
	})
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	alertID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	alert, err := h.svc.ChangeStatus(c.Request.Context(), alertID, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"message": "alert status updated",
		"alert":   h.svc.Present(c.Request.Context(), alert),
	})
}

// bind accepts either a JSON body or multipart form fields, then validates.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	var err error
	if isMultipart(c) {
		err = c.ShouldBind(req)
	} else {
		err = c.ShouldBindJSON(req)
	}
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

// readEvidence buffers the optional evidence file from a multipart request.
// Returns (nil, true) when no file was sent.
func (h *Handler) readEvidence(c *gin.Context) (*service.Evidence, bool) {
	if !isMultipart(c) {
		return nil, true
	}
	fileHeader, err := c.FormFile("evidence")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, true
	}
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read evidence file", nil)
		return nil, false
	}
	if fileHeader.Size > maxEvidenceBytes {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "evidence file is too large", nil)
		return nil, false
	}

	data, ok := readAll(c, fileHeader)
	if !ok {
		return nil, false
	}
	return &service.Evidence{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func readAll(c *gin.Context, fileHeader *multipart.FileHeader) ([]byte, bool) {
	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read evidence file", nil)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxEvidenceBytes+1))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read evidence file", nil)
		return nil, false
	}
	if len(data) > maxEvidenceBytes {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "evidence file is too large", nil)
		return nil, false
	}
	return data, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid alert id", nil)
		return 0, false
	}
	return id, true
}
