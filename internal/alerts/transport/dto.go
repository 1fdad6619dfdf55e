package transport

import "time"

// CreateAlertRequest is the non-file part of an alert submission. It arrives
// either as JSON or as multipart form fields alongside the evidence file.
type CreateAlertRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required,max=5000"`
	Category    string `json:"category" form:"category" validate:"required,max=100"`
	Location    string `json:"location" form:"location" validate:"omitempty,max=300"`
	Priority    string `json:"priority" form:"priority" validate:"omitempty,oneof=low medium high"`
}

type UpdateAlertRequest struct {
	Title       *string `json:"title" form:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" form:"category" validate:"omitempty,max=100"`
	Location    *string `json:"location" form:"location" validate:"omitempty,max=300"`
	Priority    *string `json:"priority" form:"priority" validate:"omitempty,oneof=low medium high"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// EvidenceResponse describes the stored evidence attachment, if any.
type EvidenceResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

type LocationHintResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type AlertResponse struct {
	ID           int64                 `json:"id"`
	UserID       int64                 `json:"userId"`
	Status       string                `json:"status"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     string                `json:"category"`
	Location     *string               `json:"location"`
	Priority     *string               `json:"priority"`
	Evidence     *EvidenceResponse     `json:"evidence,omitempty"`
	LocationHint *LocationHintResponse `json:"locationHint,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}
