package service

import (
	"bytes"
	"context"

	"alerthub_backend/internal/alerts/repository"
	"alerthub_backend/internal/alerts/transport"
	"alerthub_backend/internal/storage"
	"alerthub_backend/platform/apperr"
	"alerthub_backend/platform/events"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/sanitize"
)

const evidenceFolder = "alerts"

// EventAlertCreated is published after a new alert is persisted.
const EventAlertCreated = "alerts.alert.created"

// AlertCreatedEvent notifies subscribers about a freshly reported alert.
type AlertCreatedEvent struct {
	events.BaseEvent
	AlertID  int64
	UserID   int64
	Category string
}

func (e AlertCreatedEvent) EventName() string { return EventAlertCreated }

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, fields repository.CreateFields) (repository.Alert, error)
	List(ctx context.Context) ([]repository.Alert, error)
	GetByID(ctx context.Context, alertID int64) (repository.Alert, error)
	Update(ctx context.Context, alertID int64, fields repository.UpdateFields) (repository.Alert, error)
	SetStatus(ctx context.Context, alertID int64, status string) (repository.Alert, error)
}

// Evidence is an uploaded attachment, fully buffered so the content can be
// inspected before storage.
type Evidence struct {
	FileName    string
	ContentType string
	Data        []byte
}

type Service struct {
	repo  Repository
	store storage.ObjectStore
	bus   events.Bus
	log   *logger.Logger
}

// New creates the alert service. store may be nil when object storage is not
// configured; evidence uploads are rejected in that case.
func New(repo Repository, store storage.ObjectStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, bus: bus, log: log}
}

// Create registers a new alert for the reporting user. The alert always
// starts in the received status.
func (s *Service) Create(ctx context.Context, userID int64, in transport.CreateAlertRequest, evidence *Evidence) (repository.Alert, error) {
	fields := repository.CreateFields{
		UserID:      userID,
		Title:       sanitize.Text(in.Title),
		Description: sanitize.Text(in.Description),
		Category:    sanitize.Text(in.Category),
		Location:    optional(in.Location),
		Priority:    optional(in.Priority),
	}
	if fields.Title == "" || fields.Description == "" || fields.Category == "" {
		return repository.Alert{}, apperr.BadRequest("title, description and category are required")
	}

	if evidence != nil {
		key, err := s.storeEvidence(ctx, evidence)
		if err != nil {
			return repository.Alert{}, err
		}
		fields.EvidenceKey = &key
		fields.EvidenceType = &evidence.ContentType

		if lat, lon, ok := extractGPS(evidence); ok {
			fields.HintLat = &lat
			fields.HintLon = &lon
		}
	}

	alert, err := s.repo.Create(ctx, fields)
	if err != nil {
		s.log.DatabaseError("create alert", err)
		return repository.Alert{}, apperr.Wrap(apperr.KindInternal, "could not create alert", err)
	}

	s.bus.Publish(ctx, AlertCreatedEvent{
		BaseEvent: events.NewBaseEvent(),
		AlertID:   alert.ID,
		UserID:    alert.UserID,
		Category:  alert.Category,
	})
	return alert, nil
}

// List returns every visible alert, newest first.
func (s *Service) List(ctx context.Context) ([]repository.Alert, error) {
	alerts, err := s.repo.List(ctx)
	if err != nil {
		s.log.DatabaseError("list alerts", err)
		return nil, apperr.Wrap(apperr.KindInternal, "could not list alerts", err)
	}
	return alerts, nil
}

func (s *Service) Get(ctx context.Context, alertID int64) (repository.Alert, error) {
	alert, err := s.repo.GetByID(ctx, alertID)
	if err == repository.ErrNotFound {
		return repository.Alert{}, apperr.NotFound("alert not found")
	}
	if err != nil {
		s.log.DatabaseError("get alert", err)
		return repository.Alert{}, apperr.Wrap(apperr.KindInternal, "could not load alert", err)
	}
	return alert, nil
}

// Update edits an alert. The reporting citizen may edit only while the alert
// is still in the received status; admins may edit at any time.
func (s *Service) Update(ctx context.Context, alertID, actorID int64, actorIsAdmin bool, in transport.UpdateAlertRequest, evidence *Evidence) (repository.Alert, error) {
	alert, err := s.Get(ctx, alertID)
	if err != nil {
		return repository.Alert{}, err
	}

	if !actorIsAdmin {
		if alert.UserID != actorID {
			return repository.Alert{}, apperr.Forbidden("you can only edit your own alerts")
		}
		if alert.Status != repository.StatusReceived {
			return repository.Alert{}, apperr.Forbidden("alert is already being processed and can no longer be edited")
		}
	}

	fields := repository.UpdateFields{
		Title:       sanitize.TextPtr(in.Title),
		Description: sanitize.TextPtr(in.Description),
		Category:    sanitize.TextPtr(in.Category),
		Location:    sanitize.TextPtr(in.Location),
		Priority:    in.Priority,
	}

	if evidence != nil {
		key, err := s.storeEvidence(ctx, evidence)
		if err != nil {
			return repository.Alert{}, err
		}
		fields.EvidenceKey = &key
		fields.EvidenceType = &evidence.ContentType

		if lat, lon, ok := extractGPS(evidence); ok {
			fields.HintLat = &lat
			fields.HintLon = &lon
		}
		if alert.EvidenceKey != nil {
			if err := s.store.Delete(ctx, *alert.EvidenceKey); err != nil {
				s.log.UpstreamError("storage", "delete evidence", err)
			}
		}
	}

	updated, err := s.repo.Update(ctx, alertID, fields)
	if err == repository.ErrNotFound {
		return repository.Alert{}, apperr.NotFound("alert not found")
	}
	if err != nil {
		s.log.DatabaseError("update alert", err)
		return repository.Alert{}, apperr.Wrap(apperr.KindInternal, "could not update alert", err)
	}
	return updated, nil
}

// ChangeStatus moves an alert through the review workflow. Admin only; the
// handler enforces the role.
func (s *Service) ChangeStatus(ctx context.Context, alertID int64, status string) (repository.Alert, error) {
	if !repository.ValidStatus(status) {
		return repository.Alert{}, apperr.BadRequest("unknown alert status")
	}
	alert, err := s.repo.SetStatus(ctx, alertID, status)
	if err == repository.ErrNotFound {
		return repository.Alert{}, apperr.NotFound("alert not found")
	}
	if err != nil {
		s.log.DatabaseError("change alert status", err)
		return repository.Alert{}, apperr.Wrap(apperr.KindInternal, "could not change alert status", err)
	}
	return alert, nil
}

func (s *Service) storeEvidence(ctx context.Context, evidence *Evidence) (string, error) {
	if s.store == nil {
		return "", apperr.Unavailable("evidence storage is not configured")
	}
	if err := s.store.ValidateContentType(evidence.ContentType); err != nil {
		return "", apperr.Validation(err.Error())
	}
	if err := s.store.ValidateFileSize(int64(len(evidence.Data))); err != nil {
		return "", apperr.Validation(err.Error())
	}

	key, err := s.store.Upload(ctx, evidenceFolder, evidence.FileName, evidence.ContentType, bytes.NewReader(evidence.Data), int64(len(evidence.Data)))
	if err != nil {
		s.log.UpstreamError("storage", "upload evidence", err)
		return "", apperr.Unavailable("could not store evidence file")
	}
	return key, nil
}

// Present converts an alert for the API, minting a signed download URL for
// the evidence when present. URL failures degrade to an alert without the
// evidence link.
func (s *Service) Present(ctx context.Context, alert repository.Alert) transport.AlertResponse {
	resp := transport.AlertResponse{
		ID:          alert.ID,
		UserID:      alert.UserID,
		Status:      alert.Status,
		Title:       alert.Title,
		Description: alert.Description,
		Category:    alert.Category,
		Location:    alert.Location,
		Priority:    alert.Priority,
		CreatedAt:   alert.CreatedAt,
		UpdatedAt:   alert.UpdatedAt,
	}
	if alert.HintLat != nil && alert.HintLon != nil {
		resp.LocationHint = &transport.LocationHintResponse{Lat: *alert.HintLat, Lon: *alert.HintLon}
	}
	if alert.EvidenceKey != nil && alert.EvidenceType != nil && s.store != nil {
		signed, err := s.store.SignedDownloadURL(ctx, *alert.EvidenceKey)
		if err != nil {
			s.log.UpstreamError("storage", "sign evidence url", err)
		} else {
			resp.Evidence = &transport.EvidenceResponse{URL: signed.URL, ContentType: *alert.EvidenceType}
		}
	}
	return resp
}

// PresentAll converts a slice of alerts, never returning nil.
func (s *Service) PresentAll(ctx context.Context, alerts []repository.Alert) []transport.AlertResponse {
	out := make([]transport.AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, s.Present(ctx, alert))
	}
	return out
}

func optional(value string) *string {
	value = sanitize.Text(value)
	if value == "" {
		return nil
	}
	return &value
}
