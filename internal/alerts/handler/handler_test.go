package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"alerthub_backend/internal/alerts/repository"
	"alerthub_backend/internal/alerts/service"
	"alerthub_backend/platform/events"
	"alerthub_backend/platform/httpkit"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/validator"
)

type memRepo struct {
	nextID int64
	alerts map[int64]repository.Alert
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, alerts: map[int64]repository.Alert{}}
}

func (r *memRepo) Create(_ context.Context, fields repository.CreateFields) (repository.Alert, error) {
	alert := repository.Alert{
		ID:          r.nextID,
		UserID:      fields.UserID,
		Status:      repository.StatusReceived,
		Title:       fields.Title,
		Description: fields.Description,
		Category:    fields.Category,
		Location:    fields.Location,
		Priority:    fields.Priority,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.alerts[alert.ID] = alert
	r.nextID++
	return alert, nil
}

func (r *memRepo) List(_ context.Context) ([]repository.Alert, error) {
	var out []repository.Alert
	for _, alert := range r.alerts {
		out = append(out, alert)
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, alertID int64) (repository.Alert, error) {
	alert, ok := r.alerts[alertID]
	if !ok {
		return repository.Alert{}, repository.ErrNotFound
	}
	return alert, nil
}

func (r *memRepo) Update(_ context.Context, alertID int64, fields repository.UpdateFields) (repository.Alert, error) {
	alert, ok := r.alerts[alertID]
	if !ok {
		return repository.Alert{}, repository.ErrNotFound
	}
	if fields.Title != nil {
		alert.Title = *fields.Title
	}
	r.alerts[alertID] = alert
	return alert, nil
}

func (r *memRepo) SetStatus(_ context.Context, alertID int64, status string) (repository.Alert, error) {
	alert, ok := r.alerts[alertID]
	if !ok {
		return repository.Alert{}, repository.ErrNotFound
	}
	alert.Status = status
	r.alerts[alertID] = alert
	return alert, nil
}

func testIdentity(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextRoleKey, role)
		c.Next()
	}
}

func newTestRouter(repo *memRepo, userID int64, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("development")
	svc := service.New(repo, nil, events.NewInMemoryBus(log), log)
	h := New(svc, validator.New())

	engine := gin.New()
	authed := engine.Group("", testIdentity(userID, role))
	authed.POST("/alerts", h.Create)
	authed.GET("/alerts", h.List)
	authed.GET("/alerts/:id", h.Get)
	authed.PUT("/alerts/:id", h.Update)
	authed.PATCH("/alerts/:id/status", h.ChangeStatus)
	return engine
}

func postJSON(engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateAlertJSON(t *testing.T) {
	repo := newMemRepo()
	engine := newTestRouter(repo, 5, "citizen")

	rec := postJSON(engine, http.MethodPost, "/alerts", map[string]string{
		"title":       "Arbol caido",
		"description": "Bloquea la calle 10",
		"category":    "environment",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(repo.alerts) != 1 {
		t.Fatalf("alerts persisted = %d, want 1", len(repo.alerts))
	}
	if repo.alerts[1].UserID != 5 {
		t.Errorf("userID = %d, want 5", repo.alerts[1].UserID)
	}
}

func TestCreateAlertValidation(t *testing.T) {
	engine := newTestRouter(newMemRepo(), 5, "citizen")

	rec := postJSON(engine, http.MethodPost, "/alerts", map[string]string{
		"title": "Sin descripcion",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAlertMultipart(t *testing.T) {
	repo := newMemRepo()
	engine := newTestRouter(repo, 5, "citizen")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("title", "Semaforo dañado")
	_ = w.WriteField("description", "Intermitente desde ayer")
	_ = w.WriteField("category", "traffic")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/alerts", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.alerts[1].Title != "Semaforo dañado" {
		t.Errorf("title = %q", repo.alerts[1].Title)
	}
}

func TestCreateAlertMultipartEvidenceWithoutStore(t *testing.T) {
	engine := newTestRouter(newMemRepo(), 5, "citizen")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("title", "t")
	_ = w.WriteField("description", "d")
	_ = w.WriteField("category", "c")
	part, _ := w.CreateFormFile("evidence", "photo.jpg")
	_, _ = part.Write([]byte("jpeg bytes"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/alerts", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when storage disabled", rec.Code)
	}
}

func TestGetAlertBadID(t *testing.T) {
	engine := newTestRouter(newMemRepo(), 5, "citizen")

	for _, path := range []string{"/alerts/abc", "/alerts/0", "/alerts/-3"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestGetAlertNotFound(t *testing.T) {
	engine := newTestRouter(newMemRepo(), 5, "citizen")

	req := httptest.NewRequest(http.MethodGet, "/alerts/42", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateAlertForbiddenForStranger(t *testing.T) {
	repo := newMemRepo()
	owner := newTestRouter(repo, 5, "citizen")
	stranger := newTestRouter(repo, 6, "citizen")

	rec := postJSON(owner, http.MethodPost, "/alerts", map[string]string{
		"title": "t", "description": "d", "category": "c",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = postJSON(stranger, http.MethodPut, "/alerts/1", map[string]string{"title": "hack"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestUpdateAlertLockedAfterReview(t *testing.T) {
	repo := newMemRepo()
	engine := newTestRouter(repo, 5, "citizen")

	rec := postJSON(engine, http.MethodPost, "/alerts", map[string]string{
		"title": "t", "description": "d", "category": "c",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	if _, err := repo.SetStatus(context.Background(), 1, repository.StatusInReview); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	rec = postJSON(engine, http.MethodPut, "/alerts/1", map[string]string{"title": "late edit"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	admin := newTestRouter(repo, 9, "admin")
	rec = postJSON(admin, http.MethodPut, "/alerts/1", map[string]string{"title": "admin edit"})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}

func TestChangeStatusEndpoint(t *testing.T) {
	repo := newMemRepo()
	engine := newTestRouter(repo, 9, "admin")

	rec := postJSON(engine, http.MethodPost, "/alerts", map[string]string{
		"title": "t", "description": "d", "category": "c",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = postJSON(engine, http.MethodPatch, "/alerts/1/status", map[string]string{"status": "attended"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.alerts[1].Status != repository.StatusAttended {
		t.Errorf("alert status = %q", repo.alerts[1].Status)
	}

	rec = postJSON(engine, http.MethodPatch, "/alerts/1/status", map[string]string{"status": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus status = %d, want 400", rec.Code)
	}
}

func TestListAlerts(t *testing.T) {
	repo := newMemRepo()
	engine := newTestRouter(repo, 5, "citizen")

	for i := 0; i < 3; i++ {
		rec := postJSON(engine, http.MethodPost, "/alerts", map[string]string{
			"title": fmt.Sprintf("alert %d", i), "description": "d", "category": "c",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d status = %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alert 2") {
		t.Errorf("body missing alerts: %s", rec.Body.String())
	}
}
