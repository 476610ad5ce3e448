package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guild-genesis/herald/core"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	events    []core.ActivityEvent
	processed []string
}

func (r *fakeRepo) Insert(_ context.Context, _, _ string, _ int) (string, error) {
	return "", nil
}

func (r *fakeRepo) Unprocessed(_ context.Context) ([]core.ActivityEvent, error) {
	return r.events, nil
}

func (r *fakeRepo) MarkProcessed(_ context.Context, id string) error {
	for _, e := range r.events {
		if e.ID == id {
			r.processed = append(r.processed, id)
			return nil
		}
	}
	return core.ErrNotFound
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(&fakeRepo{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(&fakeRepo{}, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/events/unprocessed", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/events/unprocessed", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/events/unprocessed", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMarkProcessed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRepo{events: []core.ActivityEvent{{ID: "evt-1"}}}
	router := SetupRouter(repo, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/events/evt-1/processed", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"evt-1"}, repo.processed)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/admin/events/evt-2/processed", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
