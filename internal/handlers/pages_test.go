package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/PrassV/Propo-Staging-sub004/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPageRouter(t *testing.T, h *PageHandler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl, err := web.Templates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	r.GET("/properties", h.PropertiesPage)
	r.POST("/properties/:id", h.UpdatePropertyForm)
	r.GET("/tenants", h.TenantsPage)
	r.GET("/maintenance", h.MaintenancePage)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPropertiesPage(t *testing.T) {
	r := setupPageRouter(t, NewPageHandler(seededRepo(), nil, "Propo", nil))

	w := doRequest(r, http.MethodGet, "/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Equal(t, 2, strings.Count(html, `class="card"`))
	assert.Contains(t, html, "Lake View")
	assert.Contains(t, html, `action="/properties/p2"`)
	assert.Contains(t, html, "/static/js/register-sw.js")
	assert.NotContains(t, html, "No properties found")
}

func TestPropertiesPage_EmptyState(t *testing.T) {
	r := setupPageRouter(t, NewPageHandler(&fakeRepo{}, nil, "Propo", nil))

	w := doRequest(r, http.MethodGet, "/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No properties found")
}

func TestPropertiesPage_Error(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("db down")}
	r := setupPageRouter(t, NewPageHandler(repo, nil, "Propo", nil))

	w := doRequest(r, http.MethodGet, "/properties", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Could not load properties")
}

func TestUpdatePropertyForm(t *testing.T) {
	repo := seededRepo()
	searcher := &fakeSearcher{}
	r := setupPageRouter(t, NewPageHandler(repo, searcher, "Propo", nil))

	w := postForm(r, "/properties/p1", url.Values{"status": {"occupied"}, "price": {"21000"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/properties", w.Header().Get("Location"))

	p, err := repo.GetPropertyByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, p.Status)
	require.NotNil(t, p.Price)
	assert.Equal(t, 21000.0, *p.Price)
	assert.Len(t, searcher.indexed, 1)

	w = postForm(r, "/properties/p1", url.Values{"status": {"demolished"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postForm(r, "/properties/p1", url.Values{"price": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postForm(r, "/properties/nope", url.Values{"status": {"vacant"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// nothing to change still returns to the grid
	w = postForm(r, "/properties/p1", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestTenantsAndMaintenancePages(t *testing.T) {
	r := setupPageRouter(t, NewPageHandler(seededRepo(), nil, "Propo", nil))

	w := doRequest(r, http.MethodGet, "/tenants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ravi")
	assert.Contains(t, w.Body.String(), "Garden Flat")

	w = doRequest(r, http.MethodGet, "/maintenance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Maintenance requests are coming soon")
}
