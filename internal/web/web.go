package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	texttemplate "text/template"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/config"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	RegisterScriptPath = "/static/js/register-sw.js"
	StylesheetPath     = "/static/css/dashboard.css"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/service-worker.js
var serviceWorkerJS []byte

//go:embed static/dashboard.css
var dashboardCSS []byte

//go:embed static/register-sw.js.tmpl
var registerScriptTmpl string

// FuncMap holds the helpers available to dashboard templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatPrice": FormatPrice,
		"priceValue":  priceValue,
		"formatDate":  formatDate,
		"deref":       deref,
		"statuses": func() []models.Status {
			return []models.Status{models.StatusVacant, models.StatusOccupied, models.StatusMaintenance}
		},
	}
}

// Templates parses the embedded dashboard templates
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// FormatPrice renders a price for a property card; nil prices read "Price on request"
func FormatPrice(price *float64, currency string) string {
	if price == nil {
		return "Price on request"
	}
	amount := strconv.FormatFloat(*price, 'f', -1, 64)
	if *price != float64(int64(*price)) {
		amount = strconv.FormatFloat(*price, 'f', 2, 64)
	}
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

func priceValue(price *float64) string {
	if price == nil {
		return ""
	}
	return strconv.FormatFloat(*price, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2 Jan 2006")
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// RegisterScript renders the service worker registration helper
func RegisterScript(cfg config.WebConfig) ([]byte, error) {
	path := cfg.ServiceWorkerPath
	if path == "" {
		path = "/service-worker.js"
	}
	scope := cfg.ServiceWorkerScope
	if scope == "" {
		scope = "/"
	}

	// JSON string literals are valid JavaScript string literals
	quotedPath, err := json.Marshal(path)
	if err != nil {
		return nil, err
	}
	quotedScope, err := json.Marshal(scope)
	if err != nil {
		return nil, err
	}

	tmpl, err := texttemplate.New("register-sw").Parse(registerScriptTmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registration script: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{
		"Path":  string(quotedPath),
		"Scope": string(quotedScope),
	}); err != nil {
		return nil, fmt.Errorf("failed to render registration script: %w", err)
	}
	return buf.Bytes(), nil
}

// Assets serves the service worker and the static dashboard files
type Assets struct {
	serviceWorkerPath string
	scope             string
	registerScript    []byte
}

// NewAssets renders the registration helper for cfg
func NewAssets(cfg config.WebConfig) (*Assets, error) {
	script, err := RegisterScript(cfg)
	if err != nil {
		return nil, err
	}
	swPath := cfg.ServiceWorkerPath
	if swPath == "" {
		swPath = "/service-worker.js"
	}
	scope := cfg.ServiceWorkerScope
	if scope == "" {
		scope = "/"
	}
	return &Assets{
		serviceWorkerPath: swPath,
		scope:             scope,
		registerScript:    script,
	}, nil
}

// Register mounts the asset routes
func (a *Assets) Register(r gin.IRoutes) {
	r.GET(a.serviceWorkerPath, a.ServiceWorker)
	r.GET(RegisterScriptPath, a.RegisterSW)
	r.GET(StylesheetPath, a.Stylesheet)
}

// ServiceWorker serves the worker script
func (a *Assets) ServiceWorker(c *gin.Context) {
	c.Header("Service-Worker-Allowed", a.scope)
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", serviceWorkerJS)
}

// RegisterSW serves the registration helper
func (a *Assets) RegisterSW(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", a.registerScript)
}

// Stylesheet serves the dashboard styles
func (a *Assets) Stylesheet(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "text/css; charset=utf-8", dashboardCSS)
}
