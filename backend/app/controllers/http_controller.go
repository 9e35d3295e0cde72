package controllers

import (
	"net/http"
	"time"

	"bookshelf/backend/app/db"
	"bookshelf/backend/app/response"
)

// HTTPController serves the liveness and fallback routes.
type HTTPController struct {
	DB      *db.Manager
	Started time.Time
}

func NewHTTPController(m *db.Manager) *HTTPController {
	return &HTTPController{DB: m, Started: time.Now()}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Health always answers 200; a down database is reported, not fatal.
func (c *HTTPController) Health(w http.ResponseWriter, r *http.Request) {
	h := healthResponse{Status: "ok", Database: "connected", Uptime: time.Since(c.Started).Round(time.Second).String()}
	if !c.DB.Connected() {
		h.Status = "degraded"
		h.Database = "disconnected"
	}
	response.OK(w, h)
}

func (c *HTTPController) NotFound(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, http.StatusNotFound, "Route not found")
}

func (c *HTTPController) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
}
