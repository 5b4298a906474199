package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// base carries what every controller needs to respond
type base struct {
	router   *mux.Router
	renderer *views.Renderer
	logger   *zap.Logger
}

// wantsJSON reports whether the client asked for JSON
func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" || strings.HasPrefix(r.URL.Path, "/api")
}

func (c *base) render(w http.ResponseWriter, r *http.Request, page string, data views.Context) {
	c.renderStatus(w, r, http.StatusOK, page, data)
}

func (c *base) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data views.Context) {
	if err := c.renderer.Render(w, r, status, page, data); err != nil {
		c.serverError(w, r, err)
	}
}

// redirect sends a 302 to the named route
func (c *base) redirect(w http.ResponseWriter, r *http.Request, name string, pairs ...interface{}) {
	target, err := views.Reverse(c.router, name, pairs...)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (c *base) notFound(w http.ResponseWriter, r *http.Request) {
	c.sendError(w, r, "Not found", http.StatusNotFound)
}

// serverError logs err and answers 500 without leaking details
func (c *base) serverError(w http.ResponseWriter, r *http.Request, err error) {
	c.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	c.sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
}

func (c *base) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (c *base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if wantsJSON(r) {
		c.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	page := "core/500.html"
	if status == http.StatusNotFound {
		page = "core/404.html"
	}
	if err := c.renderer.Render(w, r, status, page, nil); err != nil {
		c.logger.Error("failed to render error page", zap.Error(err))
		http.Error(w, message, status)
	}
}

// NotFound answers unmatched routes
func (c *base) NotFound(w http.ResponseWriter, r *http.Request) {
	c.notFound(w, r)
}
