package controllers

import (
	"net/http"

	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AboutController serves the static about pages
type AboutController struct {
	base
}

func NewAboutController(router *mux.Router, renderer *views.Renderer, logger *zap.Logger) *AboutController {
	return &AboutController{base: base{router: router, renderer: renderer, logger: logger}}
}

func (ac *AboutController) Author(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, "about/author.html", nil)
}

func (ac *AboutController) Tech(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, "about/tech.html", nil)
}
