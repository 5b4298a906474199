package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"yatube/app/forms"
	"yatube/app/middleware"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PostController handles HTTP requests for posts, groups and profiles
type PostController struct {
	base
	postService  *services.PostService
	groupService *services.GroupService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, groupService *services.GroupService, router *mux.Router, renderer *views.Renderer, logger *zap.Logger) *PostController {
	return &PostController{
		base:         base{router: router, renderer: renderer, logger: logger},
		postService:  postService,
		groupService: groupService,
	}
}

// pageJSON is the JSON shape of a post listing page
type pageJSON struct {
	Posts       []*models.Post `json:"posts"`
	Page        int            `json:"page"`
	NumPages    int            `json:"num_pages"`
	Count       int            `json:"count"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

func newPageJSON(page *services.PostPage) pageJSON {
	posts := page.Items
	if posts == nil {
		posts = []*models.Post{}
	}
	return pageJSON{
		Posts:       posts,
		Page:        page.Number,
		NumPages:    page.NumPages,
		Count:       page.Count,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
}

// Index lists all posts, newest first
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := pc.postService.Index(r.URL.Query().Get("page"))
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, newPageJSON(page))
		return
	}
	pc.render(w, r, "posts/index.html", views.Context{"PageObj": page})
}

// GroupPosts lists the posts of one group
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, page, err := pc.postService.GroupPosts(mux.Vars(r)["slug"], r.URL.Query().Get("page"))
	if errors.Is(err, services.ErrNotFound) {
		pc.notFound(w, r)
		return
	}
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, struct {
			Group *models.Group `json:"group"`
			pageJSON
		}{group, newPageJSON(page)})
		return
	}
	pc.render(w, r, "posts/group_list.html", views.Context{"Group": group, "PageObj": page})
}

// Profile lists the posts of one author
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	author, page, err := pc.postService.Profile(mux.Vars(r)["username"], r.URL.Query().Get("page"))
	if errors.Is(err, services.ErrNotFound) {
		pc.notFound(w, r)
		return
	}
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, struct {
			Author *models.User `json:"author"`
			pageJSON
		}{author, newPageJSON(page)})
		return
	}
	pc.render(w, r, "posts/profile.html", views.Context{"Author": author, "PageObj": page})
}

// Detail shows a single post
func (pc *PostController) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.notFound(w, r)
		return
	}
	post, count, err := pc.postService.Detail(id)
	if errors.Is(err, services.ErrNotFound) {
		pc.notFound(w, r)
		return
	}
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, struct {
			*models.Post
			PostsCount int `json:"posts_count"`
		}{post, count})
		return
	}
	user := middleware.CurrentUser(r.Context())
	pc.render(w, r, "posts/post_detail.html", views.Context{
		"Post":       post,
		"PostsCount": count,
		"CanEdit":    pc.postService.CanEdit(user, post),
	})
}

// Create shows the new post form and stores submitted posts
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if r.Method != http.MethodPost {
		pc.renderForm(w, r, forms.NewPostForm(nil), false, 0)
		return
	}

	if err := r.ParseForm(); err != nil {
		pc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := forms.NewPostForm(r.PostForm)
	if _, err := pc.postService.Create(user, form); err != nil {
		if _, ok := forms.AsValidationError(err); ok {
			pc.renderForm(w, r, form, false, 0)
			return
		}
		pc.serverError(w, r, err)
		return
	}
	pc.redirect(w, r, "posts:profile", "username", user.Username)
}

// Edit shows the edit form for a post and stores changes. Only the author
// may edit; anyone else is sent back to the post.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.notFound(w, r)
		return
	}
	user := middleware.CurrentUser(r.Context())

	post, err := pc.postService.GetPost(id)
	if errors.Is(err, services.ErrNotFound) {
		pc.notFound(w, r)
		return
	}
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	if !pc.postService.CanEdit(user, post) {
		pc.redirect(w, r, "posts:post_detail", "post_id", post.ID)
		return
	}

	if r.Method != http.MethodPost {
		pc.renderForm(w, r, forms.PostFormFrom(post), true, post.ID)
		return
	}

	if err := r.ParseForm(); err != nil {
		pc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := forms.NewPostForm(r.PostForm)
	_, err = pc.postService.Edit(user, id, form)
	switch {
	case err == nil:
		pc.redirect(w, r, "posts:post_detail", "post_id", id)
	case errors.Is(err, services.ErrForbidden):
		pc.redirect(w, r, "posts:post_detail", "post_id", id)
	case errors.Is(err, services.ErrNotFound):
		pc.notFound(w, r)
	default:
		if _, ok := forms.AsValidationError(err); ok {
			pc.renderForm(w, r, form, true, id)
			return
		}
		pc.serverError(w, r, err)
	}
}

func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, form *forms.PostForm, isEdit bool, id int) {
	groups, err := pc.groupService.ListGroups()
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	pc.render(w, r, "posts/create_post.html", views.Context{
		"Form":   form,
		"Groups": groups,
		"IsEdit": isEdit,
		"PostID": id,
	})
}

func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["post_id"])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
