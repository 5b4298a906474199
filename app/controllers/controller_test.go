package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"yatube/app/middleware"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/repositories/mock"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// brokenPostRepo fails every read
type brokenPostRepo struct {
	*mock.PostRepository
}

func (brokenPostRepo) Count(repositories.PostFilter) (int, error) {
	return 0, errors.New("disk on fire")
}

type postFixture struct {
	router *mux.Router
	users  *mock.UserRepository
	posts  *mock.PostRepository
	groups *mock.GroupRepository
	logs   *observer.ObservedLogs
}

func setupPostController(t *testing.T, postRepo repositories.PostRepository) *postFixture {
	t.Helper()
	f := &postFixture{
		users:  mock.NewUserRepository(),
		posts:  mock.NewPostRepository(),
		groups: mock.NewGroupRepository(),
	}
	if postRepo == nil {
		postRepo = f.posts
	}
	core, logs := observer.New(zapcore.ErrorLevel)
	f.logs = logs

	router := mux.NewRouter()
	renderer, err := views.New(router)
	require.NoError(t, err)

	postService := services.NewPostService(postRepo, f.groups, f.users, 2)
	controller := NewPostController(postService, services.NewGroupService(f.groups), router, renderer, zap.New(core))
	about := NewAboutController(router, renderer, zap.NewNop())

	// Register routes manually; the layout links need every named route
	noop := func(w http.ResponseWriter, r *http.Request) {}
	router.HandleFunc("/", controller.Index).Name("posts:index")
	router.HandleFunc("/group/{slug}/", controller.GroupPosts).Name("posts:group_list")
	router.HandleFunc("/profile/{username}/", controller.Profile).Name("posts:profile")
	router.HandleFunc("/posts/{post_id:[0-9]+}/", controller.Detail).Name("posts:post_detail")
	router.HandleFunc("/create/", controller.Create).Name("posts:post_create")
	router.HandleFunc("/posts/{post_id:[0-9]+}/edit/", controller.Edit).Name("posts:post_edit")
	router.HandleFunc("/about/author/", about.Author).Name("about:author")
	router.HandleFunc("/about/tech/", about.Tech).Name("about:tech")
	for name, path := range map[string]string{
		"users:login":           "/auth/login/",
		"users:logout":          "/auth/logout/",
		"users:signup":          "/auth/signup/",
		"users:password_change": "/auth/password_change/",
	} {
		router.HandleFunc(path, noop).Name(name)
	}
	router.NotFoundHandler = http.HandlerFunc(controller.NotFound)
	f.router = router
	return f
}

func (f *postFixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	user.BeforeCreate()
	require.NoError(t, f.users.Create(user))
	return user
}

func (f *postFixture) serve(req *http.Request, user *models.User) *httptest.ResponseRecorder {
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestPostController(t *testing.T) {
	f := setupPostController(t, nil)
	author := f.user(t, "auth")
	other := f.user(t, "other")
	for _, text := range []string{"first", "second", "third"} {
		post := &models.Post{Text: text}
		require.NoError(t, post.SetAuthor(author))
		require.NoError(t, f.posts.Create(post))
	}

	t.Run("index html", func(t *testing.T) {
		w := f.serve(httptest.NewRequest(http.MethodGet, "/", nil), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "third")
		assert.NotContains(t, w.Body.String(), "first")
	})

	t.Run("index json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?page=2", nil)
		req.Header.Set("Accept", "application/json")
		w := f.serve(req, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response struct {
			Posts []models.Post `json:"posts"`
			Page  int           `json:"page"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 2, response.Page)
		require.Len(t, response.Posts, 1)
		assert.Equal(t, "first", response.Posts[0].Text)
	})

	t.Run("create", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader(url.Values{"text": {"fourth"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := f.serve(req, other)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/other/", w.Header().Get("Location"))
	})

	t.Run("edit by non author", func(t *testing.T) {
		w := f.serve(httptest.NewRequest(http.MethodGet, "/posts/1/edit/", nil), other)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/posts/1/", w.Header().Get("Location"))
	})

	t.Run("edit invalid form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts/1/edit/", strings.NewReader(url.Values{"text": {" "}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := f.serve(req, author)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required.")
	})

	t.Run("not found html", func(t *testing.T) {
		w := f.serve(httptest.NewRequest(http.MethodGet, "/posts/42/", nil), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Custom 404")
	})

	t.Run("not found json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/group/missing/", nil)
		req.Header.Set("Accept", "application/json")
		w := f.serve(req, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "Not found"}`, w.Body.String())
	})

	t.Run("about", func(t *testing.T) {
		w := f.serve(httptest.NewRequest(http.MethodGet, "/about/author/", nil), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPostControllerServerError(t *testing.T) {
	f := setupPostController(t, brokenPostRepo{mock.NewPostRepository()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	w := f.serve(req, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Internal Server Error"}`, w.Body.String())
	require.Equal(t, 1, f.logs.Len())
	assert.Contains(t, f.logs.All()[0].ContextMap()["error"], "disk on fire")

	w = f.serve(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Custom 500")
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		accept string
		want   bool
	}{
		{"html", "/", "text/html", false},
		{"accept header", "/", "application/json", true},
		{"api prefix", "/api/posts/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Accept", tt.accept)
			assert.Equal(t, tt.want, wantsJSON(req))
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	assert.True(t, safeRedirect("/create/"))
	assert.False(t, safeRedirect(""))
	assert.False(t, safeRedirect("//evil.example.com"))
	assert.False(t, safeRedirect("/\\evil.example.com"))
	assert.False(t, safeRedirect("https://evil.example.com"))
}
