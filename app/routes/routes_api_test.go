package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiPage struct {
	Posts []struct {
		ID     int    `json:"id"`
		Text   string `json:"text"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
		Group *struct {
			Slug string `json:"slug"`
		} `json:"group"`
	} `json:"posts"`
	Page        int  `json:"page"`
	NumPages    int  `json:"num_pages"`
	Count       int  `json:"count"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func TestAPIPosts(t *testing.T) {
	app := setupTestApp(t)
	author := app.createUser(t, "auth")
	group := app.createGroup(t, "Тестовая группа", "test-slug")
	for i := 0; i < 12; i++ {
		app.createPost(t, author, group, fmt.Sprintf("post %d", i))
	}

	t.Run("index under /api", func(t *testing.T) {
		w := app.guest().get("/api/posts/?page=2")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var page apiPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 2, page.NumPages)
		assert.Equal(t, 12, page.Count)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrevious)
		require.Len(t, page.Posts, 2)
		assert.Equal(t, "post 1", page.Posts[0].Text)
		assert.Equal(t, "auth", page.Posts[0].Author.Username)
		require.NotNil(t, page.Posts[0].Group)
		assert.Equal(t, "test-slug", page.Posts[0].Group.Slug)
	})

	t.Run("accept header on html route", func(t *testing.T) {
		w := app.guest().getJSON("/")
		require.Equal(t, http.StatusOK, w.Code)
		var page apiPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Len(t, page.Posts, 10)
		assert.Equal(t, "post 11", page.Posts[0].Text)
	})

	t.Run("group", func(t *testing.T) {
		w := app.guest().get("/api/group/test-slug/")
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Group struct {
				Title string `json:"title"`
			} `json:"group"`
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Тестовая группа", body.Group.Title)
		assert.Equal(t, 12, body.Count)
	})

	t.Run("profile", func(t *testing.T) {
		w := app.guest().get("/api/profile/auth/")
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Author struct {
				Username string `json:"username"`
			} `json:"author"`
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "auth", body.Author.Username)
		assert.Equal(t, 12, body.Count)
	})

	t.Run("detail", func(t *testing.T) {
		w := app.guest().get("/api/posts/1/")
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			ID         int    `json:"id"`
			Text       string `json:"text"`
			PostsCount int    `json:"posts_count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.ID)
		assert.Equal(t, "post 0", body.Text)
		assert.Equal(t, 12, body.PostsCount)
	})

	t.Run("author account fields stay private", func(t *testing.T) {
		for _, path := range []string{"/api/posts/", "/api/posts/1/", "/api/group/test-slug/", "/api/profile/auth/"} {
			body := app.guest().get(path).Body.String()
			assert.Contains(t, body, `"username":"auth"`, path)
			assert.NotContains(t, body, "auth@example.com", path)
			assert.NotContains(t, body, `"email"`, path)
			assert.NotContains(t, body, `"is_active"`, path)
			assert.NotContains(t, body, "password", path)
		}
	})

	t.Run("errors are json", func(t *testing.T) {
		for _, path := range []string{"/api/posts/999/", "/api/group/missing/", "/api/profile/nobody/"} {
			w := app.guest().get(path)
			assert.Equal(t, http.StatusNotFound, w.Code, path)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Not found", body["error"])
		}
	})
}
