package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"yatube/app/mail"
	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type outbox struct {
	mutex    sync.Mutex
	messages []*mail.Message
}

func (o *outbox) Send(msg *mail.Message) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) last() *mail.Message {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if len(o.messages) == 0 {
		return nil
	}
	return o.messages[len(o.messages)-1]
}

type testApp struct {
	router *mux.Router
	store  *repositories.Store
	outbox *outbox
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	store, err := repositories.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	box := &outbox{}
	router, err := SetupRoutes(Options{
		Store:         store,
		Mailer:        box,
		PerPage:       10,
		SessionCookie: "sessionid",
		SessionTTL:    time.Hour,
		ResetTokenTTL: time.Hour,
		BaseURL:       "http://testserver",
		HashCost:      bcrypt.MinCost,
	})
	require.NoError(t, err)
	return &testApp{router: router, store: store, outbox: box}
}

// createUser stores a user whose password is "password-1"
func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password-1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	user.BeforeCreate()
	require.NoError(t, a.store.Users().Create(user))
	return user
}

func (a *testApp) createGroup(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: "Тестовое описание"}
	require.NoError(t, a.store.Groups().Create(group))
	return group
}

func (a *testApp) createPost(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text}
	require.NoError(t, post.SetAuthor(author))
	post.SetGroup(group)
	require.NoError(t, a.store.Posts().Create(post))
	return post
}

// client issues requests against the router, carrying a session cookie
type client struct {
	app    *testApp
	cookie *http.Cookie
}

func (a *testApp) guest() *client {
	return &client{app: a}
}

// login signs user in through the login form
func (a *testApp) login(t *testing.T, user *models.User) *client {
	t.Helper()
	c := a.guest()
	w := c.post("/auth/login/", url.Values{"username": {user.Username}, "password": {"password-1"}})
	require.Equal(t, http.StatusFound, w.Code)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "sessionid" {
			c.cookie = cookie
		}
	}
	require.NotNil(t, c.cookie)
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(&http.Cookie{Name: c.cookie.Name, Value: c.cookie.Value})
	}
	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest("GET", path, nil))
}

func (c *client) getJSON(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *client) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}
