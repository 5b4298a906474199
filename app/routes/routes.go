// Package routes wires repositories, services and controllers into the
// application router.
package routes

import (
	"net/http"
	"time"

	"yatube/app/config"
	"yatube/app/controllers"
	"yatube/app/mail"
	"yatube/app/middleware"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Options holds everything the router needs.
type Options struct {
	Store         *repositories.Store
	Mailer        mail.Mailer
	Logger        *zap.Logger
	PerPage       int
	SessionCookie string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	SecureCookie  bool
	BaseURL       string
	HashCost      int
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, store *repositories.Store, mailer mail.Mailer, logger *zap.Logger) Options {
	return Options{
		Store:         store,
		Mailer:        mailer,
		Logger:        logger,
		PerPage:       cfg.Posts.PerPage,
		SessionCookie: cfg.Auth.SessionCookie,
		SessionTTL:    cfg.GetSessionTTL(),
		ResetTokenTTL: cfg.GetResetTokenTTL(),
		SecureCookie:  cfg.Auth.SecureCookie,
		BaseURL:       cfg.Server.BaseURL,
		HashCost:      bcrypt.DefaultCost,
	}
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) (*mux.Router, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = "sessionid"
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}

	router := mux.NewRouter().StrictSlash(true)
	renderer, err := views.New(router)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	postService := services.NewPostService(store.Posts(), store.Groups(), store.Users(), opts.PerPage)
	groupService := services.NewGroupService(store.Groups())
	sessionService := services.NewSessionService(store.Sessions(), store.Users(), opts.SessionTTL)
	userService := services.NewUserService(store.Users(), store.ResetTokens(), opts.Mailer,
		services.WithHashCost(opts.HashCost),
		services.WithResetTokenTTL(opts.ResetTokenTTL),
		services.WithLogger(logger),
	)

	postController := controllers.NewPostController(postService, groupService, router, renderer, logger)
	userController := controllers.NewUserController(userService, sessionService,
		controllers.CookieConfig{Name: opts.SessionCookie, Secure: opts.SecureCookie},
		opts.BaseURL, router, renderer, logger)
	aboutController := controllers.NewAboutController(router, renderer, logger)

	requestLogger := middleware.Logger(logger)
	recoverer := middleware.Recoverer(logger)
	session := middleware.Session(sessionService, opts.SessionCookie, logger)

	// Apply global middleware
	router.Use(requestLogger)
	router.Use(recoverer)
	router.Use(session)
	router.NotFoundHandler = requestLogger(recoverer(session(http.HandlerFunc(postController.NotFound))))

	// Serve static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", views.Static()))

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/posts/", postController.Index).Methods("GET").Name("api:posts")
	api.HandleFunc("/posts/{post_id:[0-9]+}/", postController.Detail).Methods("GET").Name("api:post_detail")
	api.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET").Name("api:group_list")
	api.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET").Name("api:profile")

	// Posts
	router.HandleFunc("/", postController.Index).Methods("GET").Name("posts:index")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET").Name("posts:group_list")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET").Name("posts:profile")
	router.HandleFunc("/posts/{post_id:[0-9]+}/", postController.Detail).Methods("GET").Name("posts:post_detail")
	router.HandleFunc("/create/", middleware.RequireLogin(postController.Create)).Methods("GET", "POST").Name("posts:post_create")
	router.HandleFunc("/posts/{post_id:[0-9]+}/edit/", middleware.RequireLogin(postController.Edit)).Methods("GET", "POST").Name("posts:post_edit")

	// Users
	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup/", userController.SignUp).Methods("GET", "POST").Name("users:signup")
	auth.HandleFunc("/login/", userController.Login).Methods("GET", "POST").Name("users:login")
	auth.HandleFunc("/logout/", userController.Logout).Methods("GET", "POST").Name("users:logout")
	auth.HandleFunc("/password_change/", middleware.RequireLogin(userController.PasswordChange)).Methods("GET", "POST").Name("users:password_change")
	auth.HandleFunc("/password_change/done/", middleware.RequireLogin(userController.PasswordChangeDone)).Methods("GET").Name("users:password_change_done")
	auth.HandleFunc("/password_reset/", userController.PasswordReset).Methods("GET", "POST").Name("users:password_reset")
	auth.HandleFunc("/password_reset/done/", userController.PasswordResetDone).Methods("GET").Name("users:password_reset_done")
	auth.HandleFunc("/reset/done/", userController.PasswordResetComplete).Methods("GET").Name("users:password_reset_complete")
	auth.HandleFunc("/reset/{token}/", userController.PasswordResetConfirm).Methods("GET", "POST").Name("users:password_reset_confirm")

	// About
	router.HandleFunc("/about/author/", aboutController.Author).Methods("GET").Name("about:author")
	router.HandleFunc("/about/tech/", aboutController.Tech).Methods("GET").Name("about:tech")

	return router, nil
}
