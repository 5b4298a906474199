package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"yatube/app/forms"
	"yatube/app/mail"
	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, authentication and password management
type UserService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.ResetTokenRepository
	mailer    mail.Mailer
	logger    *zap.Logger
	tokenTTL  time.Duration
	hashCost  int
}

// UserOption configures a UserService
type UserOption func(*UserService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) UserOption {
	return func(s *UserService) {
		s.hashCost = cost
	}
}

// WithResetTokenTTL sets how long password reset links stay valid.
func WithResetTokenTTL(ttl time.Duration) UserOption {
	return func(s *UserService) {
		s.tokenTTL = ttl
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) UserOption {
	return func(s *UserService) {
		s.logger = logger
	}
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, tokenRepo repositories.ResetTokenRepository, mailer mail.Mailer, opts ...UserOption) *UserService {
	s := &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		logger:    zap.NewNop(),
		tokenTTL:  72 * time.Hour,
		hashCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp validates the form and registers a new active user
func (s *UserService) SignUp(form *forms.SignUpForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.UsernameTaken(form.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		form.Errors.Add("username", "A user with that username already exists.")
	}
	if form.Email != "" {
		if _, err := s.userRepo.GetByEmail(form.Email); err == nil {
			form.Errors.Add("email", "A user with that email already exists.")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	if len(form.Errors) > 0 {
		return nil, &forms.ValidationError{Errors: form.Errors}
	}

	hash, err := s.hash(form.Password1)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: hash,
	}
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			form.Errors.Add("username", "A user with that username already exists.")
			return nil, &forms.ValidationError{Errors: form.Errors}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks the login form credentials
func (s *UserService) Authenticate(form *forms.LoginForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUsername(form.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !checkPassword(user.PasswordHash, form.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the password of user after checking the old one
func (s *UserService) ChangePassword(user *models.User, form *forms.PasswordChangeForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, form.OldPassword) {
		form.Errors.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
		return &forms.ValidationError{Errors: form.Errors}
	}
	if err := s.setPassword(user, form.NewPassword1); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.Int("user_id", user.ID))
	return nil
}

// RequestPasswordReset mails a reset link to the active user owning the
// submitted address. Unknown addresses succeed silently.
func (s *UserService) RequestPasswordReset(form *forms.PasswordResetForm, linkFor func(token string) string) error {
	if err := form.Validate(); err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(form.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	token := &models.ResetToken{
		Token:         uuid.NewString(),
		UserID:        user.ID,
		PasswordStamp: passwordStamp(user.PasswordHash),
		CreatedAt:     time.Now(),
	}
	if err := s.tokenRepo.Create(token, s.tokenTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "You're receiving this email because you requested a password reset for your user account.\n\n")
	fmt.Fprintf(&body, "Please go to the following page and choose a new password:\n\n%s\n\n", linkFor(token.Token))
	fmt.Fprintf(&body, "Your username, in case you've forgotten: %s\n", user.Username)
	msg := &mail.Message{
		To:      []string{user.Email},
		Subject: "Password reset",
		Body:    body.String(),
	}
	if err := s.mailer.Send(msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	s.logger.Info("password reset requested", zap.Int("user_id", user.ID))
	return nil
}

// ValidateResetToken reports the user a reset token belongs to. A token
// issued before the user's password last changed is invalid.
func (s *UserService) ValidateResetToken(token string) (*models.User, error) {
	stored, err := s.tokenRepo.Get(token)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return s.tokenUser(stored)
}

// ResetPassword sets a new password from a reset link and returns its
// user. The token can be used once.
func (s *UserService) ResetPassword(token string, form *forms.SetPasswordForm) (*models.User, error) {
	if _, err := s.ValidateResetToken(token); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	stored, err := s.tokenRepo.Consume(token)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	user, err := s.tokenUser(stored)
	if err != nil {
		return nil, err
	}
	if err := s.setPassword(user, form.NewPassword1); err != nil {
		return nil, err
	}
	s.logger.Info("password reset", zap.Int("user_id", user.ID))
	return user, nil
}

func (s *UserService) tokenUser(token *models.ResetToken) (*models.User, error) {
	user, err := s.userRepo.GetByID(token.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if token.PasswordStamp != passwordStamp(user.PasswordHash) {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *UserService) setPassword(user *models.User, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// passwordStamp fingerprints a password hash without exposing it.
func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:16])
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
