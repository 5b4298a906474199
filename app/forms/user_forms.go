package forms

import (
	"net/url"
	"strings"
	"unicode"
)

// SignUpForm registers a new user.
type SignUpForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
	Errors    Errors `form:"-" validate:"-"`
}

func NewSignUpForm(values url.Values) *SignUpForm {
	return &SignUpForm{
		FirstName: strings.TrimSpace(values.Get("first_name")),
		LastName:  strings.TrimSpace(values.Get("last_name")),
		Username:  strings.TrimSpace(values.Get("username")),
		Email:     strings.TrimSpace(values.Get("email")),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
		Errors:    Errors{},
	}
}

func (f *SignUpForm) Validate() error {
	f.Errors = check(f)
	checkPasswordStrength(f.Errors, "password2", f.Password2)
	return result(f.Errors)
}

// LoginForm authenticates an existing user.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Errors   Errors `form:"-" validate:"-"`
}

func NewLoginForm(values url.Values) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
		Errors:   Errors{},
	}
}

func (f *LoginForm) Validate() error {
	f.Errors = check(f)
	return result(f.Errors)
}

// PasswordChangeForm changes the password of a logged-in user.
type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
	Errors       Errors `form:"-" validate:"-"`
}

func NewPasswordChangeForm(values url.Values) *PasswordChangeForm {
	return &PasswordChangeForm{
		OldPassword:  values.Get("old_password"),
		NewPassword1: values.Get("new_password1"),
		NewPassword2: values.Get("new_password2"),
		Errors:       Errors{},
	}
}

func (f *PasswordChangeForm) Validate() error {
	f.Errors = check(f)
	checkPasswordStrength(f.Errors, "new_password2", f.NewPassword2)
	return result(f.Errors)
}

// PasswordResetForm requests a reset link by e-mail.
type PasswordResetForm struct {
	Email  string `form:"email" validate:"required,email,max=254"`
	Errors Errors `form:"-" validate:"-"`
}

func NewPasswordResetForm(values url.Values) *PasswordResetForm {
	return &PasswordResetForm{
		Email:  strings.TrimSpace(values.Get("email")),
		Errors: Errors{},
	}
}

func (f *PasswordResetForm) Validate() error {
	f.Errors = check(f)
	return result(f.Errors)
}

// SetPasswordForm sets a new password from a reset link.
type SetPasswordForm struct {
	NewPassword1 string `form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
	Errors       Errors `form:"-" validate:"-"`
}

func NewSetPasswordForm(values url.Values) *SetPasswordForm {
	return &SetPasswordForm{
		NewPassword1: values.Get("new_password1"),
		NewPassword2: values.Get("new_password2"),
		Errors:       Errors{},
	}
}

func (f *SetPasswordForm) Validate() error {
	f.Errors = check(f)
	checkPasswordStrength(f.Errors, "new_password2", f.NewPassword2)
	return result(f.Errors)
}

// checkPasswordStrength rejects entirely numeric passwords.
func checkPasswordStrength(errs Errors, field, password string) {
	if password == "" || errs.Has(field) {
		return
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return
		}
	}
	errs.Add(field, "This password is entirely numeric.")
}
