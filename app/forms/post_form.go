package forms

import (
	"net/url"
	"strconv"
	"strings"

	"yatube/app/models"
)

// PostForm is the create/edit form for a post.
type PostForm struct {
	Text   string `form:"text" validate:"required,notblank"`
	Group  string `form:"group" validate:"omitempty,number"`
	Errors Errors `form:"-" validate:"-"`
}

// NewPostForm binds submitted values.
func NewPostForm(values url.Values) *PostForm {
	return &PostForm{
		Text:   values.Get("text"),
		Group:  strings.TrimSpace(values.Get("group")),
		Errors: Errors{},
	}
}

// PostFormFrom pre-fills the form from an existing post.
func PostFormFrom(post *models.Post) *PostForm {
	form := &PostForm{Text: post.Text, Errors: Errors{}}
	if post.GroupID > 0 {
		form.Group = strconv.Itoa(post.GroupID)
	}
	return form
}

// Validate checks the fields and returns a *ValidationError when invalid.
func (f *PostForm) Validate() error {
	f.Errors = check(f)
	return result(f.Errors)
}

// GroupID is the selected group, or 0 for none or a malformed choice.
func (f *PostForm) GroupID() int {
	id, err := strconv.Atoi(f.Group)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// HasGroup reports whether a group was submitted at all.
func (f *PostForm) HasGroup() bool {
	return f.Group != ""
}

// InvalidGroup marks the selected group as not one of the choices.
func (f *PostForm) InvalidGroup() error {
	f.Errors.Add("group", "Select a valid choice. That choice is not one of the available choices.")
	return result(f.Errors)
}
