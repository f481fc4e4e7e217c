// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/taskchat-tui/internal/model"
)

var validate = validator.New()

// LoginForm is the login input.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
}

// RegisterForm is the sign-up input.
type RegisterForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// TaskForm is the create and edit task input.
type TaskForm struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=1000"`
}

// FieldError is one failed field with a message fit for display.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// FormErrors lists every failed field.
type FormErrors []FieldError

func (e FormErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// For returns the message for field, or "".
func (e FormErrors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Validate trims the email and checks the form.
func (f *LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return check(f)
}

// Validate trims the email and checks the form.
func (f *RegisterForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return check(f)
}

// Validate sanitizes both fields and checks the form.
func (f *TaskForm) Validate() error {
	f.Title = model.SanitizeTitle(f.Title)
	f.Description = model.SanitizeDescription(f.Description)
	return check(f)
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FormErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: friendly(fe)})
	}
	return out
}

// friendly renders a validator error the way the web forms worded them.
func friendly(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
