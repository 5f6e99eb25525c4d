// Входные модели REST-ручек /auth и их валидация.
// Ошибки валидации — вида Client (400).
package models

import (
	"net/mail"
	"strings"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
)

const (
	msgInvalidEmail     = "invalid email"
	msgPasswordRequired = "password is required"
	msgPasswordMismatch = "passwords do not match"
)

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (r *SignupRequest) Validate() error {
	email, err := normalizeEmail(r.Email)
	if err != nil {
		return err
	}
	r.Email = email

	return checkPasswords(r.Password, r.Password2)
}

type ResendEmailRequest struct {
	Email string `json:"email"`
}

func (r *ResendEmailRequest) Validate() error {
	email, err := normalizeEmail(r.Email)
	if err != nil {
		return err
	}
	r.Email = email

	return nil
}

type ConfirmSignupRequest struct {
	Token string `json:"token"`
}

func (r *ConfirmSignupRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return apierrors.Client("token is required")
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	email, err := normalizeEmail(r.Email)
	if err != nil {
		return err
	}
	r.Email = email

	if r.Password == "" {
		return apierrors.Client(msgPasswordRequired)
	}

	return nil
}

type NewTokenRequest struct {
	UserID       int64  `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

func (r *NewTokenRequest) Validate() error {
	if r.UserID <= 0 {
		return apierrors.Client("user_id is required")
	}

	if r.RefreshToken == "" {
		return apierrors.Client("refresh_token is required")
	}

	return nil
}

type LogoutRequest struct {
	UserID int64 `json:"user_id"`
}

func (r *LogoutRequest) Validate() error {
	if r.UserID <= 0 {
		return apierrors.Client("user_id is required")
	}

	return nil
}

// ResetPasswordRequest — новый пароль по токену из письма.
type ResetPasswordRequest struct {
	RegisterEmail string `json:"register_email"`
	Password      string `json:"password"`
	Password2     string `json:"password2"`
}

func (r *ResetPasswordRequest) Validate() error {
	email, err := normalizeEmail(r.RegisterEmail)
	if err != nil {
		return err
	}
	r.RegisterEmail = email

	return checkPasswords(r.Password, r.Password2)
}

// UpdatePasswordRequest — смена пароля залогиненным пользователем.
type UpdatePasswordRequest struct {
	RegisterEmail  string `json:"register_email"`
	Password       string `json:"password"`
	Password2      string `json:"password2"`
	OriginPassword string `json:"origin_password"`
}

func (r *UpdatePasswordRequest) Validate() error {
	email, err := normalizeEmail(r.RegisterEmail)
	if err != nil {
		return err
	}
	r.RegisterEmail = email

	if r.OriginPassword == "" {
		return apierrors.Client("origin_password is required")
	}

	return checkPasswords(r.Password, r.Password2)
}

// normalizeEmail принимает только голый адрес, без имени и угловых скобок.
func normalizeEmail(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apierrors.Client(msgInvalidEmail)
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return "", apierrors.Client(msgInvalidEmail)
	}

	return addr.Address, nil
}

func checkPasswords(p1, p2 string) error {
	if p1 == "" {
		return apierrors.Client(msgPasswordRequired)
	}

	if p1 != p2 {
		return apierrors.Client(msgPasswordMismatch)
	}

	return nil
}
