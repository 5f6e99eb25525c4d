package handlers

import (
	"net/http"
	"strconv"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/http/middleware"
	"github.com/pribylovaa/career-bff/internal/models"
)

const (
	msgEmailSent     = "email_sent"
	msgEmailResent   = "Verification email has been resent successfully."
	msgConfirmed     = "Confirming successful signup."
	msgUpdateSuccess = "update success"
	msgResetSent     = "send_email_success"
	msgResetSuccess  = "reset success"
)

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in models.SignupRequest
	if !bind(w, r, &in) {
		return
	}

	host, err := h.authHost()
	if err != nil {
		fail(w, r, err)
		return
	}

	out, err := h.Auth.Signup(r.Context(), host, in.Email, in.Password)
	if err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, msgEmailSent, out)
}

func (h *Handlers) SignupEmailResend(w http.ResponseWriter, r *http.Request) {
	var in models.ResendEmailRequest
	if !bind(w, r, &in) {
		return
	}

	host, err := h.authHost()
	if err != nil {
		fail(w, r, err)
		return
	}

	out, err := h.Auth.SignupEmailResend(r.Context(), host, in.Email)
	if err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, msgEmailResent, out)
}

func (h *Handlers) ConfirmSignup(w http.ResponseWriter, r *http.Request) {
	var in models.ConfirmSignupRequest
	if !bind(w, r, &in) {
		return
	}

	host, err := h.authHost()
	if err != nil {
		fail(w, r, err)
		return
	}

	sess, err := h.Auth.ConfirmSignup(r.Context(), host, h.Hosts.Current(), in.Token)
	if err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, msgConfirmed, models.AuthResult{Auth: sess})
}

// Login идёт в auth/user-апстримы региона, где зарегистрирован email.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if !bind(w, r, &in) {
		return
	}

	reg := h.Auth.RegistrationRegion(r.Context(), in.Email)

	authHost, err := h.Hosts.Auth(reg)
	if err != nil {
		fail(w, r, err)
		return
	}

	userHost, err := h.Hosts.User(reg)
	if err != nil {
		fail(w, r, err)
		return
	}

	out, err := h.Auth.Login(r.Context(), authHost, userHost, in.Email, in.Password)
	if err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, "", out)
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var in models.NewTokenRequest
	if !bind(w, r, &in) {
		return
	}

	out, err := h.Auth.GetNewTokenPair(r.Context(), strconv.FormatInt(in.UserID, 10), in.RefreshToken)
	if err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, "", out)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var in models.LogoutRequest
	if !bind(w, r, &in) {
		return
	}

	msg, err := h.Auth.Logout(r.Context(), strconv.FormatInt(in.UserID, 10))
	if err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, msg, nil)
}

// UpdatePassword — защищённая ручка: RequireSubject уже сверил токен с {user_id}.
// Сессия ищется по user_id из claims, он в канонической записи ("7", а не "007").
func (h *Handlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		fail(w, r, apierrors.Unauthorized("Authorization failed"))
		return
	}
	userID := claims.UserID

	var in models.UpdatePasswordRequest
	if !bind(w, r, &in) {
		return
	}

	host, err := h.authHost()
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := h.Auth.UpdatePassword(r.Context(), host, userID, in); err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, msgUpdateSuccess, nil)
}

func (h *Handlers) SendResetConfirmEmail(w http.ResponseWriter, r *http.Request) {
	in := models.ResendEmailRequest{Email: r.URL.Query().Get("email")}
	if err := in.Validate(); err != nil {
		fail(w, r, err)
		return
	}

	host, err := h.authHost()
	if err != nil {
		fail(w, r, err)
		return
	}

	out, err := h.Auth.SendResetConfirmEmail(r.Context(), host, in.Email)
	if err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, msgResetSent, out)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	verifyToken := r.URL.Query().Get("verify_token")
	if verifyToken == "" {
		fail(w, r, apierrors.Client("verify_token is required"))
		return
	}

	var in models.ResetPasswordRequest
	if !bind(w, r, &in) {
		return
	}

	host, err := h.authHost()
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := h.Auth.ResetPassword(r.Context(), host, verifyToken, in); err != nil {
		fail(w, r, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, msgResetSuccess, nil)
}
