package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/linkatalog/linkatalog/internal/auth"
	"github.com/linkatalog/linkatalog/internal/constants"
	appvalidation "github.com/linkatalog/linkatalog/internal/infrastructure/validation"
	"github.com/linkatalog/linkatalog/internal/infrastructure/logger"
	"github.com/linkatalog/linkatalog/pkg/httputils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,notblank,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrValidation.WithMessage("email and password are required"))
		return
	}

	token, expiresAt, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httputils.WriteAPIError(w, r, constants.ErrInvalidCredentials)
			return
		}
		logger.Error("login failed", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLogin, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
