package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"task-manager-api/internal/middleware"
	"task-manager-api/internal/model"
	"task-manager-api/internal/service"
	"task-manager-api/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
	users   *service.UserService
}

func NewAuthHandler(service *service.AuthService, users *service.UserService) *AuthHandler {
	return &AuthHandler{service: service, users: users}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.Identifier = strings.TrimSpace(payload.Identifier)
	if payload.Identifier == "" {
		writeError(w, apierror.New("BAD_REQUEST", "identifier is required", "identifier", http.StatusBadRequest))
		return
	}

	result, err := h.service.Login(r.Context(), payload.Identifier, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	user, err := h.users.Get(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}
