package handlers

import (
	"net/http"

	"travel-blog-server/models"
	"travel-blog-server/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerResponse struct {
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

type loginResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    models.UserSummary `json:"user"`
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := decodeJSON(w, r, &input); err != nil {
		fail(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    user.Summary(),
	})
}

func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		fail(w, r, err)
		return
	}

	res, err := h.authService.Login(r.Context(), input)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}
