package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"travel-blog-server/models"
	"travel-blog-server/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type profileResponse struct {
	Message string          `json:"message"`
	User    *models.Profile `json:"user"`
}

type followResponse struct {
	Message      string                `json:"message"`
	CurrentUser  services.EdgeSummary  `json:"currentUser"`
	FollowedUser *services.EdgeSummary `json:"followedUser,omitempty"`
	Unfollowed   *services.EdgeSummary `json:"unfollowedUser,omitempty"`
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathObjectID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	profile, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

func (h *UserHandler) GetProfileByUsername(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetProfileByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var update models.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		fail(w, r, err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), caller, update)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse{Message: "Profile updated successfully", User: profile})
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	target, err := pathObjectID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}

	res, err := h.userService.Follow(r.Context(), caller, target)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, followResponse{
		Message:      "User followed successfully",
		CurrentUser:  res.Current,
		FollowedUser: &res.Target,
	})
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	target, err := pathObjectID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}

	res, err := h.userService.Unfollow(r.Context(), caller, target)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, followResponse{
		Message:     "User unfollowed successfully",
		CurrentUser: res.Current,
		Unfollowed:  &res.Target,
	})
}
