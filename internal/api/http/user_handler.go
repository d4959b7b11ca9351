package http

import (
	"encoding/json"
	"net/http"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/service"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.GetProfile(r.Context(), actorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, user)
}

type createUserRequest struct {
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Password       string      `json:"password"`
	FullName       string      `json:"full_name"`
	Role           domain.Role `json:"role"`
	MembershipType string      `json:"membership_type"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user := &domain.User{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           req.Role,
		MembershipType: req.MembershipType,
	}
	if err := h.userSvc.CreateUser(r.Context(), actorID(r), user, req.Password); err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, user)
}

type updateProfileRequest struct {
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	MembershipType string `json:"membership_type"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.userSvc.UpdateProfile(r.Context(), actorID(r), id, req.Email, req.FullName, req.MembershipType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, user)
}

func (h *UserHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.userSvc.Suspend(r.Context(), actorID(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondStatus(w, http.StatusOK, "account suspended")
}

func (h *UserHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.userSvc.Reactivate(r.Context(), actorID(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondStatus(w, http.StatusOK, "account reactivated")
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.userSvc.Delete(r.Context(), actorID(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondStatus(w, http.StatusOK, "account deleted")
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	page := queryInt(r, "page", "1")
	pageSize := queryInt(r, "page_size", "20")

	users, total, err := h.userSvc.List(r.Context(), actorID(r), role, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, users, total, page, pageSize)
}
