package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finpro/finpro/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id          int    `json:"id,omitempty"`
	Uid         string `json:"uid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Currency    string `json:"currency"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var user UserDTO
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if len(user.Username) == 0 {
		rest.WriteError(w, http.StatusBadRequest, "Username is required", "")
		return
	}
	if len(user.DisplayName) == 0 {
		rest.WriteError(w, http.StatusBadRequest, "Display name is required", "")
		return
	}

	createdUser, err := h.userService.CreateUser(r.Context(), dtoToUser(user))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserDataInvalid):
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
		case errors.Is(err, ErrUsernameTaken):
			rest.WriteError(w, http.StatusConflict, "Username is already taken", "")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	log.Tracef("Created user: %+v", createdUser)

	rest.WriteJSON(w, http.StatusCreated, userToDTO(createdUser))
}

// CurrentUser godoc
// @Summary Get current user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 403 {string} string "User not found"
// @Router /api/user/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrNoUser):
			http.Error(w, "user not found", http.StatusForbidden)
		case errors.Is(err, ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, userToDTO(currentUser))
}

// UpdateUser godoc
// @Summary Update current user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 200 {object} UserDTO
// @Router /api/user/current [put]
// @Security XUserId
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var user UserDTO
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	updatedUser, err := h.userService.UpdateUser(r.Context(), dtoToUser(user))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoUser):
			http.Error(w, "user not found", http.StatusForbidden)
		case errors.Is(err, ErrUserDataInvalid):
			rest.WriteError(w, http.StatusBadRequest, "Display name is required", "")
		case errors.Is(err, ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, userToDTO(updatedUser))
}

func dtoToUser(dto UserDTO) User {
	return User{
		Uid:         dto.Uid,
		Username:    dto.Username,
		DisplayName: dto.DisplayName,
		Currency:    dto.Currency,
	}
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Id:          user.Id,
		Uid:         user.Uid,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Currency:    user.Currency,
	}
}
