package handlers

import (
	"net/http"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/models"
)

type UserHandler struct {
	userRepo *repos.UserRepo
}

func NewUserHandler(repo *repos.UserRepo) *UserHandler {
	return &UserHandler{
		userRepo: repo,
	}
}

// InitializeUser upserts the authenticated user so that later writes can
// reference it. Safe to call on every login.
func (h UserHandler) InitializeUser(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	id, err := h.userRepo.UpsertUser(user)
	if err != nil {
		return InternalError(err, "initialize user: ")
	}

	return Ok(models.UserModel{
		ID:          id,
		Name:        user.Name,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Avatar:      user.Avatar,
	})
}
