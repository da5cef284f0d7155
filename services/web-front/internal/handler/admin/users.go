package handler

import (
	"errors"
	"strings"

	"github.com/baronblk/guestbook-project/pkg/util"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
)

type UserRequest struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Role     string `form:"role"`
}

type PasswordRequest struct {
	OldPassword     string `form:"old_password"`
	NewPassword     string `form:"new_password"`
	ConfirmPassword string `form:"confirm_password"`
}

func userID(c *gin.Context) (int, bool) {
	id, ok := util.GetIntParam(c, "id")
	if !ok {
		view.Notify(c, workspace.FlashError, "Unknown user.")
		view.Redirect(c, view.AdminReturn(c))
	}
	return id, ok
}

// userDone reports a user action. Validation messages are shown as they are.
func (h *adminHandler) userDone(c *gin.Context, err error, success string) {
	ws := view.Workspace(c)
	ws.Users.ClearError()
	if domain.IsValidationError(err) || errors.Is(err, domain.ErrInvalidRole) {
		view.Notify(c, workspace.FlashError, err.Error())
		view.Redirect(c, view.AdminReturn(c))
		return
	}
	h.done(c, err, success)
}

func (h *adminHandler) CreateUser(c *gin.Context) {
	ws := view.Workspace(c)
	var req UserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debugf("bind user form: %v", err)
	}
	err := ws.Users.Create(c.Request.Context(), domain.AdminUserCreate{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	h.userDone(c, err, "Admin user "+strings.TrimSpace(req.Username)+" created.")
}

// UpdateUser changes the fields that were filled in.
func (h *adminHandler) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	var req UserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debugf("bind user form: %v", err)
	}
	var in domain.AdminUserUpdate
	if v := strings.TrimSpace(req.Username); v != "" {
		in.Username = &v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		in.Email = &v
	}
	if req.Role != "" {
		r := domain.Role(req.Role)
		in.Role = &r
	}
	err := ws.Users.Update(c.Request.Context(), id, in)
	h.userDone(c, err, "Admin user updated.")
}

func (h *adminHandler) ActivateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	h.userDone(c, ws.Users.Activate(c.Request.Context(), id), "Admin user activated.")
}

func (h *adminHandler) DeactivateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	h.userDone(c, ws.Users.Deactivate(c.Request.Context(), id), "Admin user deactivated.")
}

func (h *adminHandler) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	h.userDone(c, ws.Users.Delete(c.Request.Context(), id), "Admin user deleted.")
}

// ChangePassword changes the password of the logged-in admin.
func (h *adminHandler) ChangePassword(c *gin.Context) {
	ws := view.Workspace(c)
	var req PasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debugf("bind password form: %v", err)
	}
	if req.NewPassword != req.ConfirmPassword {
		view.Notify(c, workspace.FlashError, "The new passwords do not match.")
		view.Redirect(c, view.AdminReturn(c))
		return
	}
	err := ws.Users.ChangePassword(c.Request.Context(), domain.PasswordChange{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	h.userDone(c, err, "Password changed.")
}
