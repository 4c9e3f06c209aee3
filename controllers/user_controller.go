package controllers

import (
	"context"
	"net/http"

	"myhotel/middleware"
	"myhotel/models"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type assignRolePayload struct {
	RoleID uint `json:"role_id"`
}

type UserController struct {
	Users *services.UserService
	Perms *services.PermissionService
	Log   *zap.Logger
}

func NewUserController(users *services.UserService, perms *services.PermissionService, log *zap.Logger) *UserController {
	return &UserController{Users: users, Perms: perms, Log: log}
}

func (uc *UserController) List(c *gin.Context) {
	listRecords(c, uc.Log, uc.Users.List)
}

func (uc *UserController) Get(c *gin.Context) {
	mode, err := queryMode(c)
	if err != nil {
		middleware.WriteError(c, uc.Log, err, nil)
		return
	}
	getRecord(c, uc.Log, func(ctx context.Context, id uint) (models.User, error) {
		return uc.Users.Get(ctx, id, mode)
	})
}

func (uc *UserController) Create(c *gin.Context) {
	createRecord(c, uc.Log, func(ctx context.Context, in services.UserInput) (models.User, error) {
		caller, err := middleware.CurrentPrincipal(c)
		if err != nil {
			return models.User{}, err
		}
		return uc.Users.Create(ctx, caller, in)
	})
}

func (uc *UserController) Update(c *gin.Context) {
	updateRecord(c, uc.Log, func(ctx context.Context, id uint, in services.UserInput) (models.User, error) {
		caller, err := middleware.CurrentPrincipal(c)
		if err != nil {
			return models.User{}, err
		}
		user, err := uc.Users.Update(ctx, caller, id, in)
		middleware.InvalidatePrincipal(c)
		return user, err
	})
}

func (uc *UserController) Delete(c *gin.Context) {
	softDelete(c, uc.Log, func(ctx context.Context, id uint, _ *uint) error {
		caller, err := middleware.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		return uc.Users.Delete(ctx, caller, id)
	})
}

func (uc *UserController) Restore(c *gin.Context) {
	restore(c, uc.Log, uc.Users.Restore)
}

func (uc *UserController) Roles(c *gin.Context) {
	getRecord(c, uc.Log, uc.Perms.UserRoles)
}

func (uc *UserController) AssignRole(c *gin.Context) {
	userID, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, uc.Log, err, nil)
		return
	}
	var in assignRolePayload
	if err := bindJSON(c, &in); err != nil {
		middleware.WriteError(c, uc.Log, err, nil)
		return
	}
	if in.RoleID == 0 {
		middleware.WriteError(c, uc.Log, services.Validation("invalid_payload", "role_id is required."), in)
		return
	}
	assignment, err := uc.Perms.AssignRole(c.Request.Context(), userID, in.RoleID, middleware.ActorID(c))
	if err != nil {
		middleware.WriteError(c, uc.Log, err, in)
		return
	}
	middleware.InvalidatePrincipal(c)
	utils.JSONSuccess(c, http.StatusCreated, assignment)
}

func (uc *UserController) RemoveRole(c *gin.Context) {
	userID, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, uc.Log, err, nil)
		return
	}
	roleID, err := parseID(c, "role_id")
	if err != nil {
		middleware.WriteError(c, uc.Log, err, nil)
		return
	}
	if err := uc.Perms.RemoveRole(c.Request.Context(), userID, roleID); err != nil {
		middleware.WriteError(c, uc.Log, err, nil)
		return
	}
	middleware.InvalidatePrincipal(c)
	c.Status(http.StatusNoContent)
}
