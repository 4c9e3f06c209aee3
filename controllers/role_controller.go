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

type rolePermissionsPayload struct {
	Permissions []string `json:"permissions"`
}

type RoleController struct {
	Perms *services.PermissionService
	Log   *zap.Logger
}

func NewRoleController(perms *services.PermissionService, log *zap.Logger) *RoleController {
	return &RoleController{Perms: perms, Log: log}
}

func (rc *RoleController) ListPermissions(c *gin.Context) {
	perms, err := rc.Perms.ListPermissions(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, rc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, perms)
}

func (rc *RoleController) ListRoles(c *gin.Context) {
	roles, err := rc.Perms.ListRoles(c.Request.Context())
	if err != nil {
		middleware.WriteError(c, rc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, roles)
}

func (rc *RoleController) GetRole(c *gin.Context) {
	getRecord(c, rc.Log, rc.Perms.GetRole)
}

func (rc *RoleController) CreateRole(c *gin.Context) {
	createRecord(c, rc.Log, rc.Perms.CreateRole)
}

// Role mutations drop the memoized principal so later checks in the same
// request see the new grants.

func (rc *RoleController) UpdateRole(c *gin.Context) {
	updateRecord(c, rc.Log, func(ctx context.Context, id uint, in services.RoleInput) (models.Role, error) {
		role, err := rc.Perms.UpdateRole(ctx, id, in)
		middleware.InvalidatePrincipal(c)
		return role, err
	})
}

func (rc *RoleController) SetPermissions(c *gin.Context) {
	updateRecord(c, rc.Log, func(ctx context.Context, id uint, in rolePermissionsPayload) (models.Role, error) {
		if in.Permissions == nil {
			return models.Role{}, services.Validation("invalid_payload", "permissions is required.")
		}
		role, err := rc.Perms.SetRolePermissions(ctx, id, in.Permissions)
		middleware.InvalidatePrincipal(c)
		return role, err
	})
}

// DeleteRole hard-deletes the role and its assignments.
func (rc *RoleController) DeleteRole(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, rc.Log, err, nil)
		return
	}
	if err := rc.Perms.DeleteRole(c.Request.Context(), id); err != nil {
		middleware.WriteError(c, rc.Log, err, nil)
		return
	}
	middleware.InvalidatePrincipal(c)
	c.Status(http.StatusNoContent)
}
