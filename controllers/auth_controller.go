package controllers

import (
	"net/http"

	"myhotel/middleware"
	"myhotel/rbac"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	Auth  *services.AuthService
	Users *services.UserService
	Log   *zap.Logger
}

func NewAuthController(auth *services.AuthService, users *services.UserService, log *zap.Logger) *AuthController {
	return &AuthController{Auth: auth, Users: users, Log: log}
}

func (ac *AuthController) Login(c *gin.Context) {
	var in loginPayload
	if err := bindJSON(c, &in); err != nil {
		middleware.WriteError(c, ac.Log, err, nil)
		return
	}
	res, err := ac.Auth.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		middleware.WriteError(c, ac.Log, err, gin.H{"username": in.Username})
		return
	}
	ac.Log.Info("user logged in", zap.Uint("user_id", res.User.ID))
	utils.JSONSuccess(c, http.StatusOK, res)
}

// Logout revokes the bearer token. Unknown tokens are not an error.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.Auth.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		middleware.WriteError(c, ac.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me describes the caller and what the admin UI may show them.
func (ac *AuthController) Me(c *gin.Context) {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		middleware.WriteError(c, ac.Log, err, nil)
		return
	}
	user, err := ac.Users.Get(c.Request.Context(), p.UserID, services.QueryDefault)
	if err != nil {
		middleware.WriteError(c, ac.Log, err, nil)
		return
	}
	roles := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		if r.Active {
			roles = append(roles, r.Name)
		}
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"user":        user,
		"roles":       roles,
		"sections":    rbac.AccessibleSections(p),
		"permissions": rbac.AllPermissionCodenames(p),
	})
}
