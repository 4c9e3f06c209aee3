package middleware

import (
	"errors"

	"myhotel/rbac"
	"myhotel/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireAccess lets the request through only if the caller passes guard.
func RequireAccess(guard rbac.Guard, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := CurrentPrincipal(c)
		if err != nil {
			WriteError(c, log, err, nil)
			return
		}
		if err := guard.Check(p); err != nil {
			WriteError(c, log, deniedError(err), nil)
			return
		}
		c.Next()
	}
}

func RequireSuperuser(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := CurrentPrincipal(c)
		if err != nil {
			WriteError(c, log, err, nil)
			return
		}
		if !p.Superuser {
			WriteError(c, log, services.Forbidden("superuser_required", "Only a superuser can do this."), nil)
			return
		}
		c.Next()
	}
}

func deniedError(err error) error {
	var denied *rbac.DeniedError
	if !errors.As(err, &denied) {
		return services.Internal(err)
	}
	if denied.Requirement == rbac.RequirementSection {
		return services.Forbidden("section_denied", "You do not have access to this section.")
	}
	return services.Forbidden("permission_denied", "You do not have permission to perform this action.")
}
