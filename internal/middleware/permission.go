package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/policy"
)

// RequirePermission rejects the request with 403 unless the current user's
// role is allowed to perform action. It must run after RequireAuth.
func RequirePermission(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		if !policy.Allowed(action, user.Role) {
			apierrors.Forbidden(c, "You do not have permission to perform this action")
			return
		}

		c.Next()
	}
}
