package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/customeros/mailsift/internal/utils"
)

// CustomContextMiddleware records the app source and, for user routes, the
// user id on the request context.
func CustomContextMiddleware(appSource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.SetAppSourceInContext(c.Request.Context(), appSource)
		if userId := c.Param("userId"); userId != "" {
			ctx = utils.SetUserIdInContext(ctx, userId)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
