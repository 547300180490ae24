package tenant

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

// maxSelectorLength bounds ids and slugs accepted from the request
const maxSelectorLength = 100

// SelectorMiddleware reads the tenant selector from the :tenantID path
// segment or the X-Tenant-ID header. When both are present they must agree.
func SelectorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		fromPath := strings.TrimSpace(c.Param(PathParam))
		fromHeader := strings.TrimSpace(c.GetHeader(HeaderName))

		selector := fromPath
		if selector == "" {
			selector = fromHeader
		}
		if fromPath != "" && fromHeader != "" && fromPath != fromHeader {
			reject(c, apperror.TenantMismatch())
			return
		}
		if len(selector) > maxSelectorLength {
			reject(c, apperror.Validation(map[string]string{"tenant": "selector is too long"}))
			return
		}

		c.Set(string(selectorKey), selector)
		c.Request = c.Request.WithContext(SetSelectorContext(c.Request.Context(), selector))
		c.Next()
	}
}

func reject(c *gin.Context, err *apperror.Error) {
	c.AbortWithStatusJSON(err.HTTPStatus(), err)
}

// Selector returns the selector stored by SelectorMiddleware, or ""
func Selector(c *gin.Context) string {
	return c.GetString(string(selectorKey))
}
