package tenant

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSelectorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SelectorMiddleware())
	echo := func(c *gin.Context) {
		c.String(http.StatusOK, Selector(c)+"|"+SelectorFromContext(c.Request.Context()))
	}
	router.GET("/orders", echo)
	router.GET("/tenants/:"+PathParam+"/orders", echo)

	tests := []struct {
		name   string
		path   string
		header string
		code   int
		body   string
	}{
		{"none", "/orders", "", http.StatusOK, "|"},
		{"header", "/orders", "lima", http.StatusOK, "lima|lima"},
		{"path", "/tenants/lima/orders", "", http.StatusOK, "lima|lima"},
		{"path and header agree", "/tenants/lima/orders", "lima", http.StatusOK, "lima|lima"},
		{"path and header disagree", "/tenants/lima/orders", "cusco", http.StatusForbidden, "TENANT_MISMATCH"},
		{"too long", "/orders", strings.Repeat("x", 101), http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}
