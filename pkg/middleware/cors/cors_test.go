package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.POST("/substitutions/:day/generate", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func request(r http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/substitutions/Monday/generate", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAllowAnyOrigin(t *testing.T) {
	rec := request(newRouter(nil), http.MethodOptions, "http://staffroom.test")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestExplicitOrigins(t *testing.T) {
	r := newRouter([]string{"http://Staffroom.test/"})

	rec := request(r, http.MethodPost, "http://staffroom.test")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://staffroom.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = request(r, http.MethodOptions, "http://elsewhere.test")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(r, http.MethodPost, "http://elsewhere.test")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
