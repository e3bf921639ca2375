package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpprogramming22/weekendinthecity/internal/logger"
)

func clientIPRouter(t *testing.T, proxies []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, TrustProxies(r, proxies))
	r.GET("/ip", func(c *gin.Context) {
		c.String(http.StatusOK, c.ClientIP())
	})
	return r
}

func TestTrustProxies(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		headers map[string]string
		remote  string
		want    string
	}{
		{"no proxies ignores forwarded", nil, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "198.51.100.7:5000", "198.51.100.7"},
		{"no proxies ignores real ip", nil, map[string]string{"X-Real-IP": "203.0.113.9"}, "198.51.100.7:5000", "198.51.100.7"},
		{"untrusted peer ignored", []string{"10.0.0.0/8"}, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "198.51.100.7:5000", "198.51.100.7"},
		{"trusted proxy forwarded", []string{"10.0.0.0/8"}, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "10.0.0.2:5000", "203.0.113.9"},
		{"trusted proxy chain", []string{"10.0.0.0/8"}, map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.9"},
		{"trusted proxy real ip", []string{"10.0.0.2"}, map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5000", "198.51.100.4"},
		{"connection address", nil, nil, "192.0.2.1:41000", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := clientIPRouter(t, tt.proxies)
			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestTrustProxiesRejectsBadCIDR(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assert.Error(t, TrustProxies(gin.New(), []string{"not-an-ip"}))
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) {
		id, _ := logger.RequestIDFromContext(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.POST("/checkout", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/checkout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Stripe-Signature")
}

func TestRecoveryReturnsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
