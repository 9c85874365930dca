package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookiesOf(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range (&http.Response{Header: w.Header()}).Cookies() {
		out[c.Name] = c
	}
	return out
}

func Test_CookieManager_SetPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m := NewCookieManager("example.com", true)

	m.SetPair(c, "acc", time.Now().Add(time.Hour), "ref", time.Now().Add(24*time.Hour))

	got := cookiesOf(w)
	require.Contains(t, got, AccessCookie)
	require.Contains(t, got, RefreshCookie)
	assert.Equal(t, "acc", got[AccessCookie].Value)
	assert.True(t, got[AccessCookie].HttpOnly)
	assert.True(t, got[AccessCookie].Secure)
	assert.Equal(t, "/api/auth", got[RefreshCookie].Path)
	assert.InDelta(t, 24*3600, got[RefreshCookie].MaxAge, 5)
}

func Test_CookieManager_Clear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NewCookieManager("example.com", false).Clear(c)

	got := cookiesOf(w)
	assert.Equal(t, -1, got[AccessCookie].MaxAge)
	assert.Equal(t, -1, got[RefreshCookie].MaxAge)
}

func Test_maxAgeFrom_PastIsZero(t *testing.T) {
	assert.Zero(t, maxAgeFrom(time.Now().Add(-time.Minute)))
}
