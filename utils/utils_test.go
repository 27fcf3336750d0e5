package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	s := newSession(9, time.Hour)
	token, err := SignSession(s, "secret")
	require.NoError(t, err)

	claims, err := ParseSession(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.SessionID)
	assert.Equal(t, uint(9), claims.UserID)

	_, err = ParseSession(token, "other-secret")
	assert.Error(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{SessionID: s.ID, UserID: 1})
	forgedToken, err := forged.SignedString([]byte("secret"))
	require.NoError(t, err)
	forgedParts := strings.Split(forgedToken, ".")
	_, err = ParseSession(parts[0]+"."+forgedParts[1]+"."+parts[2], "secret")
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	s := newSession(9, -time.Minute)
	token, err := SignSession(s, "secret")
	require.NoError(t, err)

	_, err = ParseSession(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.LessOrEqual(t, SessionMaxAge(s), 0)
}

func TestSessionTokenRejectsNoneAlg(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{SessionID: "x", UserID: 1})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseSession(raw, "secret")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, CheckPassword(hash, "pw1"))
	assert.False(t, CheckPassword(hash, "pw2"))
	assert.False(t, CheckPassword("not-a-hash", "pw1"))

	again, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"<b>bold</b>", "bold"},
		{"x<script>alert(1)</script>", "x"},
		{"Tom & Jerry <3", "Tom & Jerry <3"},
		{"l'ÉCOLE \"quoted\"", "l'ÉCOLE \"quoted\""},
		{"   ", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Sanitize(c.in), c.in)
	}
}

func TestErrorResponseShape(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	Error(ctx, http.StatusForbidden, 40301, "Forbidden")

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"error": "Forbidden", "code": float64(40301)}, body)
}

func TestRecoveryWithZap(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithZap(Logger, false))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "50000")
}

func TestRollingFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gin.log")
	zl, err := NewRollingFileLogger(path, "info", 1, 1, 1, false)
	require.NoError(t, err)

	r := gin.New()
	r.Use(ginzap.Ginzap(zl, time.RFC3339, true))
	r.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, zl.Sync())

	assert.FileExists(t, path)
}
