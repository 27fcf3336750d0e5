package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/socialhub/utils"
)

const testSecret = "middleware-secret"

func newEngine(store utils.SessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionLoader(store, testSecret, "session"))
	r.GET("/whoami", func(ctx *gin.Context) {
		id, ok := CurrentUserID(ctx)
		sid, _ := CurrentSessionID(ctx)
		ctx.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "sid": sid})
	})
	r.GET("/private", AuthRequired(), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionLoaderAuthenticates(t *testing.T) {
	store := utils.NewMemorySessionStore(time.Hour)
	s, err := store.Create(context.Background(), 5)
	require.NoError(t, err)
	token, err := utils.SignSession(s, testSecret)
	require.NoError(t, err)

	r := newEngine(store)
	w := get(r, "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5,"ok":true,"sid":"`+s.ID+`"}`, w.Body.String())

	w = get(r, "/private", token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSessionLoaderAnonymous(t *testing.T) {
	store := utils.NewMemorySessionStore(time.Hour)
	r := newEngine(store)

	w := get(r, "/whoami", "")
	assert.JSONEq(t, `{"id":0,"ok":false,"sid":""}`, w.Body.String())

	w = get(r, "/whoami", "garbage")
	assert.JSONEq(t, `{"id":0,"ok":false,"sid":""}`, w.Body.String())
}

func TestSessionLoaderRejectsRevokedAndMismatched(t *testing.T) {
	store := utils.NewMemorySessionStore(time.Hour)
	r := newEngine(store)
	ctx := context.Background()

	revoked, err := store.Create(ctx, 5)
	require.NoError(t, err)
	revokedToken, err := utils.SignSession(revoked, testSecret)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, revoked.ID))

	w := get(r, "/private", revokedToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	sess, err := store.Create(ctx, 5)
	require.NoError(t, err)
	sess.UserID = 6
	spoofed, err := utils.SignSession(sess, testSecret)
	require.NoError(t, err)
	w = get(r, "/private", spoofed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	sess.UserID = 5
	otherKey, err := utils.SignSession(sess, "not-the-secret")
	require.NoError(t, err)
	w = get(r, "/private", otherKey)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredBody(t *testing.T) {
	r := newEngine(utils.NewMemorySessionStore(time.Hour))
	w := get(r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized","code":40101}`, w.Body.String())
}
