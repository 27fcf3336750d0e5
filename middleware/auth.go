package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/socialhub/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextSessionIDKey stores the server-side session id inside Gin context.
	ContextSessionIDKey = "session_id"
)

// SessionLoader resolves the session cookie, if any, into the request's identity.
// Requests without a usable session continue anonymously.
func SessionLoader(store utils.SessionStore, secret, cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw, err := ctx.Cookie(cookieName)
		if err != nil || raw == "" {
			ctx.Next()
			return
		}

		claims, err := utils.ParseSession(raw, secret)
		if err != nil {
			ctx.Next()
			return
		}

		sess, err := store.Get(ctx.Request.Context(), claims.SessionID)
		if err != nil {
			if !errors.Is(err, utils.ErrSessionNotFound) {
				utils.Logger.Sugar().Warnf("session lookup failed sid=%s err=%v", claims.SessionID, err)
			}
			ctx.Next()
			return
		}
		if sess.UserID != claims.UserID {
			ctx.Next()
			return
		}

		ctx.Set(ContextUserIDKey, sess.UserID)
		ctx.Set(ContextSessionIDKey, sess.ID)
		ctx.Next()
	}
}

// AuthRequired rejects requests that SessionLoader did not authenticate.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := CurrentUserID(ctx); !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "Unauthorized")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentUserID returns the authenticated user for this request.
func CurrentUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// CurrentSessionID returns the server-side session id for this request.
func CurrentSessionID(ctx *gin.Context) (string, bool) {
	sid := ctx.GetString(ContextSessionIDKey)
	return sid, sid != ""
}
