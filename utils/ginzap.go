package utils

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithZap logs panics through zl and answers with the standard 500 error body.
func RecoveryWithZap(zl *zap.Logger, stack bool) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(zl, stack, func(ctx *gin.Context, _ any) {
		Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
		ctx.Abort()
	})
}
