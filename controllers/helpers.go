package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/socialhub/middleware"
	"github.com/cppla/socialhub/utils"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100
	// keeps (page-1)*perPage inside int32 on every driver
	maxPage        = math.MaxInt32 / maxPerPage
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := defaultPage
	perPage := defaultPerPage
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = min(p, maxPage)
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 {
		perPage = min(s, maxPerPage)
	}
	return page, perPage
}

// pageCount is ceil(total/perPage).
func pageCount(total int64, perPage int) int {
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// parseID reads a positive integer path parameter; anything else is treated as an unknown resource.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func getUserID(ctx *gin.Context) (uint, bool) {
	return middleware.CurrentUserID(ctx)
}

// serverError logs the underlying store failure and hides it from the client.
func serverError(ctx *gin.Context, code int, message string, err error) {
	utils.Logger.Error(message,
		zap.Error(err),
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.Request.URL.Path),
	)
	utils.Error(ctx, http.StatusInternalServerError, code, message)
}
