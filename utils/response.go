package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Respond writes data as the JSON body with the given status code.
func Respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, data)
}

// Success returns a 200 response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, data)
}

// Created returns a 201 response.
func Created(ctx *gin.Context, data interface{}) {
	Respond(ctx, 201, data)
}

// Error returns a standard error response. code is the business code, status the HTTP status.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, ErrorResponse{Error: message, Code: code})
}
