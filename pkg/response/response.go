// Package response writes the {code, message, data} envelope shared by the
// JSON endpoints.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope. Code is 0 on success and the HTTP status
// otherwise.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes data with status 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Message: "success", Data: data})
}

// Error aborts the request with status and message. err may be nil; its
// text is passed through to the caller when set.
func Error(c *gin.Context, status int, message string, err error) {
	body := Response{Code: status, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

func BadRequest(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// TooManyRequests is used by the rate limiter.
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
}

func InternalError(c *gin.Context, message string, err error) {
	Error(c, http.StatusInternalServerError, message, err)
}
