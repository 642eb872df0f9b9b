package middleware

import (
	"errors"
	"net/http"

	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			var payload interface{}
			if len(appErr.Fields) > 0 {
				payload = response.FieldErrors{Fields: appErr.Fields}
			}
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed", "request_id", c.GetString(response.RequestIDKey), "path", c.FullPath(), "error", err, "cause", appErr.Err)
			}
			message := appErr.Message
			if appErr.Code == http.StatusInternalServerError {
				message = "An unexpected error occurred. Please try again later."
			}
			response.Error(c, appErr.Code, message, payload)
			return
		}

		// Internal details stay in the log.
		logger.Log.Error("Internal Server Error", "request_id", c.GetString(response.RequestIDKey), "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
