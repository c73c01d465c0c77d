package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// All endpoints answer with the success flag the dashboard checks; failures
// carry the raw underlying message under "error".
func RespondError(c *gin.Context, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func RespondOK(c *gin.Context, payload gin.H) {
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}
