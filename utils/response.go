package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// JSONFailure renders the structured failure payload: a stable code, the
// human readable messages and the submitted form data for redisplay.
func JSONFailure(c *gin.Context, status int, code string, messages []string, formData interface{}) {
	if messages == nil {
		messages = []string{}
	}
	body := gin.H{
		"success": false,
		"code":    code,
		"errors":  messages,
	}
	if formData != nil {
		body["form_data"] = formData
	}
	c.JSON(status, body)
}
