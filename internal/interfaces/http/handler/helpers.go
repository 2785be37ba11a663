package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseExpectedVersion reads the optional expected_version query parameter.
// The second return value is false when the parameter is present but not
// a valid integer.
func parseExpectedVersion(c *gin.Context) (*int, bool) {
	raw := c.Query("expected_version")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}
