package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// asOfQueryLayouts are the accepted formats for the asOf query parameter.
var asOfQueryLayouts = []string{time.RFC3339, time.DateOnly}

// parseAsOfQuery reads the optional asOf query parameter. It defaults to the
// current time when the parameter is absent.
func parseAsOfQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	var lastErr error
	for _, layout := range asOfQueryLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
