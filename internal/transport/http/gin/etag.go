package httpgin

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// writeJSONWithCache writes v as JSON with a weak ETag derived from the body
// and a public max-age. Reference data and searches are cheap to recompute
// but hot to serve, so a matching If-None-Match short-circuits to 304.
func writeJSONWithCache(c *gin.Context, status int, v any, maxAge time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "encoding failed"})
		return
	}

	sum := sha256.Sum256(b)
	tag := fmt.Sprintf(`W/"%x"`, sum[:16])

	c.Header("ETag", tag)
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))

	if c.GetHeader("If-None-Match") == tag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(status, "application/json; charset=utf-8", b)
}
