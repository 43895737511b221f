package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/kanban-api/internal/errors"
)

// RequireIDParam parses the named path parameter as a positive id and
// stores it in the context under the same name.
func RequireIDParam(name, label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(name), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid %s ID", label))
			c.Abort()
			return
		}

		c.Set(name, id)
		c.Next()
	}
}

// GetIDParam returns an id stored by RequireIDParam
func GetIDParam(c *gin.Context, name string) (uint64, bool) {
	v, exists := c.Get(name)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
