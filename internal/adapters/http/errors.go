package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
)

// NoRoute answers unknown paths with the standard JSON error envelope.
func NoRoute(c *gin.Context) {
	dto.HandleErrorCode(c, dto.ErrorCodeNotFound,
		fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
}

// NoMethod answers a known path requested with an unsupported method.
func NoMethod(c *gin.Context) {
	dto.HandleErrorCode(c, dto.ErrorCodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed on %s", c.Request.Method, c.Request.URL.Path))
}
