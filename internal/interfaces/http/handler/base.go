package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/malnatis/order-export/internal/infrastructure/logger"
	"github.com/malnatis/order-export/internal/interfaces/http/dto"
)

// BaseHandler bundles the response helpers shared by all handlers.
type BaseHandler struct{}

// Success sends a JSON success envelope.
func (h *BaseHandler) Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.NewSuccessResponse(data))
}

// Error sends a JSON error envelope with the status mapped from the code.
func (h *BaseHandler) Error(c *gin.Context, code, message, details string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, details))
}

// Logger returns the request-scoped logger installed by the access-log
// middleware, or a no-op logger outside a request.
func (h *BaseHandler) Logger(c *gin.Context) *zap.Logger {
	return logger.GetGinLogger(c)
}
