package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appexport "github.com/malnatis/order-export/internal/application/export"
	"github.com/malnatis/order-export/internal/domain/shared"
	"github.com/malnatis/order-export/internal/interfaces/http/dto"
	"github.com/malnatis/order-export/internal/interfaces/http/middleware"
)

const cmsContentType = "application/xml"

// ExportHandler exposes the webhook intake and the on-demand CMS export.
type ExportHandler struct {
	BaseHandler
	service   *appexport.Service
	storeHash string
}

func NewExportHandler(service *appexport.Service, storeHash string) *ExportHandler {
	return &ExportHandler{
		service:   service,
		storeHash: storeHash,
	}
}

// RegisterRoutes mounts the authenticated export endpoints.
func (h *ExportHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/export/cms", h.ExportCMS)
}

// RegisterWebhookRoutes mounts the endpoints called directly by the
// commerce platform. These carry no bearer token.
func (h *ExportHandler) RegisterWebhookRoutes(group *gin.RouterGroup) {
	group.POST("/events/orders", h.HandleOrderEvent)
}

// HandleOrderEvent accepts an order-change notification and runs it through
// the export pipeline. Events that do not trigger an export still get a 200
// so the webhook sender does not retry them.
func (h *ExportHandler) HandleOrderEvent(c *gin.Context) {
	var req dto.OrderWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, dto.ErrCodeValidation, "invalid webhook payload",
			middleware.ValidationErrorDetails(err))
		return
	}

	result, err := h.service.HandleOrderEvent(c.Request.Context(), req.ToDomain())
	if err != nil {
		log := h.Logger(c)
		switch {
		case errors.Is(err, shared.ErrUpstreamFailure):
			log.Error("commerce API failure", zap.Int("order_id", req.Data.ID), zap.Error(err))
			h.Error(c, dto.ErrCodeUpstreamFailure, "commerce API call failed", "")
		case errors.Is(err, shared.ErrDeliveryFailure):
			log.Error("document delivery failure", zap.Int("order_id", req.Data.ID), zap.Error(err))
			h.Error(c, dto.ErrCodeDeliveryFailure, "document delivery failed", "")
		default:
			log.Error("export failed", zap.Int("order_id", req.Data.ID), zap.Error(err))
			h.Error(c, dto.ErrCodeInternal, "export failed", "")
		}
		return
	}

	h.Success(c, http.StatusOK, dto.OrderWebhookResponse{
		OrderID: req.Data.ID,
		Result:  string(result),
	})
}

// ExportCMS builds the CMS document for one or more orders, identified by a
// comma-separated id list. The storeHash parameter must name the store this
// deployment serves.
func (h *ExportHandler) ExportCMS(c *gin.Context) {
	rawIDs := c.Query("id")
	storeHash := c.Query("storeHash")
	if rawIDs == "" || storeHash == "" {
		h.Error(c, dto.ErrCodeValidation, "id and storeHash query parameters are required", "")
		return
	}
	if storeHash != h.storeHash {
		h.Error(c, dto.ErrCodeNotFound, "unknown store", "")
		return
	}

	orderIDs := dto.ParseOrderIDs(rawIDs)
	if orderIDs == nil {
		h.Error(c, dto.ErrCodeValidation, "id must be a comma-separated list of order ids", "")
		return
	}

	doc, err := h.service.GenerateCMSDocument(c.Request.Context(), orderIDs)
	if err != nil {
		h.Logger(c).Error("CMS export failed", zap.Ints("order_ids", orderIDs), zap.Error(err))
		if errors.Is(err, shared.ErrUpstreamFailure) {
			h.Error(c, dto.ErrCodeUpstreamFailure, "commerce API call failed", "")
			return
		}
		h.Error(c, dto.ErrCodeInternal, "CMS export failed", "")
		return
	}

	c.Data(http.StatusOK, cmsContentType, []byte(doc))
}
