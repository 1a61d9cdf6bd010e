package dto

import (
	"strconv"
	"strings"

	"github.com/malnatis/order-export/internal/domain/export"
)

// OrderWebhookRequest is the order-change notification envelope posted by
// the storefront. Only the order id and the new status are read; the rest
// of the payload is ignored.
type OrderWebhookRequest struct {
	Producer string           `json:"producer"`
	Scope    string           `json:"scope" binding:"required"`
	Data     OrderWebhookData `json:"data" binding:"required"`
}

type OrderWebhookData struct {
	ID     int                 `json:"id" binding:"required"`
	Status *OrderWebhookStatus `json:"status,omitempty"`
}

type OrderWebhookStatus struct {
	NewStatusID *int `json:"new_status_id,omitempty"`
}

// ToDomain converts the webhook payload into the domain event.
func (r OrderWebhookRequest) ToDomain() export.OrderEvent {
	event := export.OrderEvent{
		Producer: r.Producer,
		Scope:    r.Scope,
		OrderID:  r.Data.ID,
	}
	if r.Data.Status != nil {
		event.NewStatusID = r.Data.Status.NewStatusID
	}
	return event
}

// OrderWebhookResponse reports what the pipeline did with the event.
type OrderWebhookResponse struct {
	OrderID int    `json:"order_id"`
	Result  string `json:"result"`
}

// ParseOrderIDs splits a comma-separated id list. It returns nil when any
// segment is empty or not a positive integer.
func ParseOrderIDs(raw string) []int {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}
