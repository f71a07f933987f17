package types

import "time"

// Delivery statuses accepted by the API. There is no enforced transition
// order: any status may replace any other.
const (
	StatusDelivered         = "delivered"
	StatusInTransit         = "in transit"
	StatusReadyForPickUp    = "ready for pick up"
	StatusShipmentHandedOff = "shipment handed over"
)

var deliveryStatuses = map[string]struct{}{
	StatusDelivered:         {},
	StatusInTransit:         {},
	StatusReadyForPickUp:    {},
	StatusShipmentHandedOff: {},
}

func ValidDeliveryStatus(s string) bool {
	_, ok := deliveryStatuses[s]
	return ok
}

// Shipment is the core entity. RecipientEmail is the ownership key: every
// read/update/delete filters on it in addition to the lookup key. OrderID is
// caller-supplied and unique only within one owner's scope.
type Shipment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         string    `gorm:"column:order_id;index:idx_shipments_owner_order,priority:2" json:"order_id"`
	RecipientName   string    `json:"recipient_name"`
	RecipientEmail  string    `gorm:"index:idx_shipments_owner_order,priority:1" json:"recipient_email"`
	RecipientPhone  string    `json:"recipient_phone"`
	DeliveryAddress string    `json:"delivery_address"`
	PostalNumber    int       `json:"postal_number"`
	City            string    `json:"city"`
	Country         string    `json:"country"`
	Weight          float64   `json:"weight"`
	EstimatedCost   float64   `json:"estimated_cost"`
	TrackingNumber  *string   `json:"tracking_number,omitempty"`
	DeliveryStatus  string    `json:"delivery_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Shipment) TableName() string { return "shipments" }
