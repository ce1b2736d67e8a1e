package courier

import "context"

// Canonical shapes. Raw gateway payloads never leave this package; the
// normalize layer maps the gateway's field-name variants onto these.

// Quote is one courier partner's offer for a destination.
type Quote struct {
	PartnerID       string  `json:"partner_id"`
	Name            string  `json:"name"`
	Rate            float64 `json:"rate"`
	SupportsCOD     bool    `json:"supports_cod"`
	SupportsPrepaid bool    `json:"supports_prepaid"`
	MinAmount       float64 `json:"min_amount"`
	MaxAmount       float64 `json:"max_amount"`
}

// QuoteRequest asks for courier offers between two cities.
type QuoteRequest struct {
	OriginCityID      string
	DestinationCityID string
	PaymentMode       string // "cod" or "prepaid"
	WeightKg          float64
	OrderTotal        float64
	BoxCount          int
}

// OrderRequest creates an order on the gateway side.
type OrderRequest struct {
	Reference     string
	WarehouseCode string
	CityID        string
	RegionID      string
	CountryID     string
	Address       string
	CustomerName  string
	CustomerPhone string
	PaymentMode   string
	CodAmount     float64
	CodCurrency   string
	WeightKg      float64
	BoxCount      int
	OrderTotal    float64
}

// ExternalOrder is the gateway's record of a created order.
type ExternalOrder struct {
	OrderID        string `json:"order_id"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Status         string `json:"status,omitempty"`
}

// ShipmentRequest books a shipment for an already-created external order.
type ShipmentRequest struct {
	CourierPartnerID string
	WarehouseCode    string
}

// Shipment is a booked shipment.
type Shipment struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url,omitempty"`
	Status         string `json:"status,omitempty"`
}

// TrackingActivity is one scan event in a shipment's history.
type TrackingActivity struct {
	Status    string `json:"status"`
	Location  string `json:"location,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Tracking is the current state of a shipment.
type Tracking struct {
	Status     string             `json:"status"`
	LabelURL   string             `json:"label_url,omitempty"`
	Activities []TrackingActivity `json:"activities"`
}

// Gateway is the courier integration consumed by the order workflow.
type Gateway interface {
	QuoteCouriers(ctx context.Context, req QuoteRequest) ([]Quote, error)
	CreateOrder(ctx context.Context, req OrderRequest) (*ExternalOrder, error)
	CreateShipment(ctx context.Context, externalOrderID string, req ShipmentRequest) (*Shipment, error)
	Track(ctx context.Context, trackingNumber string) (*Tracking, error)
	Label(ctx context.Context, externalOrderID string) (string, error)
}
