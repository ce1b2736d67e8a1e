package courier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// HTTPGateway implements Gateway over the courier REST API.
type HTTPGateway struct {
	client *Client
}

// NewHTTPGateway creates a new HTTPGateway.
func NewHTTPGateway(client *Client) Gateway {
	return &HTTPGateway{client: client}
}

// QuoteCouriers lists partner offers for a destination. Quote listing is a
// read, so it goes through the bounded-retry path.
func (g *HTTPGateway) QuoteCouriers(ctx context.Context, req QuoteRequest) ([]Quote, error) {
	payload := map[string]interface{}{
		"origin_city_id":      req.OriginCityID,
		"destination_city_id": req.DestinationCityID,
		"payment_mode":        req.PaymentMode,
		"weight":              req.WeightKg,
		"order_total":         req.OrderTotal,
		"box_count":           req.BoxCount,
	}
	body, err := g.client.doWithRetry(ctx, http.MethodPost, "/couriers/quote", payload)
	if err != nil {
		return nil, err
	}
	return normalizeQuotes(body), nil
}

// CreateOrder registers the order with the gateway. Attempted once: a
// failure here is compensated, never silently retried.
func (g *HTTPGateway) CreateOrder(ctx context.Context, req OrderRequest) (*ExternalOrder, error) {
	payload := map[string]interface{}{
		"reference":      req.Reference,
		"warehouse_code": req.WarehouseCode,
		"city_id":        req.CityID,
		"region_id":      req.RegionID,
		"country_id":     req.CountryID,
		"address":        req.Address,
		"customer_name":  req.CustomerName,
		"customer_phone": req.CustomerPhone,
		"payment_mode":   req.PaymentMode,
		"weight":         req.WeightKg,
		"box_count":      req.BoxCount,
		"order_total":    req.OrderTotal,
	}
	if req.PaymentMode == "cod" {
		payload["cod_amount"] = req.CodAmount
		payload["cod_currency"] = req.CodCurrency
	}
	body, err := g.client.do(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return nil, err
	}
	return normalizeExternalOrder(body)
}

// CreateShipment books a shipment for an external order. Attempted once.
func (g *HTTPGateway) CreateShipment(ctx context.Context, externalOrderID string, req ShipmentRequest) (*Shipment, error) {
	payload := map[string]interface{}{}
	if req.CourierPartnerID != "" {
		payload["courier_partner_id"] = req.CourierPartnerID
	}
	if req.WarehouseCode != "" {
		payload["warehouse_code"] = req.WarehouseCode
	}
	body, err := g.client.do(ctx, http.MethodPost,
		fmt.Sprintf("/orders/%s/shipment", url.PathEscape(externalOrderID)), payload)
	if err != nil {
		return nil, err
	}
	return normalizeShipment(body)
}

// Track returns the shipment's current status and activity history.
func (g *HTTPGateway) Track(ctx context.Context, trackingNumber string) (*Tracking, error) {
	body, err := g.client.doWithRetry(ctx, http.MethodGet,
		fmt.Sprintf("/shipments/%s/track", url.PathEscape(trackingNumber)), nil)
	if err != nil {
		return nil, err
	}
	return normalizeTracking(body), nil
}

// Label returns the printable label URL for an external order.
func (g *HTTPGateway) Label(ctx context.Context, externalOrderID string) (string, error) {
	body, err := g.client.doWithRetry(ctx, http.MethodGet,
		fmt.Sprintf("/orders/%s/label", url.PathEscape(externalOrderID)), nil)
	if err != nil {
		return "", err
	}
	m := asMap(extractPayload(body))
	label := pickString(m, "label_url", "label", "url", "print_url")
	if label == "" {
		return "", fmt.Errorf("courier label response missing url")
	}
	return label, nil
}
