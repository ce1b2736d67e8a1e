package courier

import (
	"fmt"
	"strconv"
	"strings"
)

// The gateway returns the same concept under several field names depending
// on the endpoint. Everything is flattened here into the canonical structs;
// nothing outside this package inspects raw payload shapes.

// pickString returns the first non-empty string among keys, converting
// numbers to their decimal representation.
func pickString(m map[string]interface{}, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

// pickFloat returns the first parseable number among keys.
func pickFloat(m map[string]interface{}, keys ...string) float64 {
	if m == nil {
		return 0
	}
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// pickBool tolerates booleans, "true"/"false" strings and 0/1 numbers.
func pickBool(m map[string]interface{}, keys ...string) bool {
	if m == nil {
		return false
	}
	for _, k := range keys {
		switch v := m[k].(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			s := strings.ToLower(strings.TrimSpace(v))
			if s == "true" || s == "1" || s == "yes" {
				return true
			}
			if s == "false" || s == "0" || s == "no" {
				return false
			}
		}
	}
	return false
}

// extractPayload unwraps the gateway's response envelope. The payload sits
// under "data" or "result", or is the body itself.
func extractPayload(m map[string]interface{}) interface{} {
	if m == nil {
		return nil
	}
	if v, ok := m["data"]; ok && v != nil {
		return v
	}
	if v, ok := m["result"]; ok && v != nil {
		return v
	}
	return m
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// normalizeQuote maps one raw courier entry onto Quote. Entries without a
// resolvable partner id are dropped by the caller.
func normalizeQuote(m map[string]interface{}) Quote {
	return Quote{
		PartnerID: pickString(m, "id", "courier_id", "partner_id", "shipping_company_id", "company_id", "code"),
		Name:      pickString(m, "name", "courier_name", "company_name", "title"),
		Rate:      pickFloat(m, "rate", "price", "amount", "total", "cost"),
		SupportsCOD: pickBool(m, "supports_cod", "cod", "cash_on_delivery", "is_cod") ||
			strings.EqualFold(pickString(m, "payment_type"), "cod"),
		SupportsPrepaid: pickBool(m, "supports_prepaid", "prepaid", "is_prepaid") ||
			strings.EqualFold(pickString(m, "payment_type"), "prepaid") ||
			pickString(m, "payment_type") == "",
		MinAmount: pickFloat(m, "min_amount", "min_order_value", "minimum"),
		MaxAmount: pickFloat(m, "max_amount", "max_order_value", "maximum"),
	}
}

// normalizeQuotes extracts and normalizes the quote list, dropping entries
// the partner id cannot be resolved for.
func normalizeQuotes(body map[string]interface{}) []Quote {
	payload := extractPayload(body)
	raw := asSlice(payload)
	if raw == nil {
		if m := asMap(payload); m != nil {
			raw = asSlice(m["couriers"])
			if raw == nil {
				raw = asSlice(m["partners"])
			}
		}
	}

	quotes := make([]Quote, 0, len(raw))
	for _, entry := range raw {
		m := asMap(entry)
		if m == nil {
			continue
		}
		q := normalizeQuote(m)
		if q.PartnerID == "" {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

func normalizeExternalOrder(body map[string]interface{}) (*ExternalOrder, error) {
	m := asMap(extractPayload(body))
	order := &ExternalOrder{
		OrderID:        pickString(m, "order_id", "id", "external_order_id", "reference"),
		TrackingNumber: pickString(m, "tracking_number", "tracking_no", "awb", "awb_number"),
		Status:         pickString(m, "status", "order_status", "state"),
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("courier order response missing order id")
	}
	return order, nil
}

func normalizeShipment(body map[string]interface{}) (*Shipment, error) {
	m := asMap(extractPayload(body))
	shipment := &Shipment{
		TrackingNumber: pickString(m, "tracking_number", "tracking_no", "awb", "awb_number"),
		LabelURL:       pickString(m, "label_url", "label", "awb_url", "print_url"),
		Status:         pickString(m, "status", "shipment_status", "state"),
	}
	if shipment.TrackingNumber == "" {
		return nil, fmt.Errorf("courier shipment response missing tracking number")
	}
	return shipment, nil
}

func normalizeTracking(body map[string]interface{}) *Tracking {
	m := asMap(extractPayload(body))
	tracking := &Tracking{
		Status:   pickString(m, "status", "shipment_status", "current_status", "state"),
		LabelURL: pickString(m, "label_url", "label", "awb_url"),
	}

	raw := asSlice(m["activities"])
	if raw == nil {
		raw = asSlice(m["history"])
	}
	if raw == nil {
		raw = asSlice(m["events"])
	}
	for _, entry := range raw {
		am := asMap(entry)
		if am == nil {
			continue
		}
		tracking.Activities = append(tracking.Activities, TrackingActivity{
			Status:    pickString(am, "status", "event", "description"),
			Location:  pickString(am, "location", "city", "hub"),
			Timestamp: pickString(am, "timestamp", "date", "created_at", "time"),
		})
	}
	return tracking
}
