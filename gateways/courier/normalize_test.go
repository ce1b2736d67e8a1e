package courier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickString(t *testing.T) {
	m := map[string]interface{}{
		"empty":  "  ",
		"name":   "SMSA",
		"id":     float64(12),
		"number": 7,
	}

	assert.Equal(t, "SMSA", pickString(m, "missing", "empty", "name"))
	assert.Equal(t, "12", pickString(m, "id"))
	assert.Equal(t, "7", pickString(m, "number"))
	assert.Equal(t, "", pickString(m, "missing"))
	assert.Equal(t, "", pickString(nil, "name"))
}

func TestPickFloat(t *testing.T) {
	m := map[string]interface{}{
		"rate":   float64(18.5),
		"price":  "20.25",
		"broken": "n/a",
	}

	assert.Equal(t, 18.5, pickFloat(m, "rate"))
	assert.Equal(t, 20.25, pickFloat(m, "price"))
	assert.Equal(t, 0.0, pickFloat(m, "broken"))
	assert.Equal(t, 0.0, pickFloat(m, "missing"))
}

func TestPickBool(t *testing.T) {
	m := map[string]interface{}{
		"b":    true,
		"num":  float64(1),
		"zero": float64(0),
		"yes":  "Yes",
		"no":   "false",
	}

	assert.True(t, pickBool(m, "b"))
	assert.True(t, pickBool(m, "num"))
	assert.False(t, pickBool(m, "zero"))
	assert.True(t, pickBool(m, "yes"))
	assert.False(t, pickBool(m, "no"))
	assert.False(t, pickBool(m, "missing"))
}

func TestExtractPayload(t *testing.T) {
	data := map[string]interface{}{"data": map[string]interface{}{"id": "1"}}
	result := map[string]interface{}{"result": []interface{}{"x"}}
	flat := map[string]interface{}{"id": "1"}

	assert.Equal(t, map[string]interface{}{"id": "1"}, extractPayload(data))
	assert.Equal(t, []interface{}{"x"}, extractPayload(result))
	assert.Equal(t, flat, extractPayload(flat))
	assert.Nil(t, extractPayload(nil))
}

func TestNormalizeQuotesFieldVariants(t *testing.T) {
	body := map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{
				"courier_id":   float64(3),
				"courier_name": "Aramex",
				"price":        "22.5",
				"cod":          true,
			},
			map[string]interface{}{
				"shipping_company_id": "smsa",
				"title":               "SMSA Express",
				"rate":                float64(18),
				"payment_type":        "prepaid",
				"min_order_value":     float64(50),
				"max_order_value":     float64(5000),
			},
			map[string]interface{}{
				// no resolvable partner id, dropped
				"name": "Mystery",
				"rate": float64(10),
			},
		},
	}

	quotes := normalizeQuotes(body)
	assert.Len(t, quotes, 2)

	assert.Equal(t, "3", quotes[0].PartnerID)
	assert.Equal(t, "Aramex", quotes[0].Name)
	assert.Equal(t, 22.5, quotes[0].Rate)
	assert.True(t, quotes[0].SupportsCOD)

	assert.Equal(t, "smsa", quotes[1].PartnerID)
	assert.True(t, quotes[1].SupportsPrepaid)
	assert.False(t, quotes[1].SupportsCOD)
	assert.Equal(t, 50.0, quotes[1].MinAmount)
	assert.Equal(t, 5000.0, quotes[1].MaxAmount)
}

func TestNormalizeQuotesNestedList(t *testing.T) {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"couriers": []interface{}{
				map[string]interface{}{"id": "dhl", "name": "DHL", "rate": float64(30)},
			},
		},
	}

	quotes := normalizeQuotes(body)
	assert.Len(t, quotes, 1)
	assert.Equal(t, "dhl", quotes[0].PartnerID)
}

func TestNormalizeExternalOrder(t *testing.T) {
	body := map[string]interface{}{
		"result": map[string]interface{}{
			"id":     float64(9001),
			"awb":    "AWB-55",
			"status": "created",
		},
	}

	order, err := normalizeExternalOrder(body)
	assert.NoError(t, err)
	assert.Equal(t, "9001", order.OrderID)
	assert.Equal(t, "AWB-55", order.TrackingNumber)
	assert.Equal(t, "created", order.Status)
}

func TestNormalizeExternalOrderMissingID(t *testing.T) {
	_, err := normalizeExternalOrder(map[string]interface{}{"data": map[string]interface{}{"status": "created"}})
	assert.Error(t, err)
}

func TestNormalizeShipmentMissingTracking(t *testing.T) {
	_, err := normalizeShipment(map[string]interface{}{"data": map[string]interface{}{"status": "booked"}})
	assert.Error(t, err)
}

func TestNormalizeTracking(t *testing.T) {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"current_status": "in_transit",
			"history": []interface{}{
				map[string]interface{}{"event": "picked_up", "city": "Riyadh", "date": "2024-03-01T10:00:00Z"},
				map[string]interface{}{"event": "in_transit", "hub": "Jeddah", "time": "2024-03-02T08:00:00Z"},
			},
		},
	}

	tracking := normalizeTracking(body)
	assert.Equal(t, "in_transit", tracking.Status)
	assert.Len(t, tracking.Activities, 2)
	assert.Equal(t, "picked_up", tracking.Activities[0].Status)
	assert.Equal(t, "Riyadh", tracking.Activities[0].Location)
	assert.Equal(t, "Jeddah", tracking.Activities[1].Location)
}
