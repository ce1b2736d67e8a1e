package payment

import (
	"context"
	"strconv"
)

// HTTPGateway implements Gateway over the payment REST API.
type HTTPGateway struct {
	client      *Client
	callbackURL string
	errorURL    string
}

// NewHTTPGateway creates a new HTTPGateway.
func NewHTTPGateway(client *Client, callbackURL, errorURL string) Gateway {
	return &HTTPGateway{client: client, callbackURL: callbackURL, errorURL: errorURL}
}

type initiateData struct {
	PaymentMethods []struct {
		PaymentMethodId   int     `json:"PaymentMethodId"`
		PaymentMethodCode string  `json:"PaymentMethodCode"`
		PaymentMethodEn   string  `json:"PaymentMethodEn"`
		ServiceCharge     float64 `json:"ServiceCharge"`
		TotalAmount       float64 `json:"TotalAmount"`
	} `json:"PaymentMethods"`
}

// ListMethods returns the payment methods available for an amount.
func (g *HTTPGateway) ListMethods(ctx context.Context, amount float64, currency string) ([]Method, error) {
	payload := map[string]interface{}{
		"InvoiceAmount": amount,
		"CurrencyIso":   currency,
	}
	var data initiateData
	if err := g.client.post(ctx, "/v2/InitiatePayment", payload, &data); err != nil {
		return nil, err
	}

	methods := make([]Method, 0, len(data.PaymentMethods))
	for _, m := range data.PaymentMethods {
		methods = append(methods, Method{
			ID:            m.PaymentMethodId,
			Code:          m.PaymentMethodCode,
			Name:          m.PaymentMethodEn,
			ServiceCharge: m.ServiceCharge,
			TotalAmount:   m.TotalAmount,
		})
	}
	return methods, nil
}

type executeData struct {
	InvoiceId  int64  `json:"InvoiceId"`
	PaymentId  string `json:"PaymentId"`
	PaymentURL string `json:"PaymentURL"`
}

// ExecutePayment initiates a payment. The caller-generated reference makes a
// retried call land on the same gateway invoice instead of a second charge.
func (g *HTTPGateway) ExecutePayment(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	payload := map[string]interface{}{
		"PaymentMethodId":    req.MethodID,
		"InvoiceValue":       req.Amount,
		"DisplayCurrencyIso": req.Currency,
		"CustomerName":       req.CustomerName,
		"CustomerEmail":      req.CustomerEmail,
		"CustomerMobile":     req.CustomerPhone,
		"CustomerReference":  req.Reference,
		"CallBackUrl":        g.callbackURL,
		"ErrorUrl":           g.errorURL,
	}
	var data executeData
	if err := g.client.post(ctx, "/v2/ExecutePayment", payload, &data); err != nil {
		return nil, err
	}
	return &ExecuteResult{
		InvoiceID:  formatInvoiceID(data.InvoiceId),
		PaymentID:  data.PaymentId,
		PaymentURL: data.PaymentURL,
	}, nil
}

type statusData struct {
	InvoiceId         int64  `json:"InvoiceId"`
	InvoiceStatus     string `json:"InvoiceStatus"`
	CustomerReference string `json:"CustomerReference"`
	InvoiceTransactions []struct {
		PaymentId         string `json:"PaymentId"`
		TransactionStatus string `json:"TransactionStatus"`
	} `json:"InvoiceTransactions"`
}

// GetStatus fetches the gateway's view of a payment by payment or invoice key.
func (g *HTTPGateway) GetStatus(ctx context.Context, key, keyType string) (*Status, error) {
	payload := map[string]interface{}{
		"Key":     key,
		"KeyType": keyType,
	}
	var data statusData
	if err := g.client.post(ctx, "/v2/GetPaymentStatus", payload, &data); err != nil {
		return nil, err
	}

	status := &Status{
		InvoiceID:     formatInvoiceID(data.InvoiceId),
		Reference:     data.CustomerReference,
		InvoiceStatus: data.InvoiceStatus,
	}
	// The latest transaction carries the authoritative payment id and status.
	if n := len(data.InvoiceTransactions); n > 0 {
		status.PaymentID = data.InvoiceTransactions[n-1].PaymentId
		status.TransactionStatus = data.InvoiceTransactions[n-1].TransactionStatus
	}
	return status, nil
}

func formatInvoiceID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
