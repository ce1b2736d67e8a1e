package payment

import "context"

// Key types accepted by GetStatus.
const (
	KeyTypePaymentID = "PaymentId"
	KeyTypeInvoiceID = "InvoiceId"
)

// Method is one payment method offered by the gateway for an amount.
type Method struct {
	ID            int     `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	ServiceCharge float64 `json:"service_charge"`
	TotalAmount   float64 `json:"total_amount"`
}

// ExecuteRequest initiates a payment.
type ExecuteRequest struct {
	MethodID      int
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Reference     string // caller-generated idempotent reference
	CallbackURL   string
	ErrorURL      string
}

// ExecuteResult is the gateway's answer to a payment initiation.
type ExecuteResult struct {
	InvoiceID  string `json:"invoice_id"`
	PaymentID  string `json:"payment_id,omitempty"`
	PaymentURL string `json:"payment_url"`
}

// Status is the gateway's view of a payment.
type Status struct {
	InvoiceID         string `json:"invoice_id"`
	PaymentID         string `json:"payment_id,omitempty"`
	Reference         string `json:"reference,omitempty"`
	InvoiceStatus     string `json:"invoice_status"`
	TransactionStatus string `json:"transaction_status,omitempty"`
}

// Paid reports whether the gateway considers the payment settled.
// "Succss" is the gateway's own spelling in transaction payloads.
func (s *Status) Paid() bool {
	return s.InvoiceStatus == "Paid" || s.TransactionStatus == "Succss" || s.TransactionStatus == "Success"
}

// Failed reports whether the gateway considers the payment finally failed.
func (s *Status) Failed() bool {
	return s.InvoiceStatus == "Expired" || s.InvoiceStatus == "Canceled" ||
		s.TransactionStatus == "Failed" || s.TransactionStatus == "Error"
}

// Gateway is the payment integration consumed by the order workflow.
type Gateway interface {
	ListMethods(ctx context.Context, amount float64, currency string) ([]Method, error)
	ExecutePayment(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error)
	GetStatus(ctx context.Context, key, keyType string) (*Status, error)
}
