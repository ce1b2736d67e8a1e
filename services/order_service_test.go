package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/config"
	"github.com/otoor/marketplace-backend/gateways/courier"
	"github.com/otoor/marketplace-backend/gateways/payment"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/repository"
	"github.com/otoor/marketplace-backend/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// --- Mock order repository ---

type mockOrderRepo struct {
	mu sync.Mutex

	nextID            uint
	orders            map[uint]*models.Order
	createReservedErr error

	// staleRead, when set, is what FindByID serves instead of the stored
	// order, standing in for a concurrent writer landing after the read.
	staleRead *models.Order

	cancelAndRestoreCalls        int
	cancelPendingAndRestoreCalls int
	updateStatusIfWins           bool
	updateFieldsErr              error
	fieldUpdates                 []map[string]interface{}
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{nextID: 42, orders: make(map[uint]*models.Order), updateStatusIfWins: true}
}

func (m *mockOrderRepo) CreateReserved(_ context.Context, order *models.Order, _ []models.InventoryLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createReservedErr != nil {
		return m.createReservedErr
	}
	order.ID = m.nextID
	m.nextID++
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepo) CancelAndRestore(_ context.Context, orderID uint, _ []models.InventoryLine) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || (o.Status != models.OrderStatusPending && o.Status != models.OrderStatusProcessing) {
		return false, nil
	}
	o.Status = models.OrderStatusCancelled
	m.cancelAndRestoreCalls++
	return true, nil
}

func (m *mockOrderRepo) CancelPendingAndRestore(_ context.Context, orderID uint, _ []models.InventoryLine) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelPendingAndRestoreCalls++
	o, ok := m.orders[orderID]
	if !ok || o.Status != models.OrderStatusPending {
		return false, nil
	}
	o.Status = models.OrderStatusCancelled
	return true, nil
}

func (m *mockOrderRepo) UpdateStatusIf(_ context.Context, orderID uint, from, to models.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != from || !m.updateStatusIfWins {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *mockOrderRepo) UpdateFields(_ context.Context, orderID uint, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateFieldsErr != nil {
		return m.updateFieldsErr
	}
	m.fieldUpdates = append(m.fieldUpdates, fields)
	if o, ok := m.orders[orderID]; ok {
		if ref, ok := fields["payment_reference"].(string); ok {
			o.PaymentReference = ref
		}
		if inv, ok := fields["payment_invoice_id"].(string); ok {
			o.PaymentInvoiceID = inv
		}
		if ps, ok := fields["payment_status"].(string); ok {
			o.PaymentStatus = ps
		}
	}
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, id uint) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staleRead != nil && m.staleRead.ID == id {
		clone := *m.staleRead
		return &clone, nil
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	clone := *o
	return &clone, nil
}

func (m *mockOrderRepo) FindForPaymentSync(_ context.Context, reference, invoiceID, paymentID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if (reference != "" && o.PaymentReference == reference) ||
			(invoiceID != "" && o.PaymentInvoiceID == invoiceID) ||
			(paymentID != "" && o.PaymentID == paymentID) {
			clone := *o
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("record not found")
}

func (m *mockOrderRepo) ListByBuyer(_ context.Context, _ uint) ([]models.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) ListBySeller(_ context.Context, _ uint) ([]models.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context, _ models.OrderStatus, _, _ int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

// --- Mock product and user repositories ---

type mockProductRepo struct {
	products map[uint]models.Product
}

func (m *mockProductRepo) FindByIDs(_ context.Context, ids []uint) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) FindByID(_ context.Context, id uint) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	return &p, nil
}

type mockUserRepo struct{}

func (m *mockUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	return &models.User{ID: id, Name: "Sara", Email: "sara@example.com", Phone: "966512345678", Role: models.RoleBuyer}, nil
}

// --- Mock coupon service ---

type mockCouponService struct {
	mu          sync.Mutex
	apps        []models.CouponApplication
	validateErr *errors.Error
	prepareErr  *errors.Error
	finalized   [][]models.CouponApplication
}

func (m *mockCouponService) CreateCoupon(_ context.Context, _ uint, _ string, _ *models.CreateCouponRequest) (*models.Coupon, *errors.Error) {
	return nil, nil
}

func (m *mockCouponService) DeactivateCoupon(_ context.Context, _ uint, _ string, _ string) *errors.Error {
	return nil
}

func (m *mockCouponService) ListCoupons(_ context.Context, _ uint, _ string, _, _ int) ([]models.Coupon, int64, *errors.Error) {
	return nil, 0, nil
}

func (m *mockCouponService) ValidateCoupons(_ context.Context, _ *models.ValidateCouponsRequest) (*models.ValidateCouponsResponse, *errors.Error) {
	return nil, nil
}

func (m *mockCouponService) ValidateCodes(_ context.Context, _ []string) *errors.Error {
	return m.validateErr
}

func (m *mockCouponService) PrepareForOrder(_ context.Context, _ []string, _ []services.CartLine) ([]models.CouponApplication, *errors.Error) {
	if m.prepareErr != nil {
		return nil, m.prepareErr
	}
	return m.apps, nil
}

func (m *mockCouponService) Finalize(_ context.Context, apps []models.CouponApplication) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalized = append(m.finalized, apps)
}

func (m *mockCouponService) finalizeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.finalized)
}

// --- Mock shipping service ---

type mockShippingService struct {
	decision *services.ShippingDecision
	err      *errors.Error
}

func (m *mockShippingService) QuotePartners(_ context.Context, _, _, _ string, _, _ float64, _ int) ([]courier.Quote, *errors.Error) {
	return nil, nil
}

func (m *mockShippingService) Resolve(_ context.Context, _ *models.CreateOrderRequest, _ []models.OrderItem, _, _ float64) (*services.ShippingDecision, *errors.Error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.decision, nil
}

// --- Mock courier gateway ---

type mockCourierGateway struct {
	mu sync.Mutex

	createOrderErr    error
	createShipmentErr error
	createOrderCalls  int
	shipmentCalls     int
}

func (m *mockCourierGateway) QuoteCouriers(_ context.Context, _ courier.QuoteRequest) ([]courier.Quote, error) {
	return nil, nil
}

func (m *mockCourierGateway) CreateOrder(_ context.Context, _ courier.OrderRequest) (*courier.ExternalOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createOrderCalls++
	if m.createOrderErr != nil {
		return nil, m.createOrderErr
	}
	return &courier.ExternalOrder{OrderID: "ext-100", Status: "created"}, nil
}

func (m *mockCourierGateway) CreateShipment(_ context.Context, _ string, _ courier.ShipmentRequest) (*courier.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shipmentCalls++
	if m.createShipmentErr != nil {
		return nil, m.createShipmentErr
	}
	return &courier.Shipment{TrackingNumber: "TRK-1", LabelURL: "https://labels.example/1.pdf", Status: "booked"}, nil
}

func (m *mockCourierGateway) Track(_ context.Context, _ string) (*courier.Tracking, error) {
	return &courier.Tracking{Status: "in_transit"}, nil
}

func (m *mockCourierGateway) Label(_ context.Context, _ string) (string, error) {
	return "https://labels.example/1.pdf", nil
}

// --- Mock payment gateway ---

type mockPaymentGateway struct {
	mu sync.Mutex

	executeErr   error
	executeCalls int
	lastRequest  payment.ExecuteRequest
	status       *payment.Status
}

func (m *mockPaymentGateway) ListMethods(_ context.Context, _ float64, _ string) ([]payment.Method, error) {
	return nil, nil
}

func (m *mockPaymentGateway) ExecutePayment(_ context.Context, req payment.ExecuteRequest) (*payment.ExecuteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executeCalls++
	m.lastRequest = req
	if m.executeErr != nil {
		return nil, m.executeErr
	}
	return &payment.ExecuteResult{InvoiceID: "inv-7", PaymentURL: "https://pay.example/inv-7"}, nil
}

func (m *mockPaymentGateway) GetStatus(_ context.Context, _, _ string) (*payment.Status, error) {
	return m.status, nil
}

// --- Mock notification service ---

type mockNotificationService struct {
	mu    sync.Mutex
	calls int
}

func (m *mockNotificationService) Notify(_ context.Context, _ uint, _, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

func (m *mockNotificationService) List(_ context.Context, _ uint, _, _ int) ([]models.Notification, int64, *errors.Error) {
	return nil, 0, nil
}

func (m *mockNotificationService) MarkRead(_ context.Context, _, _ uint) *errors.Error {
	return nil
}

// --- Fixture ---

type orderFixture struct {
	orders   *mockOrderRepo
	coupons  *mockCouponService
	shipping *mockShippingService
	courier  *mockCourierGateway
	payments *mockPaymentGateway
	service  services.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders: newMockOrderRepo(),
		coupons: &mockCouponService{},
		shipping: &mockShippingService{
			decision: &services.ShippingDecision{Method: models.ShippingStandard, Fee: 0},
		},
		courier:  &mockCourierGateway{},
		payments: &mockPaymentGateway{},
	}
	products := &mockProductRepo{products: map[uint]models.Product{
		1: {ID: 1, SellerID: 10, Name: "Oud Royale", Price: 100, StockQuantity: 5, Status: models.ProductStatusPublished, WeightKg: 0.4},
		2: {ID: 2, SellerID: 11, Name: "Amber Musk", Price: 50, StockQuantity: 3, Status: models.ProductStatusPublished, WeightKg: 0.2},
	}}
	cfg := &config.Config{CommissionRate: 0.1, Currency: "SAR", CountryCode: "SA", StandardShippingFee: 0}
	f.service = services.NewOrderService(
		f.orders, products, &mockUserRepo{}, f.coupons, f.shipping,
		f.courier, f.payments, &mockNotificationService{}, nil, cfg, zap.NewNop(),
	)
	return f
}

func codRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		Items:          []models.OrderItemInput{{ProductID: 1, Quantity: 2}},
		PaymentMethod:  models.PaymentCOD,
		ShippingMethod: models.ShippingStandard,
		AddressLine:    "12 Palm St",
		City:           "Riyadh",
	}
}

// --- CreateOrder ---

func TestCreateOrderCOD(t *testing.T) {
	f := newOrderFixture()

	order, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())

	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 200.0, order.Subtotal)
	assert.Equal(t, 200.0, order.Total)
	assert.Equal(t, 200.0, order.CodAmount)
	assert.Equal(t, "SAR", order.CodCurrency)
	assert.Equal(t, "order-42", order.PaymentReference)

	assert.Equal(t, 0, f.orders.cancelAndRestoreCalls)
	assert.Equal(t, 0, f.payments.executeCalls)
	assert.Equal(t, 1, f.coupons.finalizeCalls())
}

func TestCreateOrderGatewayPayment(t *testing.T) {
	f := newOrderFixture()
	req := codRequest()
	req.PaymentMethod = models.PaymentGateway
	req.PaymentMethodID = 2

	order, appErr := f.service.CreateOrder(context.Background(), 5, req)

	assert.Nil(t, appErr)
	assert.Equal(t, 1, f.payments.executeCalls)
	assert.Equal(t, "order-42", f.payments.lastRequest.Reference)
	assert.Equal(t, 200.0, f.payments.lastRequest.Amount)
	assert.Equal(t, "inv-7", order.PaymentInvoiceID)
	assert.Equal(t, 0.0, order.CodAmount)
	assert.Equal(t, 0, f.orders.cancelAndRestoreCalls)
}

func TestCreateOrderGatewayRequiresMethodID(t *testing.T) {
	f := newOrderFixture()
	req := codRequest()
	req.PaymentMethod = models.PaymentGateway

	_, appErr := f.service.CreateOrder(context.Background(), 5, req)
	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newOrderFixture()
	req := codRequest()
	req.Items = []models.OrderItemInput{{ProductID: 1, Quantity: 0}}

	_, appErr := f.service.CreateOrder(context.Background(), 5, req)
	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture()
	req := codRequest()
	req.Items = []models.OrderItemInput{{ProductID: 1, Quantity: 99}}

	_, appErr := f.service.CreateOrder(context.Background(), 5, req)

	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
	failure, ok := appErr.Details.(models.InventoryFailure)
	assert.True(t, ok)
	assert.Len(t, failure.Issues, 1)
	assert.Equal(t, models.IssueInsufficientStock, failure.Issues[0].Reason)
	assert.Equal(t, 5, failure.Issues[0].AvailableQuantity)
}

func TestCreateOrderDeadCouponReportedBeforeStock(t *testing.T) {
	// The cart also has an unfulfillable line; the coupon failure wins
	// because code validation runs ahead of the stock checks.
	f := newOrderFixture()
	f.coupons.validateErr = errors.BadRequest("Coupon SALE10 has reached its usage limit")

	req := codRequest()
	req.Items = []models.OrderItemInput{{ProductID: 1, Quantity: 99}}
	req.CouponCodes = []string{"SALE10"}

	_, appErr := f.service.CreateOrder(context.Background(), 5, req)

	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Contains(t, appErr.Message, "SALE10")
	assert.Nil(t, appErr.Details)
}

func TestCreateOrderStockConflict(t *testing.T) {
	// A concurrent checkout won the stock between the snapshot read and the
	// reserving transaction. Nothing committed, so nothing is compensated.
	f := newOrderFixture()
	f.orders.createReservedErr = &repository.StockConflict{ProductID: 1}

	_, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())

	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
	failure, ok := appErr.Details.(models.InventoryFailure)
	assert.True(t, ok)
	assert.Equal(t, uint(1), failure.Issues[0].ProductID)
	assert.Equal(t, 0, f.orders.cancelAndRestoreCalls)
	assert.Equal(t, 0, f.coupons.finalizeCalls())
}

func TestCreateOrderCourierBookingFailureCompensates(t *testing.T) {
	f := newOrderFixture()
	f.shipping.decision = &services.ShippingDecision{
		Method: models.ShippingCourier, Fee: 18, PartnerID: "smsa",
		WarehouseCode: "WH-1", PaymentMode: "cod",
	}
	f.courier.createShipmentErr = &courier.APIError{StatusCode: 500, Message: "partner unavailable"}

	req := codRequest()
	req.ShippingMethod = models.ShippingCourier
	req.CityID = "101"
	req.CountryID = "1"
	req.CourierPartnerID = "smsa"

	_, appErr := f.service.CreateOrder(context.Background(), 5, req)

	assert.NotNil(t, appErr)
	assert.Equal(t, 502, appErr.Code)
	assert.Contains(t, appErr.Message, "partner unavailable")
	assert.Equal(t, 1, f.orders.cancelAndRestoreCalls)
	assert.Equal(t, 0, f.payments.executeCalls)
	assert.Equal(t, 0, f.coupons.finalizeCalls())
}

func TestCreateOrderPaymentFailureCompensates(t *testing.T) {
	f := newOrderFixture()
	f.payments.executeErr = &payment.APIError{StatusCode: 400, Message: "invalid method"}

	req := codRequest()
	req.PaymentMethod = models.PaymentGateway
	req.PaymentMethodID = 2

	_, appErr := f.service.CreateOrder(context.Background(), 5, req)

	assert.NotNil(t, appErr)
	assert.Equal(t, 502, appErr.Code)
	assert.Equal(t, 1, f.orders.cancelAndRestoreCalls)
	assert.Equal(t, 0, f.coupons.finalizeCalls())
}

func TestCreateOrderRecordFailureCompensates(t *testing.T) {
	f := newOrderFixture()
	f.orders.updateFieldsErr = fmt.Errorf("connection reset")

	_, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())

	assert.NotNil(t, appErr)
	assert.Equal(t, 500, appErr.Code)
	assert.Equal(t, 1, f.orders.cancelAndRestoreCalls)
}

func TestCreateOrderDeferredCourierSkipsShipment(t *testing.T) {
	f := newOrderFixture()
	f.shipping.decision = &services.ShippingDecision{
		Method: models.ShippingCourier, Fee: 0, Deferred: true,
		WarehouseCode: "WH-1", PaymentMode: "cod",
	}

	req := codRequest()
	req.ShippingMethod = models.ShippingCourier
	req.CityID = "101"
	req.CountryID = "1"
	req.DeferCourierSelection = true

	_, appErr := f.service.CreateOrder(context.Background(), 5, req)

	assert.Nil(t, appErr)
	assert.Equal(t, 1, f.courier.createOrderCalls)
	assert.Equal(t, 0, f.courier.shipmentCalls)
}

// --- SyncPayment ---

func paidStatus(ref string) *payment.Status {
	return &payment.Status{Reference: ref, InvoiceID: "inv-7", TransactionStatus: "Succss"}
}

func TestSyncPaymentPaid(t *testing.T) {
	f := newOrderFixture()
	_, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())
	assert.Nil(t, appErr)

	order, appErr := f.service.SyncPayment(context.Background(), paidStatus("order-42"))

	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, "Succss", order.PaymentStatus)
}

func TestSyncPaymentPaidIdempotent(t *testing.T) {
	f := newOrderFixture()
	_, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())
	assert.Nil(t, appErr)

	first, appErr := f.service.SyncPayment(context.Background(), paidStatus("order-42"))
	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusProcessing, first.Status)

	// Re-delivered callback: the conditional transition loses and the order
	// stays where it is.
	second, appErr := f.service.SyncPayment(context.Background(), paidStatus("order-42"))
	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusProcessing, second.Status)
}

func TestSyncPaymentFailedCancelsAndRestores(t *testing.T) {
	f := newOrderFixture()
	_, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())
	assert.Nil(t, appErr)

	status := &payment.Status{Reference: "order-42", InvoiceStatus: "Expired"}
	order, appErr := f.service.SyncPayment(context.Background(), status)

	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, 1, f.orders.cancelPendingAndRestoreCalls)
}

func TestSyncPaymentFailedAfterPaidIsNoOp(t *testing.T) {
	f := newOrderFixture()
	_, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())
	assert.Nil(t, appErr)

	_, appErr = f.service.SyncPayment(context.Background(), paidStatus("order-42"))
	assert.Nil(t, appErr)

	status := &payment.Status{Reference: "order-42", InvoiceStatus: "Failed"}
	order, appErr := f.service.SyncPayment(context.Background(), status)

	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
}

func TestSyncPaymentUnknownOrder(t *testing.T) {
	f := newOrderFixture()
	_, appErr := f.service.SyncPayment(context.Background(), paidStatus("order-999"))
	assert.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Code)
}

// --- UpdateStatus and ConfirmDelivery ---

func createTestOrder(t *testing.T, f *orderFixture) *models.Order {
	t.Helper()
	order, appErr := f.service.CreateOrder(context.Background(), 5, codRequest())
	assert.Nil(t, appErr)
	return order
}

func TestUpdateStatusSellerConfirms(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	updated, appErr := f.service.UpdateStatus(context.Background(), order.ID, 10, models.RoleSeller, models.OrderStatusProcessing)
	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)
}

func TestUpdateStatusSellerCannotCancel(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	_, appErr := f.service.UpdateStatus(context.Background(), order.ID, 10, models.RoleSeller, models.OrderStatusCancelled)
	assert.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.Code)
}

func TestUpdateStatusAdminCancelRestoresStock(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	updated, appErr := f.service.UpdateStatus(context.Background(), order.ID, 1, models.RoleAdmin, models.OrderStatusCancelled)
	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	assert.Equal(t, 1, f.orders.cancelAndRestoreCalls)
}

func TestUpdateStatusConcurrentCancelRestoresOnce(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	_, appErr := f.service.UpdateStatus(context.Background(), order.ID, 1, models.RoleAdmin, models.OrderStatusCancelled)
	assert.Nil(t, appErr)
	assert.Equal(t, 1, f.orders.cancelAndRestoreCalls)

	// A second cancel whose read raced the first one: it still sees PENDING,
	// but the conditional cancel loses and no stock moves again.
	stale := *order
	f.orders.staleRead = &stale

	_, appErr = f.service.UpdateStatus(context.Background(), order.ID, 1, models.RoleAdmin, models.OrderStatusCancelled)
	assert.NotNil(t, appErr)
	assert.Equal(t, 409, appErr.Code)
	assert.Equal(t, 1, f.orders.cancelAndRestoreCalls)
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	_, appErr := f.service.UpdateStatus(context.Background(), order.ID, 1, models.RoleAdmin, models.OrderStatusDelivered)
	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	updated, appErr := f.service.UpdateStatus(context.Background(), order.ID, 1, models.RoleAdmin, models.OrderStatusPending)
	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusPending, updated.Status)
}

func TestConfirmDelivery(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	_, appErr := f.service.UpdateStatus(context.Background(), order.ID, 10, models.RoleSeller, models.OrderStatusProcessing)
	assert.Nil(t, appErr)
	_, appErr = f.service.UpdateStatus(context.Background(), order.ID, 10, models.RoleSeller, models.OrderStatusShipped)
	assert.Nil(t, appErr)

	delivered, appErr := f.service.ConfirmDelivery(context.Background(), order.ID, 5)
	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)

	// Confirming again is a no-op.
	again, appErr := f.service.ConfirmDelivery(context.Background(), order.ID, 5)
	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderStatusDelivered, again.Status)
}

func TestConfirmDeliveryWrongBuyer(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	_, appErr := f.service.ConfirmDelivery(context.Background(), order.ID, 77)
	assert.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.Code)
}

func TestConfirmDeliveryBeforeShipped(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	_, appErr := f.service.ConfirmDelivery(context.Background(), order.ID, 5)
	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestGetOrderSellerSeesOwnItemsOnly(t *testing.T) {
	f := newOrderFixture()
	req := codRequest()
	req.Items = []models.OrderItemInput{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
	}
	order, appErr := f.service.CreateOrder(context.Background(), 5, req)
	assert.Nil(t, appErr)

	seen, appErr := f.service.GetOrder(context.Background(), order.ID, 10, models.RoleSeller)
	assert.Nil(t, appErr)
	assert.Len(t, seen.Items, 1)
	assert.Equal(t, uint(10), seen.Items[0].SellerID)
}

func TestGetOrderStrangerForbidden(t *testing.T) {
	f := newOrderFixture()
	order := createTestOrder(t, f)

	_, appErr := f.service.GetOrder(context.Background(), order.ID, 99, models.RoleBuyer)
	assert.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.Code)
}
