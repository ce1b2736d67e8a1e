package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/otoor/marketplace-backend/config"
	"github.com/otoor/marketplace-backend/gateways/courier"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// --- Mock warehouse repository ---

type mockWarehouseRepo struct {
	warehouses map[uint]*models.SellerWarehouse
	defaults   map[uint]*models.SellerWarehouse
	bySeller   map[uint][]models.SellerWarehouse
}

func newMockWarehouseRepo() *mockWarehouseRepo {
	return &mockWarehouseRepo{
		warehouses: make(map[uint]*models.SellerWarehouse),
		defaults:   make(map[uint]*models.SellerWarehouse),
		bySeller:   make(map[uint][]models.SellerWarehouse),
	}
}

func (m *mockWarehouseRepo) Create(_ context.Context, _ *models.SellerWarehouse) error { return nil }

func (m *mockWarehouseRepo) FindByID(_ context.Context, id uint) (*models.SellerWarehouse, error) {
	wh, ok := m.warehouses[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	return wh, nil
}

func (m *mockWarehouseRepo) FindBySeller(_ context.Context, sellerID uint) ([]models.SellerWarehouse, error) {
	return m.bySeller[sellerID], nil
}

func (m *mockWarehouseRepo) FindDefaultBySeller(_ context.Context, sellerID uint) (*models.SellerWarehouse, error) {
	wh, ok := m.defaults[sellerID]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	return wh, nil
}

func (m *mockWarehouseRepo) SetDefault(_ context.Context, _, _ uint) error { return nil }

// --- Mock quoting gateway ---

type mockQuoteGateway struct {
	mockCourierGateway
	quotes    []courier.Quote
	quotesErr error
	requests  []courier.QuoteRequest
}

func (m *mockQuoteGateway) QuoteCouriers(_ context.Context, req courier.QuoteRequest) ([]courier.Quote, error) {
	m.requests = append(m.requests, req)
	if m.quotesErr != nil {
		return nil, m.quotesErr
	}
	return m.quotes, nil
}

// --- Fixture ---

type shippingFixture struct {
	gateway    *mockQuoteGateway
	warehouses *mockWarehouseRepo
	service    services.ShippingService
}

func newShippingFixture() *shippingFixture {
	f := &shippingFixture{
		gateway:    &mockQuoteGateway{},
		warehouses: newMockWarehouseRepo(),
	}
	cfg := &config.Config{StandardShippingFee: 0, ExpressShippingFee: 35}
	f.service = services.NewShippingService(f.gateway, f.warehouses, nil, cfg, zap.NewNop())
	return f
}

func courierRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		PaymentMethod:    models.PaymentCOD,
		ShippingMethod:   models.ShippingCourier,
		AddressLine:      "12 Palm St",
		City:             "Riyadh",
		CityID:           "101",
		RegionID:         "5",
		CountryID:        "1",
		CourierPartnerID: "smsa",
	}
}

func singleSellerItems() []models.OrderItem {
	return []models.OrderItem{{ProductID: 1, SellerID: 10, Quantity: 1, LineTotal: 100}}
}

func TestResolveStandardAndExpress(t *testing.T) {
	f := newShippingFixture()

	standard, appErr := f.service.Resolve(context.Background(),
		&models.CreateOrderRequest{ShippingMethod: models.ShippingStandard}, nil, 0, 100)
	assert.Nil(t, appErr)
	assert.Equal(t, 0.0, standard.Fee)

	express, appErr := f.service.Resolve(context.Background(),
		&models.CreateOrderRequest{ShippingMethod: models.ShippingExpress}, nil, 0, 100)
	assert.Nil(t, appErr)
	assert.Equal(t, 35.0, express.Fee)
}

func TestResolveCourierRequiresLocationIDs(t *testing.T) {
	f := newShippingFixture()
	req := courierRequest()
	req.RegionID = ""

	_, appErr := f.service.Resolve(context.Background(), req, singleSellerItems(), 0.5, 100)
	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestResolveCourierRequiresPartnerOrDefer(t *testing.T) {
	f := newShippingFixture()
	req := courierRequest()
	req.CourierPartnerID = ""

	_, appErr := f.service.Resolve(context.Background(), req, singleSellerItems(), 0.5, 100)
	assert.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestResolveCourierUsesSellerDefaultWarehouse(t *testing.T) {
	f := newShippingFixture()
	f.warehouses.defaults[10] = &models.SellerWarehouse{ID: 1, SellerID: 10, Code: "WH-RYD", CityID: "201"}
	f.gateway.quotes = []courier.Quote{
		{PartnerID: "smsa", Name: "SMSA", Rate: 18, SupportsCOD: true, SupportsPrepaid: true},
	}

	decision, appErr := f.service.Resolve(context.Background(), courierRequest(), singleSellerItems(), 0.5, 100)

	assert.Nil(t, appErr)
	assert.Equal(t, "smsa", decision.PartnerID)
	assert.Equal(t, 18.0, decision.Fee)
	assert.Equal(t, "WH-RYD", decision.WarehouseCode)
	assert.Equal(t, "201", decision.OriginCityID)
	assert.Equal(t, "cod", decision.PaymentMode)

	// The validating quote originated from the warehouse city.
	assert.Len(t, f.gateway.requests, 1)
	assert.Equal(t, "201", f.gateway.requests[0].OriginCityID)
	assert.Equal(t, "101", f.gateway.requests[0].DestinationCityID)
}

func TestResolveCourierMultiSellerNeedsExplicitWarehouse(t *testing.T) {
	f := newShippingFixture()
	items := []models.OrderItem{
		{ProductID: 1, SellerID: 10, LineTotal: 100},
		{ProductID: 2, SellerID: 11, LineTotal: 50},
	}

	_, appErr := f.service.Resolve(context.Background(), courierRequest(), items, 0.5, 150)
	assert.NotNil(t, appErr)
	assert.Equal(t, 422, appErr.Code)
}

func TestResolveCourierUnknownPartnerRejected(t *testing.T) {
	f := newShippingFixture()
	f.warehouses.defaults[10] = &models.SellerWarehouse{ID: 1, SellerID: 10, Code: "WH-RYD", CityID: "201"}
	f.gateway.quotes = []courier.Quote{
		{PartnerID: "aramex", Rate: 20, SupportsCOD: true, SupportsPrepaid: true},
	}

	_, appErr := f.service.Resolve(context.Background(), courierRequest(), singleSellerItems(), 0.5, 100)
	assert.NotNil(t, appErr)
	assert.Equal(t, 422, appErr.Code)
}

func TestResolveCourierCODUnsupportedRejected(t *testing.T) {
	f := newShippingFixture()
	f.warehouses.defaults[10] = &models.SellerWarehouse{ID: 1, SellerID: 10, Code: "WH-RYD", CityID: "201"}
	f.gateway.quotes = []courier.Quote{
		{PartnerID: "smsa", Rate: 18, SupportsCOD: false, SupportsPrepaid: true},
	}

	_, appErr := f.service.Resolve(context.Background(), courierRequest(), singleSellerItems(), 0.5, 100)
	assert.NotNil(t, appErr)
	assert.Equal(t, 422, appErr.Code)
	assert.Contains(t, appErr.Message, "cash on delivery")
}

func TestResolveCourierAmountWindow(t *testing.T) {
	f := newShippingFixture()
	f.warehouses.defaults[10] = &models.SellerWarehouse{ID: 1, SellerID: 10, Code: "WH-RYD", CityID: "201"}
	f.gateway.quotes = []courier.Quote{
		{PartnerID: "smsa", Rate: 18, SupportsCOD: true, SupportsPrepaid: true, MinAmount: 50, MaxAmount: 500},
	}

	_, appErr := f.service.Resolve(context.Background(), courierRequest(), singleSellerItems(), 0.5, 30)
	assert.NotNil(t, appErr)
	assert.Equal(t, 422, appErr.Code)

	_, appErr = f.service.Resolve(context.Background(), courierRequest(), singleSellerItems(), 0.5, 900)
	assert.NotNil(t, appErr)
	assert.Equal(t, 422, appErr.Code)

	decision, appErr := f.service.Resolve(context.Background(), courierRequest(), singleSellerItems(), 0.5, 100)
	assert.Nil(t, appErr)
	assert.Equal(t, "smsa", decision.PartnerID)
}

func TestResolveCourierDeferredSkipsQuote(t *testing.T) {
	f := newShippingFixture()
	f.warehouses.defaults[10] = &models.SellerWarehouse{ID: 1, SellerID: 10, Code: "WH-RYD", CityID: "201"}

	req := courierRequest()
	req.CourierPartnerID = ""
	req.DeferCourierSelection = true

	decision, appErr := f.service.Resolve(context.Background(), req, singleSellerItems(), 0.5, 100)

	assert.Nil(t, appErr)
	assert.True(t, decision.Deferred)
	assert.Empty(t, decision.PartnerID)
	assert.Empty(t, f.gateway.requests)
}

func TestResolveCourierExplicitWarehouse(t *testing.T) {
	f := newShippingFixture()
	f.warehouses.warehouses[7] = &models.SellerWarehouse{ID: 7, SellerID: 10, Code: "WH-JED", CityID: "301"}
	f.gateway.quotes = []courier.Quote{
		{PartnerID: "smsa", Rate: 25, SupportsCOD: true, SupportsPrepaid: true},
	}

	req := courierRequest()
	id := uint(7)
	req.WarehouseID = &id

	decision, appErr := f.service.Resolve(context.Background(), req, singleSellerItems(), 0.5, 100)
	assert.Nil(t, appErr)
	assert.Equal(t, "WH-JED", decision.WarehouseCode)
}

func TestResolveCourierFallsBackToOnlyWarehouse(t *testing.T) {
	f := newShippingFixture()
	f.warehouses.bySeller[10] = []models.SellerWarehouse{
		{ID: 3, SellerID: 10, Code: "WH-ONLY", CityID: "401"},
	}
	f.gateway.quotes = []courier.Quote{
		{PartnerID: "smsa", Rate: 18, SupportsCOD: true, SupportsPrepaid: true},
	}

	decision, appErr := f.service.Resolve(context.Background(), courierRequest(), singleSellerItems(), 0.5, 100)
	assert.Nil(t, appErr)
	assert.Equal(t, "WH-ONLY", decision.WarehouseCode)
}
