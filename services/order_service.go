package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/config"
	"github.com/otoor/marketplace-backend/gateways/courier"
	"github.com/otoor/marketplace-backend/gateways/payment"
	"github.com/otoor/marketplace-backend/kafka"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/repository"

	"go.uber.org/zap"
)

// OrderService defines the interface for the order workflow.
type OrderService interface {
	// CreateOrder runs the whole checkout: inventory validation, coupon
	// allocation, pricing, the reserving transaction, and the external
	// shipment/payment steps with compensation on failure.
	CreateOrder(ctx context.Context, buyerID uint, req *models.CreateOrderRequest) (*models.Order, *errors.Error)

	// SyncPayment applies the gateway's reported payment state to the
	// matching order. Idempotent: re-delivering a callback for an order
	// that already left PENDING is a no-op.
	SyncPayment(ctx context.Context, status *payment.Status) (*models.Order, *errors.Error)

	GetOrder(ctx context.Context, orderID, actorID uint, role string) (*models.Order, *errors.Error)
	ListMine(ctx context.Context, buyerID uint) ([]models.Order, *errors.Error)
	ListForSeller(ctx context.Context, sellerID uint) ([]models.Order, *errors.Error)
	ListAll(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, int64, *errors.Error)

	UpdateStatus(ctx context.Context, orderID, actorID uint, role string, next models.OrderStatus) (*models.Order, *errors.Error)
	ConfirmDelivery(ctx context.Context, orderID, buyerID uint) (*models.Order, *errors.Error)

	GetLabel(ctx context.Context, orderID, actorID uint, role string) (string, *errors.Error)
	GetTracking(ctx context.Context, orderID, actorID uint, role string) (*courier.Tracking, *errors.Error)
}

type orderServiceImpl struct {
	orders        repository.OrderRepository
	products      repository.ProductRepository
	users         repository.UserRepository
	coupons       CouponService
	shipping      ShippingService
	courier       courier.Gateway
	payments      payment.Gateway
	notifications NotificationService
	producer      *kafka.Producer
	cfg           *config.Config
	logger        *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	coupons CouponService,
	shipping ShippingService,
	courierGateway courier.Gateway,
	payments payment.Gateway,
	notifications NotificationService,
	producer *kafka.Producer,
	cfg *config.Config,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:        orders,
		products:      products,
		users:         users,
		coupons:       coupons,
		shipping:      shipping,
		courier:       courierGateway,
		payments:      payments,
		notifications: notifications,
		producer:      producer,
		cfg:           cfg,
		logger:        logger,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, buyerID uint, req *models.CreateOrderRequest) (*models.Order, *errors.Error) {
	lines := MergeLines(req.Items)
	if len(lines) == 0 {
		return nil, errors.BadRequest("Cart is empty")
	}
	if req.PaymentMethod == models.PaymentGateway && req.PaymentMethodID <= 0 {
		return nil, errors.BadRequest("A payment method must be selected for gateway payments")
	}

	buyer, err := s.users.FindByID(ctx, buyerID)
	if err != nil {
		return nil, errors.BadRequest("Buyer account not found")
	}

	// A dead coupon is reported before any stock check. Allocation against
	// the cart happens later, once the line snapshots exist.
	if appErr := s.coupons.ValidateCodes(ctx, req.CouponCodes); appErr != nil {
		return nil, appErr
	}

	// Snapshot read: fail fast before any write. The authoritative check is
	// the conditional decrement inside the order transaction.
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	snapshot, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load products for checkout", zap.Error(err))
		return nil, errors.Internal("Failed to validate the cart", err)
	}
	byID := make(map[uint]models.Product, len(snapshot))
	for _, p := range snapshot {
		byID[p.ID] = p
	}

	if issues := CheckInventory(lines, byID); len(issues) > 0 {
		return nil, errors.BadRequest("Some items cannot be fulfilled").
			WithDetails(models.InventoryFailure{Code: models.IssueInsufficientStock, Issues: issues})
	}

	// Line item snapshots: unit prices are captured here and never re-read.
	items := make([]models.OrderItem, 0, len(lines))
	cartLines := make([]CartLine, 0, len(lines))
	var weightKg float64
	for _, line := range lines {
		product := byID[line.ProductID]
		lineTotal := round2(product.Price * float64(line.Quantity))
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		cartLines = append(cartLines, CartLine{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			LineTotal: lineTotal,
		})
		weightKg += product.WeightKg * float64(line.Quantity)
	}

	subtotal := Subtotal(items)
	if subtotal <= 0 {
		return nil, errors.BadRequest("Order subtotal must be greater than zero")
	}

	apps, appErr := s.coupons.PrepareForOrder(ctx, req.CouponCodes, cartLines)
	if appErr != nil {
		return nil, appErr
	}
	discount := TotalDiscount(apps)

	payable := subtotal - discount
	if payable < 0 {
		payable = 0
	}

	decision, appErr := s.shipping.Resolve(ctx, req, items, weightKg, payable)
	if appErr != nil {
		return nil, appErr
	}

	breakdown, appErr := ComputePricing(subtotal, discount, decision.Fee, s.cfg.CommissionRate)
	if appErr != nil {
		return nil, appErr
	}

	codes := make([]string, 0, len(apps))
	for _, app := range apps {
		codes = append(codes, app.Code)
	}

	order := &models.Order{
		BuyerID:        buyerID,
		Status:         models.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		ShippingMethod: req.ShippingMethod,
		AddressLine:    req.AddressLine,
		City:           req.City,
		Region:         req.Region,
		Country:        defaultString(req.Country, s.cfg.CountryCode),
		CityID:         req.CityID,
		RegionID:       req.RegionID,
		CountryID:      req.CountryID,
		Subtotal:       breakdown.Subtotal,
		DiscountTotal:  breakdown.Discount,
		ShippingFee:    breakdown.ShippingFee,
		PlatformFee:    breakdown.PlatformFee,
		Total:          breakdown.Total,
		CouponCodes:    strings.Join(codes, ","),
		Items:          items,
	}
	if req.PaymentMethod == models.PaymentCOD {
		order.CodAmount = breakdown.Total
		order.CodCurrency = defaultString(req.CodCurrency, s.cfg.Currency)
	}
	if decision.Method == models.ShippingCourier {
		order.CourierPartnerID = decision.PartnerID
		order.WarehouseCode = decision.WarehouseCode
	}

	// The reserving transaction: conditional decrements plus order creation,
	// all-or-nothing. A conflict means a concurrent checkout won the stock.
	if err := s.orders.CreateReserved(ctx, order, lines); err != nil {
		var conflict *repository.StockConflict
		if stderrors.As(err, &conflict) {
			issue := models.InventoryIssue{
				ProductID:         conflict.ProductID,
				RequestedQuantity: quantityFor(lines, conflict.ProductID),
				Reason:            models.IssueInsufficientStock,
			}
			if p, ok := byID[conflict.ProductID]; ok {
				issue.Name = p.Name
			}
			return nil, errors.BadRequest("Some items cannot be fulfilled").
				WithDetails(models.InventoryFailure{Code: models.IssueInsufficientStock, Issues: []models.InventoryIssue{issue}})
		}
		s.logger.Error("Order transaction failed", zap.Error(err))
		return nil, errors.Internal("Failed to create the order", err)
	}

	reference := fmt.Sprintf("order-%d", order.ID)
	fields := map[string]interface{}{"payment_reference": reference}

	// From here the local transaction has committed. Any failure below must
	// cancel the order and restore stock; the guard runs on every exit path,
	// detached from request cancellation.
	completed := false
	defer func() {
		if completed {
			return
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		won, err := s.orders.CancelAndRestore(cctx, order.ID, lines)
		switch {
		case err != nil:
			s.logger.Error("Order compensation failed",
				zap.Uint("order_id", order.ID), zap.Error(err))
		case !won:
			s.logger.Warn("Order already cancelled, stock restore skipped",
				zap.Uint("order_id", order.ID))
		default:
			s.logger.Warn("Order compensated after external failure",
				zap.Uint("order_id", order.ID))
		}
	}()

	if decision.Method == models.ShippingCourier {
		extOrder, err := s.courier.CreateOrder(ctx, courier.OrderRequest{
			Reference:     reference,
			WarehouseCode: decision.WarehouseCode,
			CityID:        req.CityID,
			RegionID:      req.RegionID,
			CountryID:     req.CountryID,
			Address:       req.AddressLine,
			CustomerName:  buyer.Name,
			CustomerPhone: buyer.Phone,
			PaymentMode:   decision.PaymentMode,
			CodAmount:     order.CodAmount,
			CodCurrency:   order.CodCurrency,
			WeightKg:      weightKg,
			BoxCount:      1,
			OrderTotal:    breakdown.Total,
		})
		if err != nil {
			s.logger.Error("Courier order creation failed",
				zap.Uint("order_id", order.ID), zap.Error(err))
			return nil, gatewayError("Could not book the shipment", err)
		}
		fields["shipment_id"] = extOrder.OrderID
		if extOrder.TrackingNumber != "" {
			fields["tracking_number"] = extOrder.TrackingNumber
		}
		if extOrder.Status != "" {
			fields["shipment_status"] = extOrder.Status
		}

		if !decision.Deferred {
			shipment, err := s.courier.CreateShipment(ctx, extOrder.OrderID, courier.ShipmentRequest{
				CourierPartnerID: decision.PartnerID,
				WarehouseCode:    decision.WarehouseCode,
			})
			if err != nil {
				s.logger.Error("Shipment booking failed",
					zap.Uint("order_id", order.ID), zap.Error(err))
				return nil, gatewayError("Could not book the shipment", err)
			}
			fields["tracking_number"] = shipment.TrackingNumber
			if shipment.LabelURL != "" {
				fields["label_url"] = shipment.LabelURL
			}
			if shipment.Status != "" {
				fields["shipment_status"] = shipment.Status
			}
		}
	}

	if req.PaymentMethod == models.PaymentGateway {
		result, err := s.payments.ExecutePayment(ctx, payment.ExecuteRequest{
			MethodID:      req.PaymentMethodID,
			Amount:        breakdown.Total,
			Currency:      s.cfg.Currency,
			CustomerName:  buyer.Name,
			CustomerEmail: buyer.Email,
			CustomerPhone: buyer.Phone,
			Reference:     reference,
		})
		if err != nil {
			s.logger.Error("Payment initiation failed",
				zap.Uint("order_id", order.ID), zap.Error(err))
			return nil, gatewayError("Could not initiate the payment", err)
		}
		fields["payment_invoice_id"] = result.InvoiceID
		if result.PaymentID != "" {
			fields["payment_id"] = result.PaymentID
		}
		fields["payment_url"] = result.PaymentURL
		fields["payment_status"] = "Initiated"
	}

	if err := s.orders.UpdateFields(ctx, order.ID, fields); err != nil {
		s.logger.Error("Failed to record gateway references",
			zap.Uint("order_id", order.ID), zap.Error(err))
		return nil, errors.Internal("Failed to record the order's gateway references", err)
	}
	completed = true

	// Usage counters are consumed only now, after every step succeeded.
	s.coupons.Finalize(ctx, apps)

	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.notifications.Notify(nctx, buyerID, "Order received",
			fmt.Sprintf("Your order #%d has been received.", order.ID),
			map[string]interface{}{"order_id": order.ID})
	}()

	if s.producer != nil {
		s.producer.SendOrderEvent(ctx, models.OrderEvent{
			EventType: "order_created",
			OrderID:   order.ID,
			BuyerID:   buyerID,
			Status:    models.OrderStatusPending,
			Total:     breakdown.Total,
			Timestamp: time.Now(),
		})
	}

	final, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		s.logger.Warn("Failed to reload order after checkout",
			zap.Uint("order_id", order.ID), zap.Error(err))
		return order, nil
	}
	return final, nil
}

func (s *orderServiceImpl) SyncPayment(ctx context.Context, status *payment.Status) (*models.Order, *errors.Error) {
	order, err := s.orders.FindForPaymentSync(ctx, status.Reference, status.InvoiceID, status.PaymentID)
	if err != nil {
		return nil, errors.NotFound("No order matches the reported payment")
	}

	fields := map[string]interface{}{}
	if status.PaymentID != "" {
		fields["payment_id"] = status.PaymentID
	}
	if status.InvoiceID != "" && order.PaymentInvoiceID == "" {
		fields["payment_invoice_id"] = status.InvoiceID
	}
	recorded := status.TransactionStatus
	if recorded == "" {
		recorded = status.InvoiceStatus
	}
	if recorded != "" {
		fields["payment_status"] = recorded
	}

	switch {
	case status.Paid():
		won, err := s.orders.UpdateStatusIf(ctx, order.ID, models.OrderStatusPending, models.OrderStatusProcessing)
		if err != nil {
			s.logger.Error("Payment confirmation update failed",
				zap.Uint("order_id", order.ID), zap.Error(err))
			return nil, errors.Internal("Failed to confirm the payment", err)
		}
		if won {
			s.notifyStatus(ctx, order, models.OrderStatusProcessing, "Payment received",
				fmt.Sprintf("Payment for order #%d was received.", order.ID))
		}
	case status.Failed():
		won, err := s.orders.CancelPendingAndRestore(ctx, order.ID, linesFromItems(order.Items))
		if err != nil {
			s.logger.Error("Payment failure cancellation failed",
				zap.Uint("order_id", order.ID), zap.Error(err))
			return nil, errors.Internal("Failed to cancel the order", err)
		}
		if won {
			s.notifyStatus(ctx, order, models.OrderStatusCancelled, "Order canceled",
				fmt.Sprintf("Payment for order #%d failed and the order was canceled.", order.ID))
		}
	default:
		// Still pending at the gateway; just record what it reported.
	}

	if len(fields) > 0 {
		if err := s.orders.UpdateFields(ctx, order.ID, fields); err != nil {
			s.logger.Error("Failed to record payment state",
				zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}

	final, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, errors.Internal("Failed to reload the order", err)
	}
	return final, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID, actorID uint, role string) (*models.Order, *errors.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFound("Order not found")
	}
	if !canAccessOrder(order, actorID, role) {
		return nil, errors.Forbidden("You cannot view this order")
	}
	if role == models.RoleSeller && order.BuyerID != actorID {
		order.Items = sellerItems(order.Items, actorID)
	}
	return order, nil
}

func (s *orderServiceImpl) ListMine(ctx context.Context, buyerID uint) ([]models.Order, *errors.Error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		s.logger.Error("Failed to list buyer orders", zap.Error(err))
		return nil, errors.Internal("Failed to list orders", err)
	}
	return orders, nil
}

// ListForSeller returns the seller's orders with the item lists filtered to
// the seller's own lines.
func (s *orderServiceImpl) ListForSeller(ctx context.Context, sellerID uint) ([]models.Order, *errors.Error) {
	orders, err := s.orders.ListBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to list seller orders", zap.Error(err))
		return nil, errors.Internal("Failed to list orders", err)
	}
	for i := range orders {
		orders[i].Items = sellerItems(orders[i].Items, sellerID)
	}
	return orders, nil
}

func (s *orderServiceImpl) ListAll(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, int64, *errors.Error) {
	orders, total, err := s.orders.ListAll(ctx, status, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, errors.Internal("Failed to list orders", err)
	}
	return orders, total, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID, actorID uint, role string, next models.OrderStatus) (*models.Order, *errors.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFound("Order not found")
	}

	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransition(next) {
		return nil, errors.BadRequest(fmt.Sprintf("Order cannot move from %s to %s",
			order.Status.Friendly(), next.Friendly()))
	}
	if appErr := s.authorizeTransition(order, actorID, role, next); appErr != nil {
		return nil, appErr
	}

	if next == models.OrderStatusCancelled {
		won, err := s.orders.CancelAndRestore(ctx, order.ID, linesFromItems(order.Items))
		if err != nil {
			s.logger.Error("Order cancellation failed", zap.Uint("order_id", order.ID), zap.Error(err))
			return nil, errors.Internal("Failed to cancel the order", err)
		}
		if !won {
			return nil, errors.Conflict("The order changed state, reload and retry")
		}
	} else {
		won, err := s.orders.UpdateStatusIf(ctx, order.ID, order.Status, next)
		if err != nil {
			s.logger.Error("Status update failed", zap.Uint("order_id", order.ID), zap.Error(err))
			return nil, errors.Internal("Failed to update the order", err)
		}
		if !won {
			return nil, errors.Conflict("The order changed state, reload and retry")
		}
	}

	s.notifyStatus(ctx, order, next, "Order updated",
		fmt.Sprintf("Order #%d is now %s.", order.ID, next.Friendly()))

	final, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, errors.Internal("Failed to reload the order", err)
	}
	return final, nil
}

func (s *orderServiceImpl) authorizeTransition(order *models.Order, actorID uint, role string, next models.OrderStatus) *errors.Error {
	if role == models.RoleAdmin {
		return nil
	}
	switch next {
	case models.OrderStatusCancelled, models.OrderStatusRefunded:
		return errors.Forbidden("Only admins can perform this transition")
	case models.OrderStatusProcessing, models.OrderStatusShipped:
		if role == models.RoleSeller && len(sellerItems(order.Items, actorID)) > 0 {
			return nil
		}
		return errors.Forbidden("Only the order's seller can perform this transition")
	case models.OrderStatusDelivered:
		if order.BuyerID == actorID {
			return nil
		}
		return errors.Forbidden("Only the buyer can confirm delivery")
	default:
		return errors.Forbidden("Transition not allowed")
	}
}

// ConfirmDelivery moves SHIPPED -> DELIVERED for the buyer. Confirming an
// already delivered order is a no-op.
func (s *orderServiceImpl) ConfirmDelivery(ctx context.Context, orderID, buyerID uint) (*models.Order, *errors.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFound("Order not found")
	}
	if order.BuyerID != buyerID {
		return nil, errors.Forbidden("You cannot confirm this order")
	}
	if order.Status == models.OrderStatusDelivered {
		return order, nil
	}

	won, err := s.orders.UpdateStatusIf(ctx, order.ID, models.OrderStatusShipped, models.OrderStatusDelivered)
	if err != nil {
		return nil, errors.Internal("Failed to confirm delivery", err)
	}
	if !won {
		return nil, errors.BadRequest("Only shipped orders can be confirmed as delivered")
	}

	s.notifyStatus(ctx, order, models.OrderStatusDelivered, "Order delivered",
		fmt.Sprintf("Order #%d was marked as delivered.", order.ID))

	final, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, errors.Internal("Failed to reload the order", err)
	}
	return final, nil
}

func (s *orderServiceImpl) GetLabel(ctx context.Context, orderID, actorID uint, role string) (string, *errors.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", errors.NotFound("Order not found")
	}
	if !canAccessOrder(order, actorID, role) {
		return "", errors.Forbidden("You cannot view this order")
	}
	if order.ShipmentID == "" {
		return "", errors.BadRequest("The order has no courier shipment")
	}

	label, gerr := s.courier.Label(ctx, order.ShipmentID)
	if gerr != nil {
		s.logger.Error("Label fetch failed", zap.Uint("order_id", order.ID), zap.Error(gerr))
		return "", gatewayError("Could not fetch the shipping label", gerr)
	}

	if label != order.LabelURL {
		if err := s.orders.UpdateFields(ctx, order.ID, map[string]interface{}{"label_url": label}); err != nil {
			s.logger.Warn("Failed to persist refreshed label", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
	return label, nil
}

func (s *orderServiceImpl) GetTracking(ctx context.Context, orderID, actorID uint, role string) (*courier.Tracking, *errors.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFound("Order not found")
	}
	if !canAccessOrder(order, actorID, role) {
		return nil, errors.Forbidden("You cannot view this order")
	}
	if order.TrackingNumber == "" {
		return nil, errors.BadRequest("The order has no tracking number")
	}

	tracking, gerr := s.courier.Track(ctx, order.TrackingNumber)
	if gerr != nil {
		s.logger.Error("Tracking fetch failed", zap.Uint("order_id", order.ID), zap.Error(gerr))
		return nil, gatewayError("Could not fetch tracking", gerr)
	}

	fields := map[string]interface{}{}
	if tracking.Status != "" && tracking.Status != order.ShipmentStatus {
		fields["shipment_status"] = tracking.Status
	}
	if tracking.LabelURL != "" && tracking.LabelURL != order.LabelURL {
		fields["label_url"] = tracking.LabelURL
	}
	if len(fields) > 0 {
		if err := s.orders.UpdateFields(ctx, order.ID, fields); err != nil {
			s.logger.Warn("Failed to persist refreshed tracking", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
	return tracking, nil
}

func (s *orderServiceImpl) notifyStatus(ctx context.Context, order *models.Order, status models.OrderStatus, title, message string) {
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.notifications.Notify(nctx, order.BuyerID, title, message,
			map[string]interface{}{"order_id": order.ID, "status": status.Friendly()})
	}()

	if s.producer != nil {
		s.producer.SendOrderEvent(ctx, models.OrderEvent{
			EventType: "order_status_changed",
			OrderID:   order.ID,
			BuyerID:   order.BuyerID,
			Status:    status,
			Total:     order.Total,
			Timestamp: time.Now(),
		})
	}
}

// gatewayError surfaces the gateway's own message where available.
func gatewayError(fallback string, err error) *errors.Error {
	var courierErr *courier.APIError
	if stderrors.As(err, &courierErr) {
		return errors.BadGateway(fmt.Sprintf("%s: %s", fallback, courierErr.Message), err)
	}
	var paymentErr *payment.APIError
	if stderrors.As(err, &paymentErr) {
		return errors.BadGateway(fmt.Sprintf("%s: %s", fallback, paymentErr.Message), err)
	}
	return errors.BadGateway(fallback, err)
}

func canAccessOrder(order *models.Order, actorID uint, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	if order.BuyerID == actorID {
		return true
	}
	if role == models.RoleSeller {
		return len(sellerItems(order.Items, actorID)) > 0
	}
	return false
}

func sellerItems(items []models.OrderItem, sellerID uint) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.SellerID == sellerID {
			out = append(out, item)
		}
	}
	return out
}

func linesFromItems(items []models.OrderItem) []models.InventoryLine {
	lines := make([]models.InventoryLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.InventoryLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func quantityFor(lines []models.InventoryLine, productID uint) int {
	for _, line := range lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
