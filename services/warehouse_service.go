package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/repository"

	"go.uber.org/zap"
)

var warehouseCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,64}$`)

// WarehouseService defines the interface for seller pickup locations.
type WarehouseService interface {
	Register(ctx context.Context, sellerID uint, req *models.RegisterWarehouseRequest) (*models.SellerWarehouse, *errors.Error)
	List(ctx context.Context, sellerID uint) ([]models.SellerWarehouse, *errors.Error)
	SetDefault(ctx context.Context, sellerID, warehouseID uint) *errors.Error
}

type warehouseServiceImpl struct {
	repo   repository.WarehouseRepository
	logger *zap.Logger
}

// NewWarehouseService creates a new WarehouseService.
func NewWarehouseService(repo repository.WarehouseRepository, logger *zap.Logger) WarehouseService {
	return &warehouseServiceImpl{repo: repo, logger: logger}
}

func (s *warehouseServiceImpl) Register(ctx context.Context, sellerID uint, req *models.RegisterWarehouseRequest) (*models.SellerWarehouse, *errors.Error) {
	code := strings.TrimSpace(req.Code)
	if !warehouseCodePattern.MatchString(code) {
		return nil, errors.BadRequest("Warehouse code must be 2-64 letters, digits, dashes or underscores")
	}

	phone, ok := normalizePhone(req.Phone)
	if !ok {
		return nil, errors.BadRequest("Invalid warehouse phone number")
	}

	warehouse := &models.SellerWarehouse{
		SellerID:  sellerID,
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		CityID:    strings.TrimSpace(req.CityID),
		Address:   strings.TrimSpace(req.Address),
		Phone:     phone,
		IsDefault: req.IsDefault,
	}
	if err := s.repo.Create(ctx, warehouse); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, errors.Conflict("Warehouse code already registered")
		}
		s.logger.Error("Failed to register warehouse", zap.Error(err))
		return nil, errors.Internal("Failed to register warehouse", err)
	}
	return warehouse, nil
}

func (s *warehouseServiceImpl) List(ctx context.Context, sellerID uint) ([]models.SellerWarehouse, *errors.Error) {
	warehouses, err := s.repo.FindBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to list warehouses", zap.Error(err))
		return nil, errors.Internal("Failed to list warehouses", err)
	}
	return warehouses, nil
}

func (s *warehouseServiceImpl) SetDefault(ctx context.Context, sellerID, warehouseID uint) *errors.Error {
	if err := s.repo.SetDefault(ctx, sellerID, warehouseID); err != nil {
		return errors.NotFound("Warehouse not found")
	}
	return nil
}

// normalizePhone strips separators and rewrites local Saudi numbers to the
// international form the courier gateway expects.
func normalizePhone(raw string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(cleaned, "+")
	if strings.HasPrefix(cleaned, "05") && len(cleaned) == 10 {
		cleaned = "966" + cleaned[1:]
	}
	if len(cleaned) < 9 || len(cleaned) > 15 {
		return "", false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return cleaned, true
}
