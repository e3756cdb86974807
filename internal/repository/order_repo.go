package repository

import (
	"lipa/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByReference(ref string) (*models.Order, error) {
	var o models.Order
	err := r.db.Where("reference = ?", ref).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(userID uint, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var orders []models.Order
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// ListManualCheck returns orders whose payment was user-asserted and still
// needs reconciliation against the provider.
func (r *OrderRepository) ListManualCheck(limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var orders []models.Order
	err := r.db.Where("verification_status = ?", "manual_check").Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) Update(o *models.Order) error {
	return r.db.Save(o).Error
}
