package repository

import (
	"lipa/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.PaymentRecord) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetBySessionID(sessionID string) (*models.PaymentRecord, error) {
	var p models.PaymentRecord
	err := r.db.Where("session_id = ?", sessionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.PaymentRecord) error {
	return r.db.Save(p).Error
}
