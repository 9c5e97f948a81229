package repository

import (
	"context"

	"feather-finance/internal/entity"

	"gorm.io/gorm"
)

// AlertRepository defines the interface for stored alert definitions.
type AlertRepository interface {
	Create(ctx context.Context, alert *entity.Alert) error
	FindByID(ctx context.Context, id uint) (*entity.Alert, error)
	ListByUser(ctx context.Context, userID uint, activeOnly bool) ([]entity.Alert, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new instance of AlertRepository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *entity.Alert) error {
	return TranslateError(r.db.WithContext(ctx).Create(alert).Error)
}

func (r *alertRepository) FindByID(ctx context.Context, id uint) (*entity.Alert, error) {
	var alert entity.Alert
	if err := r.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &alert, nil
}

func (r *alertRepository) ListByUser(ctx context.Context, userID uint, activeOnly bool) ([]entity.Alert, error) {
	var alerts []entity.Alert
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("created_at DESC, id DESC").Find(&alerts).Error; err != nil {
		return nil, TranslateError(err)
	}
	return alerts, nil
}

func (r *alertRepository) SetActive(ctx context.Context, id uint, active bool) error {
	tx := r.db.WithContext(ctx).
		Model(&entity.Alert{}).
		Where("id = ?", id).
		Update("is_active", active)
	if tx.Error != nil {
		return TranslateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}
