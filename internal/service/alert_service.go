package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"feather-finance/internal/dto"
	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/shopspring/decimal"
)

const maxAlertTypeLength = 50

// AlertService stores alert definitions. Evaluating them is left to consumers.
type AlertService interface {
	CreateAlert(ctx context.Context, req dto.CreateAlertRequest) (*entity.Alert, error)
	ListAlerts(ctx context.Context, userID uint, activeOnly bool) ([]entity.Alert, error)
	SetAlertActive(ctx context.Context, userID, alertID uint, active bool) (*entity.Alert, error)
}

type alertService struct {
	userRepo  repository.UserRepository
	alertRepo repository.AlertRepository
	logger    *logger.Logger
}

// NewAlertService creates a new alert service.
func NewAlertService(userRepo repository.UserRepository, alertRepo repository.AlertRepository, logger *logger.Logger) AlertService {
	return &alertService{
		userRepo:  userRepo,
		alertRepo: alertRepo,
		logger:    logger,
	}
}

func (s *alertService) CreateAlert(ctx context.Context, req dto.CreateAlertRequest) (*entity.Alert, error) {
	ticker := utils.NormalizeTicker(req.Ticker)
	alertType := strings.ToLower(strings.TrimSpace(req.AlertType))

	switch {
	case ticker == "":
		return nil, validationError("ticker is required")
	case alertType == "":
		return nil, validationError("alert_type is required")
	case utf8.RuneCountInString(alertType) > maxAlertTypeLength:
		return nil, validationError("alert_type exceeds %d characters", maxAlertTypeLength)
	}
	if req.Threshold != nil {
		if err := checkAmount("threshold", *req.Threshold); err != nil {
			return nil, err
		}
	}

	alert := &entity.Alert{
		UserID:    req.UserID,
		Ticker:    ticker,
		AlertType: entity.AlertType(alertType),
		IsActive:  true,
	}
	if req.IsActive != nil {
		alert.IsActive = *req.IsActive
	}
	if req.Threshold != nil {
		alert.Threshold = decimal.NewNullDecimal(req.Threshold.Round(pricePlaces))
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create alert", logger.ErrorField(err),
			logger.Field("user_id", req.UserID), logger.StringField("ticker", ticker))
		return nil, err
	}
	return alert, nil
}

func (s *alertService) ListAlerts(ctx context.Context, userID uint, activeOnly bool) ([]entity.Alert, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.alertRepo.ListByUser(ctx, userID, activeOnly)
}

// SetAlertActive toggles an alert owned by userID. Alerts of other users are
// reported as not found.
func (s *alertService) SetAlertActive(ctx context.Context, userID, alertID uint, active bool) (*entity.Alert, error) {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.UserID != userID {
		return nil, fmt.Errorf("alert %d: %w", alertID, repository.ErrNotFound)
	}

	if err := s.alertRepo.SetActive(ctx, alertID, active); err != nil {
		return nil, err
	}
	alert.IsActive = active
	return alert, nil
}
