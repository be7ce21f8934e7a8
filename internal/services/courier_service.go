package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type CourierInput struct {
	Name     string `json:"nome" validate:"required,min=2,max=120"`
	Phone    string `json:"telefone" validate:"omitempty,max=30"`
	Login    string `json:"login" validate:"required,min=3,max=60"`
	Password string `json:"senha" validate:"required,min=6,max=72"`
}

type CourierService struct {
	store      store.Couriers
	validator  *ValidationHelper
	log        *logger.Logger
	bcryptCost int
}

func NewCourierService(st store.Couriers, v *ValidationHelper, log *logger.Logger, bcryptCost int) *CourierService {
	return &CourierService{store: st, validator: v, log: log, bcryptCost: bcryptCost}
}

// Create registers a courier. A taken login is reported as models.ErrConflict.
func (s *CourierService) Create(ctx context.Context, in CourierInput) (*models.Courier, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Login = strings.TrimSpace(in.Login)
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	c := &models.Courier{
		Name:         in.Name,
		Phone:        strings.TrimSpace(in.Phone),
		Login:        in.Login,
		PasswordHash: hash,
	}
	if err := s.store.CreateCourier(ctx, c); err != nil {
		return nil, asPersistence("create courier", err)
	}

	s.log.Info("courier created", "courier_id", c.ID, "login", c.Login)
	return c, nil
}

func (s *CourierService) List(ctx context.Context) ([]models.Courier, error) {
	couriers, err := s.store.Couriers(ctx)
	if err != nil {
		return nil, asPersistence("list couriers", err)
	}
	return couriers, nil
}

// Delete removes the courier together with its entries and totals.
func (s *CourierService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCourier(ctx, id); err != nil {
		return asPersistence("delete courier", err)
	}
	s.log.Info("courier deleted", "courier_id", id)
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
