package payment

import (
	"context"

	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/models"
)

type PaymentHistory struct {
	repo domain.Repository
}

func NewPaymentHistory(repo domain.Repository) *PaymentHistory {
	return &PaymentHistory{repo: repo}
}

func (uc *PaymentHistory) Execute(ctx context.Context, patientID uint) ([]models.Payment, error) {
	payments, err := uc.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}
