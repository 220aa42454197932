package cancellation

import (
	"context"

	domain "github.com/prescripto/prescripto-api/internal/domain/cancellation"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/models"
)

type ListPendingCancellations struct {
	repo domain.Repository
}

func NewListPendingCancellations(repo domain.Repository) *ListPendingCancellations {
	return &ListPendingCancellations{repo: repo}
}

func (uc *ListPendingCancellations) Execute(
	ctx context.Context,
	doctorID uint,
) ([]models.CancellationRequest, error) {

	reqs, err := uc.repo.ListPendingForDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []models.CancellationRequest{}
	}
	return reqs, nil
}

// RefundHistory lists resolved requests visible to the caller: a doctor sees
// requests on their appointments, a patient sees their own.
type RefundHistory struct {
	repo domain.Repository
}

func NewRefundHistory(repo domain.Repository) *RefundHistory {
	return &RefundHistory{repo: repo}
}

func (uc *RefundHistory) Execute(
	ctx context.Context,
	role status.Role,
	userID uint,
) ([]models.CancellationRequest, error) {

	reqs, err := uc.repo.ListResolved(ctx, role, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []models.CancellationRequest{}
	}
	return reqs, nil
}
