package cancellation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
)

func TestApprove(t *testing.T) {
	now := time.Now()
	req := &models.CancellationRequest{Status: status.RequestPending}

	require.NoError(t, Approve(req, "ok", "re_1", now))
	assert.Equal(t, status.RequestApproved, req.Status)
	assert.Equal(t, "ok", req.Notes)
	assert.Equal(t, "re_1", req.RefundTransactionID)
	assert.Equal(t, &now, req.ApprovedAt)

	err := Approve(req, "again", "re_2", now)
	assert.True(t, httperr.IsBusiness(err, "already_processed"))
	assert.Equal(t, "re_1", req.RefundTransactionID)
}

func TestReject_AfterApprove(t *testing.T) {
	req := &models.CancellationRequest{Status: status.RequestApproved}
	assert.True(t, httperr.IsBusiness(Reject(req, "no"), "already_processed"))
}

func TestHoldAndRelease(t *testing.T) {
	p := &models.Payment{Status: status.PaymentCompleted}

	require.NoError(t, HoldRefund(p))
	assert.Equal(t, status.PaymentRefundPending, p.Status)
	require.NoError(t, HoldRefund(p))
	assert.Equal(t, status.PaymentRefundPending, p.Status)

	ReleaseHold(p)
	assert.Equal(t, status.PaymentCompleted, p.Status)

	pending := &models.Payment{Status: status.PaymentPending}
	require.NoError(t, HoldRefund(pending))
	assert.Equal(t, status.PaymentPending, pending.Status)
}

func TestMarkRefunded_FromAnyState(t *testing.T) {
	for _, s := range []status.Payment{status.PaymentPending, status.PaymentFailed, status.PaymentCompleted} {
		p := &models.Payment{Status: s}
		MarkRefunded(p, time.Now())
		assert.Equal(t, status.PaymentRefunded, p.Status)
		assert.NotNil(t, p.RefundedAt)
	}
}
