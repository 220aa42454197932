package payment

import (
	"context"
	"fmt"

	"github.com/prescripto/prescripto-api/internal/infra/document"
	"github.com/prescripto/prescripto-api/internal/infra/storage"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
)

// Receipts renders a payment receipt, keeps a copy in object storage and
// mails it to the patient. Failures are logged only.
type Receipts struct {
	store    storage.Store
	notifier notification.Publisher
	log      *logger.Logger
}

func NewReceipts(store storage.Store, notifier notification.Publisher, log *logger.Logger) *Receipts {
	return &Receipts{store: store, notifier: notifier, log: log}
}

func (r *Receipts) Send(ctx context.Context, ap *models.Appointment, p *models.Payment) {
	entry := r.log.WithComponent("receipt").WithField("appointment_id", ap.ID)

	pdf, err := document.PaymentReceipt(ap, p)
	if err != nil {
		entry.WithError(err).Error("receipt render failed")
		return
	}

	key := fmt.Sprintf("receipts/%d/payment-%d.pdf", ap.ID, p.ID)
	if _, err := r.store.Put(ctx, key, "application/pdf", pdf); err != nil {
		entry.WithError(err).Warn("receipt upload failed")
	}

	if ap.Patient == nil {
		return
	}
	r.notifier.Publish(notification.Message{
		To:   ap.Patient.Email,
		Name: ap.Patient.Name,
		Kind: notification.KindPaymentReceipt,
		Payload: map[string]any{
			"amount":         fmt.Sprintf("%.2f %s", p.Amount, p.Currency),
			"date":           ap.Date.String(),
			"transaction_id": p.TransactionID,
		},
		Attachment: &notification.Attachment{
			Name:        fmt.Sprintf("receipt-%d.pdf", ap.ID),
			ContentType: "application/pdf",
			Data:        pdf,
		},
	})
}
