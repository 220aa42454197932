package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/models"
)

type mockEmail struct{ mock.Mock }

func (m *mockEmail) SendEmail(ctx context.Context, to, subject, htmlBody string, att *Attachment) error {
	args := m.Called(to, subject, htmlBody, att)
	return args.Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, body string) error {
	args := m.Called(to, body)
	return args.Error(0)
}

type memLog struct {
	mu   sync.Mutex
	rows []models.EmailNotification
}

func (l *memLog) Record(entry models.EmailNotification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, entry)
	return nil
}

func confirmation() Message {
	return Message{
		To:    "ana@example.com",
		Phone: "+919999999999",
		Name:  "Ana",
		Kind:  KindAppointmentConfirmation,
		Payload: map[string]any{
			"doctor_name":       "Rao",
			"date":              "2024-06-03",
			"time":              "09:00",
			"consultation_type": "in_person",
		},
	}
}

func TestDispatcher_SendsEmailAndSMS(t *testing.T) {
	email := &mockEmail{}
	sms := &mockSMS{}
	journal := &memLog{}

	email.On("SendEmail", "ana@example.com", "Appointment confirmed",
		mock.MatchedBy(func(body string) bool {
			return assert.Contains(t, body, "Dr. Rao") && assert.Contains(t, body, "2024-06-03")
		}),
		(*Attachment)(nil),
	).Return(nil).Once()
	sms.On("SendSMS", "+919999999999", "Prescripto: appointment with Dr. Rao on 2024-06-03 at 09:00 confirmed.").
		Return(nil).Once()

	d := NewDispatcher(email, sms, journal, logger.Discard(), metrics.New(), 10)
	d.Publish(confirmation())
	d.Close()

	email.AssertExpectations(t)
	sms.AssertExpectations(t)
	require.Len(t, journal.rows, 2)
	assert.Equal(t, "email", journal.rows[0].Channel)
	assert.Equal(t, "sent", journal.rows[0].Status)
	assert.Equal(t, "sms", journal.rows[1].Channel)
}

func TestDispatcher_FailureIsRecordedNotPropagated(t *testing.T) {
	email := &mockEmail{}
	sms := &mockSMS{}
	journal := &memLog{}

	msg := confirmation()
	msg.Phone = ""

	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused"))

	d := NewDispatcher(email, sms, journal, logger.Discard(), nil, 10)
	d.Publish(msg)
	d.Close()

	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything)
	require.Len(t, journal.rows, 1)
	assert.Equal(t, "failed", journal.rows[0].Status)
	assert.Contains(t, journal.rows[0].Error, "connection refused")
}

func TestDispatcher_NoSMSForEmailOnlyKinds(t *testing.T) {
	email := &mockEmail{}
	sms := &mockSMS{}

	email.On("SendEmail", "doc@example.com", "Cancellation requested", mock.Anything, mock.Anything).Return(nil)

	d := NewDispatcher(email, sms, &memLog{}, logger.Discard(), nil, 10)
	d.Publish(Message{
		To:    "doc@example.com",
		Phone: "+911111111111",
		Kind:  KindCancellationRequested,
		Payload: map[string]any{
			"patient_name": "Ana",
			"date":         "2024-06-03",
			"time":         "09:00",
			"reason":       "schedule conflict",
		},
	})
	d.Close()

	email.AssertExpectations(t)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything)
}

func TestRender_UnknownKind(t *testing.T) {
	_, err := render(Message{Kind: "nope"})
	assert.Error(t, err)
}
