package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := New()

	c.RecordBooking("created")
	c.RecordBooking("created")
	c.RecordBooking("slot_unavailable")
	c.RecordRefund("mercadopago", "failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.bookingsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.bookingsTotal.WithLabelValues("slot_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refundsTotal.WithLabelValues("mercadopago", "failed")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordBooking("created")
		c.RecordHTTPRequest("GET", "/x", "200", time.Millisecond)
		c.RecordNotification("reminder", "email", "sent")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.RecordCancellation("approved")

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `cancellation_transitions_total{transition="approved"} 1`)
}
