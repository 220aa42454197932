package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/usecase/cancellation"
)

type CancellationHandler struct {
	request        *cancellation.RequestCancellation
	approve        *cancellation.ApproveCancellation
	reject         *cancellation.RejectCancellation
	cancelByDoctor *cancellation.CancelByDoctor
	pending        *cancellation.ListPendingCancellations
	history        *cancellation.RefundHistory
}

func NewCancellationHandler(
	request *cancellation.RequestCancellation,
	approve *cancellation.ApproveCancellation,
	reject *cancellation.RejectCancellation,
	cancelByDoctor *cancellation.CancelByDoctor,
	pending *cancellation.ListPendingCancellations,
	history *cancellation.RefundHistory,
) *CancellationHandler {
	return &CancellationHandler{
		request:        request,
		approve:        approve,
		reject:         reject,
		cancelByDoctor: cancelByDoctor,
		pending:        pending,
		history:        history,
	}
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type NotesRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// POST /appointments/:id/request-cancellation
func (h *CancellationHandler) Request(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ReasonRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.request.Execute(c.Request.Context(), session.UserID, id, req.Reason)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, created)
}

// POST /appointments/:id/cancel-by-doctor
func (h *CancellationHandler) CancelByDoctor(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ReasonRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.cancelByDoctor.Execute(c.Request.Context(), session.UserID, id, req.Reason)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Appointment cancelled.",
		"request": created,
	})
}

// POST /appointments/cancellation/:id/approve
func (h *CancellationHandler) Approve(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req NotesRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.approve.Execute(c.Request.Context(), session.UserID, id, req.Notes)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Cancellation approved and refund issued.",
		"request":             updated,
		"refundTransactionId": updated.RefundTransactionID,
	})
}

// POST /appointments/cancellation/:id/reject
func (h *CancellationHandler) Reject(c *gin.Context) {
	session := middleware.MustSession(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req NotesRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.reject.Execute(c.Request.Context(), session.UserID, id, req.Notes)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cancellation rejected.",
		"request": updated,
	})
}

func (h *CancellationHandler) Pending(c *gin.Context) {
	session := middleware.MustSession(c)

	reqs, err := h.pending.Execute(c.Request.Context(), session.UserID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, reqs)
}

// RefundHistory serves both roles; each sees the requests on its own
// appointments.
func (h *CancellationHandler) RefundHistory(c *gin.Context) {
	session := middleware.MustSession(c)

	reqs, err := h.history.Execute(c.Request.Context(), session.Role, session.UserID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, reqs)
}
