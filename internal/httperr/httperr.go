package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"invalid_request":              "Invalid request payload.",
	"invalid_date":                 "Date must be formatted as YYYY-MM-DD.",
	"invalid_time":                 "Time must be formatted as HH:MM.",
	"invalid_id":                   "Invalid identifier.",
	"invalid_state":                "The appointment is not in a state that allows this action.",
	"slot_unavailable":             "This time slot is no longer available.",
	"outside_working_hours":        "The doctor is not available at this time.",
	"in_the_past":                  "Appointments cannot be booked in the past.",
	"too_late":                     "Cancellations must be requested at least 2 hours before the appointment.",
	"no_valid_payment":             "No valid payment found for this appointment.",
	"cancellation_already_pending": "A cancellation request is already pending for this appointment.",
	"already_processed":            "This cancellation request has already been processed.",
	"already_cancelled":            "The appointment is already cancelled.",
	"refund_failed":                "The refund could not be processed. Please try again.",
	"not_owner":                    "You are not allowed to act on this resource.",
	"appointment_not_found":        "Appointment not found.",
	"request_not_found":            "Cancellation request not found.",
	"doctor_not_found":             "Doctor not found.",
	"patient_not_found":            "Patient not found.",
	"payment_not_found":            "Payment not found.",
	"timing_not_found":             "Timing not found.",
	"review_not_found":             "Review not found.",
	"already_paid":                 "This appointment has already been paid.",
	"transaction_id_required":      "A transaction id is required for card payments.",
	"payment_lookup_failed":        "The payment could not be verified with the provider.",
	"invalid_payment_method":       "Unsupported payment method.",
	"unknown_provider":             "Unknown payment provider.",
	"invalid_status":               "The requested status change is not allowed.",
	"invalid_consultation_type":    "Consultation type must be in_person or video.",
	"invalid_days":                 "Days must be a positive number.",
	"invalid_follow_up_days":       "Follow-up days cannot be negative.",
	"invalid_rating":               "Rating must be between 1 and 5.",
	"already_reviewed":             "This appointment has already been reviewed.",
	"not_completed":                "Only completed appointments can be reviewed.",
	"forbidden_role":               "Your role cannot access this resource.",
	"upload_failed":                "The file could not be stored.",
	"internal_error":               "Something went wrong.",
}

func messageFor(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond maps err onto the error taxonomy and writes it. Anything that is
// not a validation failure is attached to the gin context so the request
// logger records it.
func Respond(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		_ = c.Error(err)
		Internal(c, "internal_error", messageFor("internal_error"))
		return
	}

	if be.Kind != KindValidation {
		_ = c.Error(err)
	}

	Write(c, be.Kind.Status(), be.Code, messageFor(be.Code))
}
