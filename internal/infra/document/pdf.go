package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/prescripto/prescripto-api/internal/models"
)

// ConsultationSummary renders the post-appointment summary handed to the patient.
func ConsultationSummary(ap *models.Appointment, detail *models.ConsultationDetail) ([]byte, error) {
	pdf := newDocument("Consultation Summary")

	section(pdf, "Appointment")
	row(pdf, "Appointment ID", fmt.Sprintf("%d", ap.ID))
	if ap.Doctor != nil {
		row(pdf, "Doctor", "Dr. "+ap.Doctor.Name)
		row(pdf, "Specialization", ap.Doctor.Specialization)
	}
	if ap.Patient != nil {
		row(pdf, "Patient", ap.Patient.Name)
	}
	row(pdf, "Date", ap.Date.String())
	row(pdf, "Time", ap.Time.String())

	section(pdf, "Prescription")
	pdf.SetFont("Arial", "", 10)
	for _, line := range strings.Split(detail.Medicines, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.MultiCell(0, 6, "- "+strings.TrimSpace(line), "", "L", false)
	}

	if detail.Notes != "" {
		section(pdf, "Notes")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, detail.Notes, "", "L", false)
	}

	if detail.FollowUpDays > 0 {
		section(pdf, "Follow-up")
		row(pdf, "Date", detail.FollowUpDate.String())
		row(pdf, "Reason", detail.FollowUpReason)
	}

	return output(pdf)
}

// PaymentReceipt renders the receipt attached to the payment email.
func PaymentReceipt(ap *models.Appointment, p *models.Payment) ([]byte, error) {
	pdf := newDocument("Payment Receipt")

	section(pdf, "Payment")
	row(pdf, "Receipt", fmt.Sprintf("%d", p.ID))
	row(pdf, "Transaction", p.TransactionID)
	row(pdf, "Method", string(p.Method))
	row(pdf, "Amount", fmt.Sprintf("%.2f %s", p.Amount, p.Currency))

	section(pdf, "Appointment")
	row(pdf, "Appointment ID", fmt.Sprintf("%d", ap.ID))
	if ap.Doctor != nil {
		row(pdf, "Doctor", "Dr. "+ap.Doctor.Name)
	}
	row(pdf, "Date", ap.Date.String())
	row(pdf, "Time", ap.Time.String())

	pdf.SetY(pdf.GetY() + 12)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 10, "This is a computer generated receipt", "", 1, "R", false, 0, "")

	return output(pdf)
}

func newDocument(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(95, 111, 255)
	pdf.CellFormat(0, 10, "Prescripto", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, title, "1", 1, "C", false, 0, "")
	return pdf
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 8, label, "1", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, value, "1", 1, "", false, 0, "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
