package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

type rendered struct {
	Subject string
	HTML    string
	SMS     string
}

type emailTemplate struct {
	subject string
	body    *template.Template
	sms     string
}

const layout = `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
<h2 style="color:#5f6fff">Prescripto</h2>
<p>Hello {{.Name}},</p>
{{template "content" .}}
<p style="color:#888;font-size:12px">This is an automated message, please do not reply.</p>
</div>`

func mustTemplate(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(layout))
	return template.Must(t.New("content").Parse(content))
}

var templates = map[Kind]emailTemplate{
	KindAppointmentConfirmation: {
		subject: "Appointment confirmed",
		body: mustTemplate(`<p>Your appointment with Dr. {{.P.doctor_name}} is booked for
<b>{{.P.date}}</b> at <b>{{.P.time}}</b> ({{.P.consultation_type}}).</p>`),
		sms: "Prescripto: appointment with Dr. %s on %s at %s confirmed.",
	},
	KindReminder: {
		subject: "Appointment reminder",
		body: mustTemplate(`<p>This is a reminder of your appointment with Dr. {{.P.doctor_name}}
on <b>{{.P.date}}</b> at <b>{{.P.time}}</b>.</p>`),
		sms: "Prescripto reminder: appointment with Dr. %s on %s at %s.",
	},
	KindCancellationRequested: {
		subject: "Cancellation requested",
		body: mustTemplate(`<p>{{.P.patient_name}} asked to cancel the appointment on
<b>{{.P.date}}</b> at <b>{{.P.time}}</b>.</p><p>Reason: {{.P.reason}}</p>
<p>Please approve or reject the request from your dashboard.</p>`),
	},
	KindCancellationApproved: {
		subject: "Cancellation approved",
		body: mustTemplate(`<p>Your cancellation for <b>{{.P.date}}</b> at <b>{{.P.time}}</b> was approved.
A refund of {{.P.refund_amount}} has been issued (reference {{.P.refund_reference}}).</p>`),
	},
	KindCancellationRejected: {
		subject: "Cancellation rejected",
		body: mustTemplate(`<p>Your cancellation for <b>{{.P.date}}</b> at <b>{{.P.time}}</b> was not approved.
The appointment remains scheduled.</p>{{if .P.notes}}<p>Notes: {{.P.notes}}</p>{{end}}`),
	},
	KindCancelledByDoctor: {
		subject: "Appointment cancelled",
		body: mustTemplate(`<p>Dr. {{.P.doctor_name}} had to cancel your appointment on
<b>{{.P.date}}</b> at <b>{{.P.time}}</b>.</p><p>Reason: {{.P.reason}}</p>
{{if .P.refund_amount}}<p>A refund of {{.P.refund_amount}} has been issued.</p>{{end}}`),
		sms: "Prescripto: Dr. %s cancelled your appointment on %s at %s.",
	},
	KindPaymentReceipt: {
		subject: "Payment receipt",
		body: mustTemplate(`<p>We received your payment of <b>{{.P.amount}}</b> for the appointment on
<b>{{.P.date}}</b>. Transaction: {{.P.transaction_id}}.</p>`),
	},
	KindConsultation: {
		subject: "Your consultation summary",
		body: mustTemplate(`<p>Dr. {{.P.doctor_name}} has shared the summary of your consultation.</p>
{{if .P.follow_up_date}}<p>Follow-up on <b>{{.P.follow_up_date}}</b>.</p>{{end}}
<p>The full summary is attached.</p>`),
	},
}

func render(msg Message) (rendered, error) {
	tpl, ok := templates[msg.Kind]
	if !ok {
		return rendered{}, fmt.Errorf("no template for %q", msg.Kind)
	}

	var buf bytes.Buffer
	data := map[string]any{"Name": msg.Name, "P": msg.Payload}
	if err := tpl.body.ExecuteTemplate(&buf, "layout", data); err != nil {
		return rendered{}, fmt.Errorf("render %q: %w", msg.Kind, err)
	}

	out := rendered{Subject: tpl.subject, HTML: buf.String()}
	if tpl.sms != "" {
		out.SMS = fmt.Sprintf(tpl.sms, msg.Payload["doctor_name"], msg.Payload["date"], msg.Payload["time"])
	}
	return out, nil
}
