// Package testutil holds an in-memory store that satisfies the repository
// contracts of the appointment, cancellation and payment use cases.
// Transactions serialize on one mutex and roll back on error.
package testutil

import (
	"context"
	"sort"
	"sync"

	appointment "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/cancellation"
	"github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
)

type Store struct {
	mu sync.Mutex

	Doctors       map[uint]models.Doctor
	Patients      map[uint]models.Patient
	Timings       []models.DoctorTiming
	Appointments  map[uint]models.Appointment
	Payments      map[uint]models.Payment // keyed by appointment id
	Requests      map[uint]models.CancellationRequest
	Consultations map[uint]models.ConsultationDetail

	seq uint
}

func NewStore() *Store {
	return &Store{
		Doctors:       map[uint]models.Doctor{},
		Patients:      map[uint]models.Patient{},
		Appointments:  map[uint]models.Appointment{},
		Payments:      map[uint]models.Payment{},
		Requests:      map[uint]models.CancellationRequest{},
		Consultations: map[uint]models.ConsultationDetail{},
		seq:           100,
	}
}

func (s *Store) next() uint {
	s.seq++
	return s.seq
}

type snapshot struct {
	appointments  map[uint]models.Appointment
	payments      map[uint]models.Payment
	requests      map[uint]models.CancellationRequest
	consultations map[uint]models.ConsultationDetail
	seq           uint
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) save() snapshot {
	return snapshot{
		appointments:  copyMap(s.Appointments),
		payments:      copyMap(s.Payments),
		requests:      copyMap(s.Requests),
		consultations: copyMap(s.Consultations),
		seq:           s.seq,
	}
}

func (s *Store) restore(snap snapshot) {
	s.Appointments = snap.appointments
	s.Payments = snap.payments
	s.Requests = snap.requests
	s.Consultations = snap.consultations
	s.seq = snap.seq
}

func (s *Store) tx(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.save()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// view runs fn under the store lock unless the caller already holds it.
type view struct {
	s    *Store
	inTx bool
}

func (v view) do(fn func()) {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	fn()
}

// --------------------------------------------------
// Shared row helpers (caller holds the lock)
// --------------------------------------------------

func (s *Store) hydrate(ap models.Appointment) *models.Appointment {
	if d, ok := s.Doctors[ap.DoctorID]; ok {
		ap.Doctor = &d
	}
	if p, ok := s.Patients[ap.PatientID]; ok {
		ap.Patient = &p
	}
	return &ap
}

func (s *Store) appointment(id uint) (*models.Appointment, error) {
	ap, ok := s.Appointments[id]
	if !ok {
		return nil, httperr.ErrNotFound("appointment_not_found")
	}
	return s.hydrate(ap), nil
}

func (s *Store) putAppointment(ap *models.Appointment) {
	row := *ap
	row.Doctor, row.Patient, row.Payment = nil, nil, nil
	s.Appointments[row.ID] = row
}

func (s *Store) payment(appointmentID uint) (*models.Payment, error) {
	p, ok := s.Payments[appointmentID]
	if !ok {
		return nil, httperr.ErrNotFound("payment_not_found")
	}
	return &p, nil
}

func (s *Store) putPayment(p *models.Payment) {
	if p.ID == 0 {
		p.ID = s.next()
	}
	s.Payments[p.AppointmentID] = *p
}

// ======================================================
// Appointment repository
// ======================================================

type AppointmentRepo struct{ view }

func (s *Store) AppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{view{s: s}}
}

func (r *AppointmentRepo) Transaction(ctx context.Context, fn func(tx appointment.Repository) error) error {
	return r.s.tx(func() error {
		return fn(&AppointmentRepo{view{s: r.s, inTx: true}})
	})
}

func (r *AppointmentRepo) GetDoctor(ctx context.Context, id uint) (doc *models.Doctor, err error) {
	r.do(func() {
		d, ok := r.s.Doctors[id]
		if !ok {
			err = httperr.ErrNotFound("doctor_not_found")
			return
		}
		doc = &d
	})
	return
}

func (r *AppointmentRepo) GetPatient(ctx context.Context, id uint) (pat *models.Patient, err error) {
	r.do(func() {
		p, ok := r.s.Patients[id]
		if !ok {
			err = httperr.ErrNotFound("patient_not_found")
			return
		}
		pat = &p
	})
	return
}

func (r *AppointmentRepo) GetTiming(ctx context.Context, doctorID uint, dayOfWeek string) (t *models.DoctorTiming, err error) {
	r.do(func() {
		var match []models.DoctorTiming
		for _, tm := range r.s.Timings {
			if tm.DoctorID == doctorID && tm.DayOfWeek == dayOfWeek {
				match = append(match, tm)
			}
		}
		if len(match) == 0 {
			err = httperr.ErrNotFound("timing_not_found")
			return
		}
		sort.Slice(match, func(i, j int) bool { return match[i].ID < match[j].ID })
		t = &match[0]
	})
	return
}

func (r *AppointmentRepo) active(doctorID uint, date calendar.Date) []models.Appointment {
	var out []models.Appointment
	for _, ap := range r.s.Appointments {
		if ap.DoctorID == doctorID && ap.Date == date && ap.Status.Occupies() {
			out = append(out, ap)
		}
	}
	return out
}

func (r *AppointmentRepo) ListBookedTimes(ctx context.Context, doctorID uint, date calendar.Date) (times []calendar.Clock, err error) {
	r.do(func() {
		for _, ap := range r.active(doctorID, date) {
			times = append(times, ap.Time)
		}
	})
	return
}

func (r *AppointmentRepo) LockActiveAtSlot(ctx context.Context, doctorID uint, date calendar.Date, at calendar.Clock) (rows []models.Appointment, err error) {
	r.do(func() {
		for _, ap := range r.active(doctorID, date) {
			if ap.Time == at {
				rows = append(rows, ap)
			}
		}
	})
	return
}

func (r *AppointmentRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) (err error) {
	r.do(func() {
		for _, other := range r.active(ap.DoctorID, ap.Date) {
			if other.Time == ap.Time {
				err = httperr.ErrBusiness("slot_unavailable")
				return
			}
		}
		ap.ID = r.s.next()
		r.s.putAppointment(ap)
	})
	return
}

func (r *AppointmentRepo) GetAppointment(ctx context.Context, id uint) (ap *models.Appointment, err error) {
	r.do(func() {
		ap, err = r.s.appointment(id)
		if err == nil {
			if p, ok := r.s.Payments[id]; ok {
				ap.Payment = &p
			}
		}
	})
	return
}

func (r *AppointmentRepo) GetAppointmentForUpdate(ctx context.Context, id uint) (ap *models.Appointment, err error) {
	r.do(func() { ap, err = r.s.appointment(id) })
	return
}

func (r *AppointmentRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	r.do(func() { r.s.putAppointment(ap) })
	return nil
}

func (r *AppointmentRepo) SaveConsultation(ctx context.Context, detail *models.ConsultationDetail) error {
	r.do(func() {
		if detail.ID == 0 {
			detail.ID = r.s.next()
		}
		r.s.Consultations[detail.AppointmentID] = *detail
	})
	return nil
}

func (r *AppointmentRepo) ListAppointments(ctx context.Context, f appointment.ListFilter) (out []models.Appointment, err error) {
	r.do(func() {
		for _, ap := range r.s.Appointments {
			if f.DoctorID != 0 && ap.DoctorID != f.DoctorID {
				continue
			}
			if f.PatientID != 0 && ap.PatientID != f.PatientID {
				continue
			}
			if f.Status != "" && ap.Status != f.Status {
				continue
			}
			if f.Date != nil && ap.Date != *f.Date {
				continue
			}
			out = append(out, *r.s.hydrate(ap))
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	})
	return
}

// ======================================================
// Cancellation repository
// ======================================================

type CancellationRepo struct{ view }

func (s *Store) CancellationRepo() *CancellationRepo {
	return &CancellationRepo{view{s: s}}
}

func (r *CancellationRepo) Transaction(ctx context.Context, fn func(tx cancellation.Repository) error) error {
	return r.s.tx(func() error {
		return fn(&CancellationRepo{view{s: r.s, inTx: true}})
	})
}

func (r *CancellationRepo) GetAppointmentForUpdate(ctx context.Context, id uint) (ap *models.Appointment, err error) {
	r.do(func() { ap, err = r.s.appointment(id) })
	return
}

func (r *CancellationRepo) GetPaymentForUpdate(ctx context.Context, appointmentID uint) (p *models.Payment, err error) {
	r.do(func() { p, err = r.s.payment(appointmentID) })
	return
}

func (r *CancellationRepo) GetRequestForUpdate(ctx context.Context, id uint) (req *models.CancellationRequest, err error) {
	r.do(func() {
		row, ok := r.s.Requests[id]
		if !ok {
			err = httperr.ErrNotFound("request_not_found")
			return
		}
		req = &row
	})
	return
}

func (r *CancellationRepo) GetPendingRequestForUpdate(ctx context.Context, appointmentID uint) (req *models.CancellationRequest, err error) {
	r.do(func() {
		for _, row := range r.s.Requests {
			if row.AppointmentID != appointmentID || row.Status != status.RequestPending {
				continue
			}
			if req == nil || row.ID < req.ID {
				row := row
				req = &row
			}
		}
	})
	return
}

func (r *CancellationRepo) HasPendingRequest(ctx context.Context, appointmentID uint) (pending bool, err error) {
	r.do(func() {
		for _, req := range r.s.Requests {
			if req.AppointmentID == appointmentID && req.Status == status.RequestPending {
				pending = true
				return
			}
		}
	})
	return
}

func (r *CancellationRepo) CreateRequest(ctx context.Context, req *models.CancellationRequest) error {
	r.do(func() {
		req.ID = r.s.next()
		row := *req
		row.Appointment = nil
		r.s.Requests[row.ID] = row
	})
	return nil
}

func (r *CancellationRepo) UpdateRequest(ctx context.Context, req *models.CancellationRequest) error {
	r.do(func() {
		row := *req
		row.Appointment = nil
		r.s.Requests[row.ID] = row
	})
	return nil
}

func (r *CancellationRepo) UpdatePayment(ctx context.Context, p *models.Payment) error {
	r.do(func() { r.s.putPayment(p) })
	return nil
}

func (r *CancellationRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	r.do(func() { r.s.putAppointment(ap) })
	return nil
}

func (r *CancellationRepo) list(keep func(models.CancellationRequest, models.Appointment) bool) []models.CancellationRequest {
	var out []models.CancellationRequest
	for _, req := range r.s.Requests {
		ap, ok := r.s.Appointments[req.AppointmentID]
		if !ok || !keep(req, ap) {
			continue
		}
		req.Appointment = r.s.hydrate(ap)
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *CancellationRepo) ListPendingForDoctor(ctx context.Context, doctorID uint) (out []models.CancellationRequest, err error) {
	r.do(func() {
		out = r.list(func(req models.CancellationRequest, ap models.Appointment) bool {
			return req.Status == status.RequestPending && ap.DoctorID == doctorID
		})
	})
	return
}

func (r *CancellationRepo) ListResolved(ctx context.Context, role status.Role, userID uint) (out []models.CancellationRequest, err error) {
	r.do(func() {
		out = r.list(func(req models.CancellationRequest, ap models.Appointment) bool {
			if req.Status == status.RequestPending {
				return false
			}
			if role == status.RoleDoctor {
				return ap.DoctorID == userID
			}
			return ap.PatientID == userID
		})
	})
	return
}

// ======================================================
// Payment repository
// ======================================================

type PaymentRepo struct{ view }

func (s *Store) PaymentRepo() *PaymentRepo {
	return &PaymentRepo{view{s: s}}
}

func (r *PaymentRepo) Transaction(ctx context.Context, fn func(tx payment.Repository) error) error {
	return r.s.tx(func() error {
		return fn(&PaymentRepo{view{s: r.s, inTx: true}})
	})
}

func (r *PaymentRepo) GetAppointmentForUpdate(ctx context.Context, id uint) (ap *models.Appointment, err error) {
	r.do(func() { ap, err = r.s.appointment(id) })
	return
}

func (r *PaymentRepo) FindPaymentForUpdate(ctx context.Context, appointmentID uint) (p *models.Payment, err error) {
	r.do(func() { p, err = r.s.payment(appointmentID) })
	return
}

func (r *PaymentRepo) FindPaymentByTransaction(ctx context.Context, transactionID string) (p *models.Payment, err error) {
	r.do(func() {
		for _, row := range r.s.Payments {
			if row.TransactionID == transactionID {
				p = &row
				return
			}
		}
		err = httperr.ErrNotFound("payment_not_found")
	})
	return
}

func (r *PaymentRepo) SavePayment(ctx context.Context, p *models.Payment) error {
	r.do(func() { r.s.putPayment(p) })
	return nil
}

func (r *PaymentRepo) ListForPatient(ctx context.Context, patientID uint) (out []models.Payment, err error) {
	r.do(func() {
		for apID, p := range r.s.Payments {
			if ap, ok := r.s.Appointments[apID]; ok && ap.PatientID == patientID {
				out = append(out, p)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	})
	return
}

var (
	_ appointment.Repository  = (*AppointmentRepo)(nil)
	_ cancellation.Repository = (*CancellationRepo)(nil)
	_ payment.Repository      = (*PaymentRepo)(nil)
)
