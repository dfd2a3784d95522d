package scheduling

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/store"
	apperrors "github.com/ccsfp/clinic-api/pkg/errors"
	"github.com/ccsfp/clinic-api/pkg/lock"
)

// Stored field names of the appointments collection.
const (
	fieldStudentID = "studentId"
	fieldLastName  = "lastName"
	fieldFirstName = "firstName"
	fieldEmail     = "email"
	fieldConcern   = "concern"
	fieldNurse     = "nurse"
	fieldDateTime  = "dateTime"
	fieldStatus    = "status"
)

// Service is the booking conflict engine. Two invariants hold over
// non-Rejected appointments: at most one per (nurse, dateTime), and at most
// one per (studentId, calendar date). Rejected appointments free both.
type Service struct {
	store  store.Store
	locker lock.Locker
}

func NewService(st store.Store, locker lock.Locker) *Service {
	return &Service{store: st, locker: locker}
}

// Create checks the slot invariant, then the daily invariant, and only then
// inserts. The check-then-insert is serialized under the slot key and the
// student/day key; the store is untouched on any failure.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (uuid.UUID, error) {
	date := datePart(req.DateTime)
	startOfDay := date + "T00:00"
	endOfDay := date + "T23:59"

	release, err := s.locker.Acquire(ctx,
		"slot:"+req.Nurse+"|"+req.DateTime,
		"day:"+req.StudentID+"|"+date,
	)
	if err != nil {
		return uuid.Nil, apperrors.Internal(err)
	}
	defer release()

	_, err = s.store.FindOne(ctx, store.CollectionAppointments, store.Filter{
		store.Eq(fieldNurse, store.Text(req.Nurse)),
		store.Eq(fieldDateTime, store.Text(req.DateTime)),
		store.Ne(fieldStatus, store.Text(string(model.AppointmentStatusRejected))),
	})
	if err == nil {
		return uuid.Nil, apperrors.SlotTaken("Time slot already booked for this nurse.")
	}
	if !errors.Is(err, store.ErrNoRecord) {
		return uuid.Nil, apperrors.Internal(err)
	}

	_, err = s.store.FindOne(ctx, store.CollectionAppointments, store.Filter{
		store.Eq(fieldStudentID, store.Text(req.StudentID)),
		store.Gte(fieldDateTime, store.Text(startOfDay)),
		store.Lte(fieldDateTime, store.Text(endOfDay)),
		store.Ne(fieldStatus, store.Text(string(model.AppointmentStatusRejected))),
	})
	if err == nil {
		return uuid.Nil, apperrors.DuplicateBooking("Student already has an appointment on this date.")
	}
	if !errors.Is(err, store.ErrNoRecord) {
		return uuid.Nil, apperrors.Internal(err)
	}

	status := req.Status
	if status == "" {
		status = string(model.AppointmentStatusPending)
	}

	id, err := s.store.Insert(ctx, store.CollectionAppointments, store.Record{
		fieldStudentID: store.Text(req.StudentID),
		fieldLastName:  store.Text(req.LastName),
		fieldFirstName: store.Text(req.FirstName),
		fieldEmail:     store.Text(req.Email),
		fieldConcern:   store.Text(req.Concern),
		fieldNurse:     store.Text(req.Nurse),
		fieldDateTime:  store.Text(req.DateTime),
		fieldStatus:    store.Text(status),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return uuid.Nil, apperrors.SlotTaken("Time slot already booked for this nurse.")
		}
		return uuid.Nil, apperrors.Internal(err)
	}
	return id, nil
}

// Accept sets the status unconditionally; accepting an already-Accepted or
// Rejected appointment is allowed and idempotent in effect.
func (s *Service) Accept(ctx context.Context, id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return apperrors.InvalidID("Invalid appointment ID")
	}

	matched, err := s.store.UpdateOne(ctx, store.CollectionAppointments, store.ByID(key),
		store.Record{fieldStatus: store.Text(string(model.AppointmentStatusAccepted))},
	)
	if err != nil {
		return apperrors.Internal(err)
	}
	if matched == 0 {
		return apperrors.NotFoundMsg("Appointment not found")
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return apperrors.InvalidID("Invalid appointment ID")
	}

	deleted, err := s.store.DeleteOne(ctx, store.CollectionAppointments, store.ByID(key))
	if err != nil {
		return apperrors.Internal(err)
	}
	if deleted == 0 {
		return apperrors.NotFoundMsg("Appointment not found")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]model.Appointment, error) {
	recs, err := s.store.Find(ctx, store.CollectionAppointments, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.Appointment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, appointmentFromRecord(rec))
	}
	return out, nil
}

// appointmentFromRecord is the canonical projection: identifiers and native
// timestamps render as text, absent optionals default to empty strings, and
// a missing email renders as "N/A".
func appointmentFromRecord(rec store.Record) model.Appointment {
	email := "N/A"
	if v, ok := rec[fieldEmail]; ok {
		email = v.Canonical()
	}

	return model.Appointment{
		ID:        rec.Canonical(store.FieldID),
		StudentID: rec.Canonical(fieldStudentID),
		LastName:  rec.Canonical(fieldLastName),
		FirstName: rec.Canonical(fieldFirstName),
		Email:     email,
		Concern:   rec.Canonical(fieldConcern),
		Nurse:     rec.Canonical(fieldNurse),
		DateTime:  rec.Canonical(fieldDateTime),
		Status:    rec.Canonical(fieldStatus),
	}
}

// datePart returns the date-only prefix of an ISO date+time string.
func datePart(dateTime string) string {
	if i := strings.IndexByte(dateTime, 'T'); i >= 0 {
		return dateTime[:i]
	}
	return dateTime
}
