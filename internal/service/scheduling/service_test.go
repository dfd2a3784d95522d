package scheduling_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/service/scheduling"
	"github.com/ccsfp/clinic-api/internal/store"
	"github.com/ccsfp/clinic-api/internal/store/memory"
	apperrors "github.com/ccsfp/clinic-api/pkg/errors"
	"github.com/ccsfp/clinic-api/pkg/lock"
)

func newTestService() *scheduling.Service {
	return scheduling.NewService(memory.NewStore(), lock.NewKeyedMutex())
}

func bookingRequest(studentID, nurse, dateTime string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		StudentID: studentID,
		LastName:  "Doe",
		FirstName: "Jane",
		Email:     "jane@example.edu",
		Concern:   "Headache",
		Nurse:     nurse,
		DateTime:  dateTime,
	}
}

func TestCreateBooking(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, bookingRequest("S001", "Nurse Cruz", "2026-09-01T10:00"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, id.String(), appts[0].ID)
	assert.Equal(t, string(model.AppointmentStatusPending), appts[0].Status)
}

func TestCreateSlotTaken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, bookingRequest("S001", "Nurse Cruz", "2026-09-01T10:00"))
	require.NoError(t, err)

	// Different student, same nurse and time.
	_, err = svc.Create(ctx, bookingRequest("S002", "Nurse Cruz", "2026-09-01T10:00"))
	assert.True(t, apperrors.Is(err, apperrors.ErrSlotTaken))
	assert.EqualError(t, err, "Time slot already booked for this nurse.")

	// A different nurse at the same time is fine.
	_, err = svc.Create(ctx, bookingRequest("S002", "Nurse Reyes", "2026-09-01T10:00"))
	assert.NoError(t, err)
}

func TestCreateDuplicateDailyBooking(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, bookingRequest("S001", "Nurse Cruz", "2026-09-01T10:00"))
	require.NoError(t, err)

	// Same student, same date, different nurse and hour.
	_, err = svc.Create(ctx, bookingRequest("S001", "Nurse Reyes", "2026-09-01T14:00"))
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateBooking))
	assert.EqualError(t, err, "Student already has an appointment on this date.")

	// The next day is fine.
	_, err = svc.Create(ctx, bookingRequest("S001", "Nurse Reyes", "2026-09-02T14:00"))
	assert.NoError(t, err)
}

func TestRejectedFreesSlotAndDay(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	req := bookingRequest("S001", "Nurse Cruz", "2026-09-01T10:00")
	req.Status = string(model.AppointmentStatusRejected)
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	// Rejected bookings block neither the slot nor the student's day.
	_, err = svc.Create(ctx, bookingRequest("S002", "Nurse Cruz", "2026-09-01T10:00"))
	assert.NoError(t, err)

	_, err = svc.Create(ctx, bookingRequest("S001", "Nurse Reyes", "2026-09-01T14:00"))
	assert.NoError(t, err)
}

func TestAcceptedStillBlocksSlot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, bookingRequest("S001", "Nurse Cruz", "2026-09-01T10:00"))
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, id.String()))

	_, err = svc.Create(ctx, bookingRequest("S002", "Nurse Cruz", "2026-09-01T10:00"))
	assert.True(t, apperrors.Is(err, apperrors.ErrSlotTaken))
}

func TestAcceptIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, bookingRequest("S001", "Nurse Cruz", "2026-09-01T10:00"))
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, id.String()))
	require.NoError(t, svc.Accept(ctx, id.String()))

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, string(model.AppointmentStatusAccepted), appts[0].Status)
}

func TestAcceptErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	err := svc.Accept(ctx, "not-a-uuid")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidID))
	assert.EqualError(t, err, "Invalid appointment ID")

	err = svc.Accept(ctx, uuid.NewString())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.EqualError(t, err, "Appointment not found")
}

func TestDeleteBooking(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, bookingRequest("S001", "Nurse Cruz", "2026-09-01T10:00"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id.String()))

	err = svc.Delete(ctx, id.String())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = svc.Delete(ctx, "bogus")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidID))

	// Deleting frees the slot.
	_, err = svc.Create(ctx, bookingRequest("S002", "Nurse Cruz", "2026-09-01T10:00"))
	assert.NoError(t, err)
}

func TestListRendersMissingEmailAsNA(t *testing.T) {
	st := memory.NewStore()
	svc := scheduling.NewService(st, lock.NewKeyedMutex())
	ctx := context.Background()

	// Simulate a legacy record stored without an email field.
	_, err := st.Insert(ctx, store.CollectionAppointments, store.Record{
		"studentId": store.Text("S001"),
		"nurse":     store.Text("Nurse Cruz"),
		"dateTime":  store.Text("2026-09-01T10:00"),
		"status":    store.Text("Pending"),
	})
	require.NoError(t, err)

	appts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "N/A", appts[0].Email)
}
