package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
)

func scheduledRequest(doctorID, patientID, timeOfDay string) BookingRequest {
	return BookingRequest{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      monday,
		Time:      timeOfDay,
		Type:      models.TypeScheduled,
		Reason:    "checkup",
		Amount:    50,
	}
}

func TestAdmitWindowBoundaries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor, doctorUser := env.createDoctor(t)
	patient := env.createUser(t, models.RolePatient)
	env.setWindow(t, doctor, doctorUser.ID, 1, "09:00", "17:00")

	_, err := env.admission.Admit(ctx, scheduledRequest(doctor.ID, patient.ID, "08:59"))
	assert.ErrorIs(t, err, ErrOutsideHours)

	// Start of window is bookable.
	appointment, err := env.admission.Admit(ctx, scheduledRequest(doctor.ID, patient.ID, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Equal(t, models.PaymentPending, appointment.PaymentStatus)
	assert.False(t, appointment.ChatUnlocked)
	assert.False(t, appointment.VideoUnlocked)
	require.NotNil(t, appointment.SlotKey)
	assert.Equal(t, models.SlotKeyFor(doctor.ID, monday, "09:00"), *appointment.SlotKey)

	_, err = env.admission.Admit(ctx, scheduledRequest(doctor.ID, patient.ID, "16:59"))
	require.NoError(t, err)

	// End of window is exclusive.
	_, err = env.admission.Admit(ctx, scheduledRequest(doctor.ID, patient.ID, "17:00"))
	assert.ErrorIs(t, err, ErrOutsideHours)
}

func TestAdmitRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor, _ := env.createDoctor(t)
	patient := env.createUser(t, models.RolePatient)

	req := scheduledRequest(doctor.ID, patient.ID, "09:00")
	req.Date = "not-a-date"
	_, err := env.admission.Admit(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidDate)

	req = scheduledRequest(doctor.ID, patient.ID, "9am")
	_, err = env.admission.Admit(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestAdmitDoctorUnavailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor, doctorUser := env.createDoctor(t)
	patient := env.createUser(t, models.RolePatient)

	// No window at all for Monday.
	_, err := env.admission.Admit(ctx, scheduledRequest(doctor.ID, patient.ID, "10:00"))
	assert.ErrorIs(t, err, ErrDoctorUnavailable)

	// A window marked unavailable counts the same as no window.
	_, err = env.index.Upsert(ctx, doctorUser.ID, UpsertRequest{
		DoctorID:    doctor.ID,
		DayOfWeek:   1,
		StartTime:   "09:00",
		EndTime:     "17:00",
		IsAvailable: false,
	})
	require.NoError(t, err)
	_, err = env.admission.Admit(ctx, scheduledRequest(doctor.ID, patient.ID, "10:00"))
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
}

func TestAdmitSlotConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor, doctorUser := env.createDoctor(t)
	first := env.createUser(t, models.RolePatient)
	second := env.createUser(t, models.RolePatient)
	env.setWindow(t, doctor, doctorUser.ID, 1, "09:00", "17:00")

	booked, err := env.admission.Admit(ctx, scheduledRequest(doctor.ID, first.ID, "10:00"))
	require.NoError(t, err)

	_, err = env.admission.Admit(ctx, scheduledRequest(doctor.ID, second.ID, "10:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// A different time on the same day is unaffected.
	_, err = env.admission.Admit(ctx, scheduledRequest(doctor.ID, second.ID, "10:30"))
	require.NoError(t, err)

	// Cancelling frees the slot for rebooking.
	_, err = env.lifecycle.Cancel(ctx, booked.ID, first.ID, "changed my mind")
	require.NoError(t, err)
	_, err = env.admission.Admit(ctx, scheduledRequest(doctor.ID, second.ID, "10:00"))
	require.NoError(t, err)
}

func TestEmergencyBypassesAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor, _ := env.createDoctor(t)
	patient := env.createUser(t, models.RolePatient)

	// No availability windows exist; 03:00 would never be bookable normally.
	appointment, err := env.admission.Admit(ctx, BookingRequest{
		DoctorID:  doctor.ID,
		PatientID: patient.ID,
		Date:      monday,
		Time:      "03:00",
		Type:      models.TypeEmergency,
		Reason:    "chest pain",
		Amount:    120,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, appointment.Status)
	assert.Equal(t, models.PaymentPaid, appointment.PaymentStatus)
	assert.True(t, appointment.ChatUnlocked)
	assert.True(t, appointment.VideoUnlocked)
	assert.True(t, appointment.Video.Enabled)
	require.NotNil(t, appointment.Video.EnabledAt)
	assert.Contains(t, appointment.Video.JoinURL, appointment.ID)
}

func TestEmergencyPreemptsEveryOccupant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor, doctorUser := env.createDoctor(t)
	victim := env.createUser(t, models.RolePatient)
	stray := env.createUser(t, models.RolePatient)
	emergency := env.createUser(t, models.RolePatient)
	env.setWindow(t, doctor, doctorUser.ID, 1, "09:00", "17:00")

	booked, err := env.admission.Admit(ctx, scheduledRequest(doctor.ID, victim.ID, "10:00"))
	require.NoError(t, err)

	// A second occupant that slipped past the slot key (legacy data); the
	// preemption must clear it too, not just the first row it finds.
	extra := models.Appointment{
		DoctorID:        doctor.ID,
		PatientID:       stray.ID,
		AppointmentDate: monday,
		AppointmentTime: "10:00",
		Type:            models.TypeScheduled,
		Status:          models.StatusConfirmed,
		PaymentStatus:   models.PaymentPaid,
	}
	require.NoError(t, env.db.Create(&extra).Error)

	taken, err := env.admission.Admit(ctx, BookingRequest{
		DoctorID:  doctor.ID,
		PatientID: emergency.ID,
		Date:      monday,
		Time:      "10:00",
		Type:      models.TypeEmergency,
		Amount:    120,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, taken.Status)

	var displaced models.Appointment
	require.NoError(t, env.db.First(&displaced, "id = ?", booked.ID).Error)
	assert.Equal(t, models.StatusCancelled, displaced.Status)
	assert.Nil(t, displaced.SlotKey)
	assert.Contains(t, displaced.Notes, "preempted by an emergency booking")

	displaced = models.Appointment{}
	require.NoError(t, env.db.First(&displaced, "id = ?", extra.ID).Error)
	assert.Equal(t, models.StatusCancelled, displaced.Status)

	// Exactly one preemption notice per displaced patient.
	assert.EqualValues(t, 1, env.notificationCount(t, victim.ID, models.NotificationPreempted))
	assert.EqualValues(t, 1, env.notificationCount(t, stray.ID, models.NotificationPreempted))
	assert.EqualValues(t, 0, env.notificationCount(t, emergency.ID, models.NotificationPreempted))
}

func TestEmergencyOnFreeSlotDisplacesNobody(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor, _ := env.createDoctor(t)
	patient := env.createUser(t, models.RolePatient)

	_, err := env.admission.Admit(ctx, BookingRequest{
		DoctorID:  doctor.ID,
		PatientID: patient.ID,
		Date:      monday,
		Time:      "11:00",
		Type:      models.TypeEmergency,
		Amount:    120,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.Notification{}).
		Where("type = ?", models.NotificationPreempted).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
