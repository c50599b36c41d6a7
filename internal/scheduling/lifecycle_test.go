package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
)

// bookPending creates a verified doctor with a Monday window and a pending
// scheduled appointment at 10:00.
func bookPending(t *testing.T, env *testEnv) (*models.Appointment, *models.User, *models.User) {
	t.Helper()
	doctor, doctorUser := env.createDoctor(t)
	patient := env.createUser(t, models.RolePatient)
	env.setWindow(t, doctor, doctorUser.ID, 1, "09:00", "17:00")
	appointment, err := env.admission.Admit(context.Background(),
		scheduledRequest(doctor.ID, patient.ID, "10:00"))
	require.NoError(t, err)
	return appointment, doctorUser, patient
}

func TestConfirmUnlocksChatAndVideo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, doctorUser, patient := bookPending(t, env)

	confirmed, err := env.lifecycle.Confirm(ctx, appointment.ID, doctorUser.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.ChatUnlocked)
	assert.True(t, confirmed.VideoUnlocked)
	assert.EqualValues(t, 1, env.notificationCount(t, patient.ID, models.NotificationConfirmed))

	// Confirming twice is an invalid transition.
	_, err = env.lifecycle.Confirm(ctx, appointment.ID, doctorUser.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmByWrongDoctor(t *testing.T) {
	env := newTestEnv(t)
	appointment, _, _ := bookPending(t, env)
	_, otherDoctorUser := env.createDoctor(t)

	_, err := env.lifecycle.Confirm(context.Background(), appointment.ID, otherDoctorUser.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.lifecycle.Confirm(context.Background(), "missing", otherDoctorUser.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelNotifiesOtherParty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, doctorUser, patient := bookPending(t, env)

	cancelled, err := env.lifecycle.Cancel(ctx, appointment.ID, patient.ID, "feeling better")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.SlotKey)
	assert.Contains(t, cancelled.Notes, "feeling better")

	// Patient cancelled, so the doctor is told, not the patient.
	assert.EqualValues(t, 1, env.notificationCount(t, doctorUser.ID, models.NotificationCancelled))
	assert.EqualValues(t, 0, env.notificationCount(t, patient.ID, models.NotificationCancelled))

	// Cancelled is terminal.
	_, err = env.lifecycle.Cancel(ctx, appointment.ID, patient.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelByStranger(t *testing.T) {
	env := newTestEnv(t)
	appointment, _, _ := bookPending(t, env)
	stranger := env.createUser(t, models.RolePatient)

	_, err := env.lifecycle.Cancel(context.Background(), appointment.ID, stranger.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCompleteForcesChatOffAndPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, doctorUser, patient := bookPending(t, env)

	_, err := env.lifecycle.Confirm(ctx, appointment.ID, doctorUser.ID)
	require.NoError(t, err)

	completed, err := env.lifecycle.Complete(ctx, appointment.ID, doctorUser.ID, "rest and fluids")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.False(t, completed.ChatUnlocked)
	assert.True(t, completed.VideoUnlocked) // video flag is left alone
	assert.Equal(t, models.PaymentPaid, completed.PaymentStatus)
	assert.EqualValues(t, 1, env.notificationCount(t, patient.ID, models.NotificationCompleted))

	_, err = env.lifecycle.Complete(ctx, appointment.ID, doctorUser.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	env := newTestEnv(t)
	appointment, doctorUser, _ := bookPending(t, env)

	_, err := env.lifecycle.Complete(context.Background(), appointment.ID, doctorUser.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyPaymentIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, _, patient := bookPending(t, env)

	paid, err := env.lifecycle.ApplyPayment(ctx, appointment.ID, 50, true)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	// Payment on a scheduled booking does not confirm or unlock anything;
	// those wait for the doctor.
	assert.Equal(t, models.StatusPending, paid.Status)
	assert.False(t, paid.ChatUnlocked)
	assert.False(t, paid.VideoUnlocked)

	// Gateway redelivery changes nothing and emits nothing.
	_, err = env.lifecycle.ApplyPayment(ctx, appointment.ID, 50, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, env.notificationCount(t, patient.ID, models.NotificationPaymentReceived))
}

func TestApplyPaymentFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, _, patient := bookPending(t, env)

	failed, err := env.lifecycle.ApplyPayment(ctx, appointment.ID, 50, false)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.PaymentStatus)
	assert.EqualValues(t, 0, env.notificationCount(t, patient.ID, models.NotificationPaymentReceived))

	// A failure delivered after a success must not downgrade the record.
	_, err = env.lifecycle.ApplyPayment(ctx, appointment.ID, 50, true)
	require.NoError(t, err)
	after, err := env.lifecycle.ApplyPayment(ctx, appointment.ID, 50, false)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, after.PaymentStatus)
}

func TestToggleChatNoopEmitsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, doctorUser, patient := bookPending(t, env)

	// Already locked; locking again is a no-op.
	_, err := env.lifecycle.ToggleChat(ctx, appointment.ID, doctorUser.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, env.notificationCount(t, patient.ID, models.NotificationChatDisabled))

	unlocked, err := env.lifecycle.ToggleChat(ctx, appointment.ID, doctorUser.ID, true)
	require.NoError(t, err)
	assert.True(t, unlocked.ChatUnlocked)
	assert.EqualValues(t, 1, env.notificationCount(t, patient.ID, models.NotificationChatEnabled))

	relocked, err := env.lifecycle.ToggleChat(ctx, appointment.ID, doctorUser.ID, false)
	require.NoError(t, err)
	assert.False(t, relocked.ChatUnlocked)
	assert.EqualValues(t, 1, env.notificationCount(t, patient.ID, models.NotificationChatDisabled))
}

func TestToggleChatAfterCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, doctorUser, _ := bookPending(t, env)

	_, err := env.lifecycle.Confirm(ctx, appointment.ID, doctorUser.ID)
	require.NoError(t, err)
	_, err = env.lifecycle.Complete(ctx, appointment.ID, doctorUser.ID, "")
	require.NoError(t, err)

	_, err = env.lifecycle.ToggleChat(ctx, appointment.ID, doctorUser.ID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestToggleVideoProvisionsPlaceholderLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, doctorUser, patient := bookPending(t, env)

	// No meeting API configured, so enabling falls back to the placeholder.
	enabled, err := env.lifecycle.ToggleVideo(ctx, appointment.ID, doctorUser.ID, true, "")
	require.NoError(t, err)
	assert.True(t, enabled.VideoUnlocked)
	assert.True(t, enabled.Video.Enabled)
	assert.Contains(t, enabled.Video.JoinURL, appointment.ID)
	require.NotNil(t, enabled.Video.EnabledAt)
	assert.EqualValues(t, 1, env.notificationCount(t, patient.ID, models.NotificationVideoEnabled))

	disabled, err := env.lifecycle.ToggleVideo(ctx, appointment.ID, doctorUser.ID, false, "")
	require.NoError(t, err)
	assert.False(t, disabled.VideoUnlocked)
	require.NotNil(t, disabled.Video.DisabledAt)
	assert.EqualValues(t, 1, env.notificationCount(t, patient.ID, models.NotificationVideoDisabled))

	// The stored link survives the disable and is reused on re-enable.
	reenabled, err := env.lifecycle.ToggleVideo(ctx, appointment.ID, doctorUser.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, enabled.Video.JoinURL, reenabled.Video.JoinURL)
}

func TestToggleVideoWithExplicitLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appointment, doctorUser, _ := bookPending(t, env)

	enabled, err := env.lifecycle.ToggleVideo(ctx, appointment.ID, doctorUser.ID, true,
		"https://meet.example.com/room/42")
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example.com/room/42", enabled.Video.JoinURL)
}
