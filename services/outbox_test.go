package services

import (
	"testing"

	"github.com/fluencyclub/schoolcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchPendingRetriesAndGivesUp(t *testing.T) {
	db := newTestDB(t)
	dispatcher := NewOutboxDispatcher(db)

	// An event pointing at a payment that does not exist keeps failing.
	event := models.OutboxEvent{
		EventType: models.OutboxEventCreateInvoice,
		PaymentID: 424242,
		Status:    models.OutboxStatusPending,
	}
	require.NoError(t, db.Create(&event).Error)

	for i := 1; i <= MaxOutboxAttempts; i++ {
		delivered := dispatcher.DispatchPending(10)
		assert.Zero(t, delivered)

		var reloaded models.OutboxEvent
		require.NoError(t, db.First(&reloaded, event.ID).Error)
		assert.Equal(t, i, reloaded.Attempts)
		assert.Equal(t, models.OutboxStatusFailed, reloaded.Status)
		assert.NotEmpty(t, reloaded.LastError)
	}

	// Attempts are exhausted; the event is no longer picked up.
	assert.Zero(t, dispatcher.DispatchPending(10))
	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, event.ID).Error)
	assert.Equal(t, MaxOutboxAttempts, reloaded.Attempts)
}

func TestCreateInvoiceIdempotent(t *testing.T) {
	db := newTestDB(t)
	dispatcher := NewOutboxDispatcher(db)
	student := createStudent(t, db)

	payment := models.Payment{
		StudentID:     student.ID,
		Amount:        3000,
		Currency:      "RUB",
		Status:        models.PaymentStatusPaid,
		PaymentMethod: models.PaymentMethodTest,
	}
	require.NoError(t, db.Create(&payment).Error)

	require.NoError(t, dispatcher.createInvoice(&payment))
	require.NoError(t, dispatcher.createInvoice(&payment))

	var count int64
	db.Model(&models.Invoice{}).Where("payment_id = ?", payment.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollStudentTolerant(t *testing.T) {
	db := newTestDB(t)
	dispatcher := NewOutboxDispatcher(db)
	student := createStudent(t, db)

	// No course at all: nothing to do, no error.
	payment := models.Payment{
		StudentID: student.ID,
		Amount:    1000,
		Status:    models.PaymentStatusPaid,
	}
	require.NoError(t, db.Create(&payment).Error)
	assert.NoError(t, dispatcher.enrollStudent(&payment))

	// Course without an active group: also tolerated.
	course := models.Course{Title: "French", IsActive: true}
	require.NoError(t, db.Create(&course).Error)
	payment.CourseID = &course.ID
	assert.NoError(t, dispatcher.enrollStudent(&payment))

	// With an active group the student is enrolled exactly once.
	group := models.Group{Title: "FR-1", CourseID: course.ID, IsActive: true}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, dispatcher.enrollStudent(&payment))
	require.NoError(t, dispatcher.enrollStudent(&payment))

	var enrolled int64
	db.Table("group_students").Where("group_id = ? AND user_id = ?", group.ID, student.ID).Count(&enrolled)
	assert.Equal(t, int64(1), enrolled)
}

func TestInvoiceNumberFormat(t *testing.T) {
	assert.Equal(t, "INV-20250114-42", InvoiceNumber("20250114", 42))
	assert.Equal(t, "7500.00", FormatAmount(7500))
	assert.Equal(t, "99.90", FormatAmount(99.9))
}
