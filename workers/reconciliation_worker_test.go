package workers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/gateway"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGateway answers every status query with a fixed result and counts
// how often it was asked.
type fakeGateway struct {
	fetchStatus gateway.Status
	fetchRaw    string
	fetchCalls  int
}

func (f *fakeGateway) Method() string { return "razorpay" }

func (f *fakeGateway) CreatePaymentLink(_ context.Context, req gateway.PaymentRequest) (*gateway.PaymentLink, error) {
	return &gateway.PaymentLink{
		ID:        "plink_" + req.Metadata["reference"],
		URL:       "https://gateway.example/pay/" + req.Metadata["reference"],
		Status:    gateway.StatusPending,
		RawStatus: "created",
	}, nil
}

func (f *fakeGateway) FetchPaymentLink(_ context.Context, id string) (*gateway.PaymentLink, error) {
	f.fetchCalls++
	return &gateway.PaymentLink{ID: id, Status: f.fetchStatus, RawStatus: f.fetchRaw}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:          "http://localhost:8080",
		PaymentReturnURL: "https://fluencyclub.fun/payment-success/",
		PaymentMaxAmount: 100000,
	}
}

func createStudent(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	student := &models.User{
		Username: fmt.Sprintf("student%d", time.Now().UnixNano()),
		Email:    fmt.Sprintf("student%d@example.com", time.Now().UnixNano()),
		Role:     models.RoleStudent,
		IsActive: true,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

// createStalePayment initiates a real-gateway payment and ages it past
// the reconciliation cutoff.
func createStalePayment(t *testing.T, db *gorm.DB, svc *services.PaymentService, student *models.User, course *models.Course) uint {
	t.Helper()
	initiated := svc.InitiatePayment(context.Background(), student, course, 5000, "", "", "")
	require.True(t, initiated.Success, initiated.Error)
	require.NoError(t, db.Model(&models.Payment{}).
		Where("id = ?", initiated.PaymentID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	return initiated.PaymentID
}

func TestSweepSettlesStalePaymentOnce(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{fetchStatus: gateway.StatusSucceeded, fetchRaw: "paid"}
	svc := services.NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)

	course := &models.Course{Title: "General English", Price: 5000, IsActive: true}
	require.NoError(t, db.Create(course).Error)
	group := &models.Group{Title: "GE-1", CourseID: course.ID, MaxStudents: 10, IsActive: true}
	require.NoError(t, db.Create(group).Error)

	paymentID := createStalePayment(t, db, svc, student, course)

	worker := NewReconciliationWorker(db, svc, time.Minute, 30*time.Minute)
	require.NoError(t, worker.sweep(context.Background()))
	require.NoError(t, worker.sweep(context.Background()))

	// Settled exactly once: the second sweep finds nothing pending and
	// never goes back to the gateway.
	assert.Equal(t, 1, gw.fetchCalls)

	var payment models.Payment
	require.NoError(t, db.First(&payment, paymentID).Error)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PaidAt)

	var invoiceCount int64
	db.Model(&models.Invoice{}).Where("payment_id = ?", paymentID).Count(&invoiceCount)
	assert.Equal(t, int64(1), invoiceCount)

	var enrolled int64
	db.Table("group_students").Where("group_id = ? AND user_id = ?", group.ID, student.ID).Count(&enrolled)
	assert.Equal(t, int64(1), enrolled)
}

func TestSweepSkipsFreshAndTestPayments(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{fetchStatus: gateway.StatusSucceeded, fetchRaw: "paid"}
	svc := services.NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)

	// Fresh real-gateway payment, still inside the grace window.
	fresh := svc.InitiatePayment(context.Background(), student, nil, 3000, "", "", "")
	require.True(t, fresh.Success)

	// Stale test payment; those settle through the test-payment page.
	stale := models.Payment{
		StudentID:         student.ID,
		Amount:            2000,
		Currency:          models.DefaultCurrency,
		Status:            models.PaymentStatusPending,
		PaymentMethod:     models.PaymentMethodTest,
		TransactionID:     "test_stale",
		ExternalPaymentID: "stale-reference",
		CreatedAt:         time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&stale).Error)

	worker := NewReconciliationWorker(db, svc, time.Minute, 30*time.Minute)
	require.NoError(t, worker.sweep(context.Background()))

	assert.Zero(t, gw.fetchCalls)
	for _, id := range []uint{fresh.PaymentID, stale.ID} {
		var payment models.Payment
		require.NoError(t, db.First(&payment, id).Error)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
	}
}

func TestSweepLeavesInFlightPending(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{fetchStatus: gateway.StatusPending, fetchRaw: "created"}
	svc := services.NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)

	paymentID := createStalePayment(t, db, svc, student, nil)

	worker := NewReconciliationWorker(db, svc, time.Minute, 30*time.Minute)
	require.NoError(t, worker.sweep(context.Background()))
	require.NoError(t, worker.sweep(context.Background()))

	// The payment stays pending and is re-queried every sweep until the
	// gateway reports a final status.
	assert.Equal(t, 2, gw.fetchCalls)
	var payment models.Payment
	require.NoError(t, db.First(&payment, paymentID).Error)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestReconciliationRunWithoutGateway(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewPaymentService(db, nil, testConfig())

	worker := NewReconciliationWorker(db, svc, time.Minute, 30*time.Minute)

	done := make(chan struct{})
	go func() {
		worker.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker should return immediately when no gateway is configured")
	}
}

func TestOutboxWorkerStopsOnCancel(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewPaymentService(db, nil, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewOutboxWorker(svc.Outbox(), time.Minute).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker should stop once the context is cancelled")
	}
}
