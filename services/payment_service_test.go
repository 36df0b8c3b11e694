package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/gateway"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGateway is a controllable gateway.Client for exercising the real
// gateway code paths without network access.
type fakeGateway struct {
	createErr   error
	createCalls int
	fetchStatus gateway.Status
	fetchRaw    string
	fetchErr    error
}

func (f *fakeGateway) Method() string { return "razorpay" }

func (f *fakeGateway) CreatePaymentLink(_ context.Context, req gateway.PaymentRequest) (*gateway.PaymentLink, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &gateway.PaymentLink{
		ID:        "plink_" + req.Metadata["reference"],
		URL:       "https://gateway.example/pay/" + req.Metadata["reference"],
		Status:    gateway.StatusPending,
		RawStatus: "created",
	}, nil
}

func (f *fakeGateway) FetchPaymentLink(_ context.Context, id string) (*gateway.PaymentLink, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
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

func createCourseWithGroup(t *testing.T, db *gorm.DB) (*models.Course, *models.Group) {
	t.Helper()
	course := &models.Course{Title: "General English", Price: 5000, IsActive: true}
	require.NoError(t, db.Create(course).Error)
	group := &models.Group{Title: "GE-1", CourseID: course.ID, MaxStudents: 10, IsActive: true}
	require.NoError(t, db.Create(group).Error)
	return course, group
}

func TestInitiatePaymentRejectsInvalidAmounts(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)

	for _, amount := range []float64{0, -10} {
		result := svc.InitiatePayment(context.Background(), student, nil, amount, "", "", "")
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "Amount must be greater than zero")
	}

	result := svc.InitiatePayment(context.Background(), student, nil, 100001, "", "", "")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "exceeds")

	// Validation failures must never reach the gateway or the database.
	assert.Zero(t, gw.createCalls)
	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestInitiatePaymentRejectsInvalidCurrency(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)

	for _, currency := range []string{"rub", "RUBLES", "R$"} {
		result := svc.InitiatePayment(context.Background(), student, nil, 5000, currency, "", "")
		assert.False(t, result.Success, currency)
		assert.Contains(t, result.Error, "Invalid currency code")
	}

	assert.Zero(t, gw.createCalls)
	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestInitiatePaymentStubFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, nil, testConfig())
	student := createStudent(t, db)
	course, _ := createCourseWithGroup(t, db)

	result := svc.InitiatePayment(context.Background(), student, course, 5000, "", "", "")
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.PaymentURL, "/v1/payments/test-payment/")
	assert.True(t, strings.HasPrefix(result.TransactionID, gateway.StubTransactionPrefix))
	assert.Equal(t, "Test payment (gateway not configured)", result.Message)

	var payment models.Payment
	require.NoError(t, db.First(&payment, result.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, models.PaymentMethodTest, payment.PaymentMethod)
	assert.Equal(t, models.DefaultCurrency, payment.Currency)
	require.NotNil(t, payment.CourseID)
	assert.Equal(t, course.ID, *payment.CourseID)
}

func TestInitiatePaymentStrictModeFailsClosed(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.PaymentStrictMode = true
	svc := NewPaymentService(db, nil, cfg)
	student := createStudent(t, db)

	result := svc.InitiatePayment(context.Background(), student, nil, 5000, "", "", "")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not configured")

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestInitiatePaymentGatewayError(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{createErr: fmt.Errorf("gateway unavailable")}
	svc := NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)

	result := svc.InitiatePayment(context.Background(), student, nil, 5000, "", "", "")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "gateway unavailable")

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestConfirmPaymentNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, nil, testConfig())

	result := svc.ConfirmPayment(context.Background(), 9999)
	assert.False(t, result.Success)
	assert.Equal(t, "Payment not found", result.Error)
}

func TestConfirmTestPaymentSettlesWithSideEffects(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, nil, testConfig())
	student := createStudent(t, db)
	course, group := createCourseWithGroup(t, db)

	initiated := svc.InitiatePayment(context.Background(), student, course, 5000, "RUB", "", "")
	require.True(t, initiated.Success, initiated.Error)

	result := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	require.True(t, result.Success, result.Error)

	var payment models.Payment
	require.NoError(t, db.First(&payment, initiated.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PaidAt)
	assert.Equal(t, payment.TransactionID, result.TransactionID)

	// Exactly one invoice, numbered from the settlement date and the
	// payment id, carrying the paid amount.
	var invoices []models.Invoice
	require.NoError(t, db.Where("payment_id = ?", payment.ID).Find(&invoices).Error)
	require.Len(t, invoices, 1)
	expected := fmt.Sprintf("INV-%s-%d", payment.PaidAt.Format("20060102"), payment.ID)
	assert.Equal(t, expected, invoices[0].InvoiceNumber)
	assert.Equal(t, payment.Amount, invoices[0].Amount)
	assert.Equal(t, payment.Currency, invoices[0].Currency)
	assert.Equal(t, models.InvoiceStatusPaid, invoices[0].Status)

	// Student landed in the course's first active group.
	var enrolled int64
	db.Table("group_students").Where("group_id = ? AND user_id = ?", group.ID, student.ID).Count(&enrolled)
	assert.Equal(t, int64(1), enrolled)

	// All events dispatched synchronously after commit.
	var pendingEvents int64
	db.Model(&models.OutboxEvent{}).
		Where("payment_id = ? AND status <> ?", payment.ID, models.OutboxStatusSent).
		Count(&pendingEvents)
	assert.Zero(t, pendingEvents)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, nil, testConfig())
	student := createStudent(t, db)
	course, group := createCourseWithGroup(t, db)

	initiated := svc.InitiatePayment(context.Background(), student, course, 5000, "", "", "")
	require.True(t, initiated.Success)

	first := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	require.True(t, first.Success)

	second := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	require.True(t, second.Success)
	assert.Equal(t, "Payment already confirmed", second.Message)
	assert.NotEmpty(t, first.TransactionID)
	assert.Equal(t, first.TransactionID, second.TransactionID)

	var invoiceCount int64
	db.Model(&models.Invoice{}).Where("payment_id = ?", initiated.PaymentID).Count(&invoiceCount)
	assert.Equal(t, int64(1), invoiceCount)

	var enrolled int64
	db.Table("group_students").Where("group_id = ? AND user_id = ?", group.ID, student.ID).Count(&enrolled)
	assert.Equal(t, int64(1), enrolled)
}

func TestConfirmPaymentSucceededAtGateway(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{fetchStatus: gateway.StatusSucceeded, fetchRaw: "paid"}
	svc := NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)
	course, _ := createCourseWithGroup(t, db)

	initiated := svc.InitiatePayment(context.Background(), student, course, 5000, "", "", "")
	require.True(t, initiated.Success)

	result := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, initiated.TransactionID, result.TransactionID)

	var payment models.Payment
	require.NoError(t, db.First(&payment, initiated.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.Equal(t, result.TransactionID, payment.TransactionID)
}

func TestConfirmPaymentCancelled(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{fetchStatus: gateway.StatusCanceled, fetchRaw: "cancelled"}
	svc := NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)
	course, _ := createCourseWithGroup(t, db)

	initiated := svc.InitiatePayment(context.Background(), student, course, 5000, "", "", "")
	require.True(t, initiated.Success)

	result := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	require.True(t, result.Success)
	assert.Equal(t, "Payment was cancelled", result.Message)

	var payment models.Payment
	require.NoError(t, db.First(&payment, initiated.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.Nil(t, payment.PaidAt)

	var invoiceCount int64
	db.Model(&models.Invoice{}).Where("payment_id = ?", payment.ID).Count(&invoiceCount)
	assert.Zero(t, invoiceCount)

	// A failed payment refuses further confirmation.
	again := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	assert.False(t, again.Success)
	assert.Equal(t, "Payment already failed", again.Error)
}

func TestConfirmPaymentStillInFlight(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{fetchStatus: gateway.StatusPending, fetchRaw: "created"}
	svc := NewPaymentService(db, gw, testConfig())
	student := createStudent(t, db)

	initiated := svc.InitiatePayment(context.Background(), student, nil, 5000, "", "", "")
	require.True(t, initiated.Success)

	result := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "created")

	// In-flight states write nothing.
	var payment models.Payment
	require.NoError(t, db.First(&payment, initiated.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestConfirmPaymentWithoutActiveGroupStillInvoices(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, nil, testConfig())
	student := createStudent(t, db)
	course := &models.Course{Title: "Spanish", Price: 4000, IsActive: true}
	require.NoError(t, db.Create(course).Error)

	initiated := svc.InitiatePayment(context.Background(), student, course, 4000, "", "", "")
	require.True(t, initiated.Success)

	result := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	require.True(t, result.Success, result.Error)

	var invoiceCount int64
	db.Model(&models.Invoice{}).Where("payment_id = ?", initiated.PaymentID).Count(&invoiceCount)
	assert.Equal(t, int64(1), invoiceCount)

	// The enrollment event resolves as sent even though no group exists.
	var failedEvents int64
	db.Model(&models.OutboxEvent{}).
		Where("payment_id = ? AND event_type = ? AND status <> ?",
			initiated.PaymentID, models.OutboxEventEnrollStudent, models.OutboxStatusSent).
		Count(&failedEvents)
	assert.Zero(t, failedEvents)
}

func TestConfirmPaymentWithoutCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, nil, testConfig())
	student := createStudent(t, db)

	initiated := svc.InitiatePayment(context.Background(), student, nil, 2500, "", "Private lessons", "")
	require.True(t, initiated.Success)

	result := svc.ConfirmPayment(context.Background(), initiated.PaymentID)
	require.True(t, result.Success, result.Error)

	var invoice models.Invoice
	require.NoError(t, db.Where("payment_id = ?", initiated.PaymentID).First(&invoice).Error)
	assert.Equal(t, "Private lessons", invoice.Description)
}

func TestFindByReference(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, nil, testConfig())
	student := createStudent(t, db)

	initiated := svc.InitiatePayment(context.Background(), student, nil, 1000, "", "", "")
	require.True(t, initiated.Success)

	payment, err := svc.FindByReference(initiated.ExternalPaymentID)
	require.NoError(t, err)
	assert.Equal(t, initiated.PaymentID, payment.ID)

	// Unknown references surface as a not-found application error so
	// handlers can answer 404 instead of 500.
	_, err = svc.FindByReference("no-such-reference")
	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Payment not found", appErr.Message)
}
