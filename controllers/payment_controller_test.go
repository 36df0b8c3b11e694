package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPaymentTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	config.DB = db

	cfg := &config.Config{
		BaseURL:          "http://localhost:8080",
		PaymentReturnURL: "https://fluencyclub.fun/payment-success/",
		PaymentMaxAmount: 100000,
	}
	InitPaymentController(services.NewPaymentService(db, nil, cfg))

	router := gin.New()
	router.GET("/v1/payments/test-payment/:reference", TestPaymentPage)
	router.POST("/v1/payments/test-payment/:reference/complete", CompleteTestPayment)
	router.POST("/v1/payments/initiate", func(c *gin.Context) {
		// Stand-in for the auth middleware.
		var user models.User
		require.NoError(t, db.First(&user, c.GetHeader("X-Test-User")).Error)
		c.Set("user", user)
		InitiatePayment(c)
	})
	router.POST("/v1/leads", CreateLead)
	return router
}

func createTestStudent(t *testing.T) *models.User {
	t.Helper()
	student := &models.User{
		Username: fmt.Sprintf("student%d", time.Now().UnixNano()),
		Email:    fmt.Sprintf("student%d@example.com", time.Now().UnixNano()),
		Role:     models.RoleStudent,
		IsActive: true,
	}
	require.NoError(t, config.DB.Create(student).Error)
	return student
}

func postJSON(router *gin.Engine, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTestPaymentFlow(t *testing.T) {
	router := setupPaymentTest(t)
	student := createTestStudent(t)

	// Initiate: with no gateway configured this yields a test payment.
	w := postJSON(router, "/v1/payments/initiate", gin.H{"amount": 5000},
		map[string]string{"X-Test-User": fmt.Sprint(student.ID)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var initResp struct {
		Data struct {
			PaymentID         uint   `json:"payment_id"`
			PaymentURL        string `json:"payment_url"`
			ExternalPaymentID string `json:"external_payment_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &initResp))
	reference := initResp.Data.ExternalPaymentID
	require.NotEmpty(t, reference)
	assert.Contains(t, initResp.Data.PaymentURL, "/v1/payments/test-payment/"+reference)

	// The landing page shows the pending payment.
	req := httptest.NewRequest(http.MethodGet, "/v1/payments/test-payment/"+reference, nil)
	page := httptest.NewRecorder()
	router.ServeHTTP(page, req)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "5000.00")

	// Completing settles the payment.
	done := postJSON(router, "/v1/payments/test-payment/"+reference+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, done.Code, done.Body.String())

	var payment models.Payment
	require.NoError(t, config.DB.First(&payment, initResp.Data.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)

	var invoiceCount int64
	config.DB.Model(&models.Invoice{}).Where("payment_id = ?", payment.ID).Count(&invoiceCount)
	assert.Equal(t, int64(1), invoiceCount)

	// Completing again is a harmless no-op.
	again := postJSON(router, "/v1/payments/test-payment/"+reference+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, again.Code)
	config.DB.Model(&models.Invoice{}).Where("payment_id = ?", payment.ID).Count(&invoiceCount)
	assert.Equal(t, int64(1), invoiceCount)
}

func TestTestPaymentUnknownReference(t *testing.T) {
	router := setupPaymentTest(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/test-payment/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInitiatePaymentRejectsZeroAmount(t *testing.T) {
	router := setupPaymentTest(t)
	student := createTestStudent(t)

	w := postJSON(router, "/v1/payments/initiate", gin.H{"amount": -5},
		map[string]string{"X-Test-User": fmt.Sprint(student.ID)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	config.DB.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateLeadFromWebsite(t *testing.T) {
	router := setupPaymentTest(t)

	w := postJSON(router, "/v1/leads", gin.H{
		"first_name": "Anna",
		"last_name":  "Petrova",
		"email":      "anna@example.com",
		"source":     "website",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var lead models.Lead
	require.NoError(t, config.DB.Where("email = ?", "anna@example.com").First(&lead).Error)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Equal(t, models.LeadSourceWebsite, lead.Source)

	// Missing contact details are rejected.
	bad := postJSON(router, "/v1/leads", gin.H{
		"first_name": "No",
		"last_name":  "Contact",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}
