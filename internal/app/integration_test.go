package app

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/controller"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/internal/app/service"
	"github.com/printtts/shiplabel-backend/internal/db"
	"github.com/printtts/shiplabel-backend/internal/middleware"
	"github.com/printtts/shiplabel-backend/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		Session: config.SessionConfig{
			CookieName: "session_id",
			TTL:        time.Hour,
			StaleAfter: 24 * time.Hour,
		},
		Import: config.ImportConfig{
			HeaderRows: 2,
			Policy:     config.ImportPolicyAuto,
		},
	}

	userRepo := repository.NewUserRepository(testDB)
	accountRepo := repository.NewAccountRepository(testDB)
	shipmentRepo := repository.NewShipmentRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	packageRepo := repository.NewPackageRepository(testDB)
	purchaseRepo := repository.NewPurchaseRepository(testDB)

	authService := service.NewAuthService(userRepo, accountRepo, testDB, cfg.JWT)
	importService := service.NewImportService(shipmentRepo, testDB, cfg.Import)
	shipmentService := service.NewShipmentService(shipmentRepo, testDB)
	purchaseService := service.NewPurchaseService(shipmentRepo, accountRepo, purchaseRepo, testDB)
	presetService := service.NewPresetService(addressRepo, packageRepo)

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewShipmentController(shipmentService),
		controller.NewUploadController(importService, nil),
		controller.NewPurchaseController(purchaseService),
		controller.NewPresetController(presetService),
		middleware.NewAuthMiddleware(cfg.JWT.Secret),
		middleware.NewSessionMiddleware(cfg.Session),
		cfg,
	)

	return &TestServer{
		Router: r.Setup(),
		DB:     testDB,
	}
}

func (s *TestServer) request(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (s *TestServer) registerUser(t *testing.T, email string) string {
	w := s.request(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	response := parseResponse(t, w)
	token, ok := response["access_token"].(string)
	require.True(t, ok)
	return token
}

func shipmentCSV(recipients ...string) string {
	var b strings.Builder
	b.WriteString("Sender,,,,,,,Recipient,,,,,,,Package,,,,,Contact,,Order,\n")
	b.WriteString("first,last,addr,addr2,city,zip,state,first,last,addr,addr2,city,zip,state,lbs,oz,l,w,h,ph1,ph2,order,sku\n")
	for _, name := range recipients {
		b.WriteString("Jane,Doe,100 Main St,,Portland,97201,OR," + name +
			",Smith,200 Oak Ave,,Seattle,98101,WA,0,10,10,6,4,5035551234,,,SKU-1\n")
	}
	return b.String()
}

func (s *TestServer) uploadCSV(t *testing.T, csv string, headers map[string]string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "shipments.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func TestIntegration_HealthCheck(t *testing.T) {
	server := setupIntegrationTest(t)

	w := server.request(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIntegration_UserFlow_UploadEditPurchase(t *testing.T) {
	server := setupIntegrationTest(t)

	token := server.registerUser(t, "shipper@example.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	// Upload two shipments
	w := server.uploadCSV(t, shipmentCSV("John", "Mary"), auth)
	require.Equal(t, http.StatusOK, w.Code)
	uploadResp := parseResponse(t, w)
	assert.Equal(t, float64(2), uploadResp["imported"])

	// List them back
	w = server.request(t, http.MethodGet, "/api/shipments", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	listResp := parseResponse(t, w)
	records := listResp["records"].([]interface{})
	require.Len(t, records, 2)

	var ids []float64
	for _, raw := range records {
		record := raw.(map[string]interface{})
		ids = append(ids, record["id"].(float64))
		// 10 oz ground: 2.50 + 0.05*10
		assert.InDelta(t, 3.00, record["shipping_price"].(float64), 0.001)
	}

	// Upgrade both to priority
	w = server.request(t, http.MethodPatch, "/api/shipments/bulk/update", map[string]interface{}{
		"record_ids":       ids,
		"shipping_service": "priority",
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	bulkResp := parseResponse(t, w)
	for _, raw := range bulkResp["records"].([]interface{}) {
		record := raw.(map[string]interface{})
		// 10 oz priority: 5.00 + 0.10*10
		assert.InDelta(t, 6.00, record["shipping_price"].(float64), 0.001)
	}

	// Purchase both against the seeded 1000.00 balance
	w = server.request(t, http.MethodPost, "/api/purchase", map[string]interface{}{
		"record_ids":   ids,
		"label_format": "pdf",
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	purchaseResp := parseResponse(t, w)
	assert.InDelta(t, 12.00, purchaseResp["total"].(float64), 0.001)
	assert.InDelta(t, 988.00, purchaseResp["new_balance"].(float64), 0.001)

	// Records are now processed
	w = server.request(t, http.MethodGet, "/api/shipments", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	for _, raw := range parseResponse(t, w)["records"].([]interface{}) {
		record := raw.(map[string]interface{})
		assert.Equal(t, "processed", record["status"])
	}

	// The receipt is on file
	w = server.request(t, http.MethodGet, "/api/purchases", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	receiptsResp := parseResponse(t, w)
	assert.Equal(t, float64(1), receiptsResp["count"])
}

func TestIntegration_AnonymousSessionFlow(t *testing.T) {
	server := setupIntegrationTest(t)

	session := map[string]string{"X-Session-ID": "guest-session"}

	// Guest upload returns the session token
	w := server.uploadCSV(t, shipmentCSV("John"), session)
	require.Equal(t, http.StatusOK, w.Code)
	uploadResp := parseResponse(t, w)
	assert.Equal(t, "guest-session", uploadResp["session_id"])

	// A second upload replaces the first for anonymous sessions
	w = server.uploadCSV(t, shipmentCSV("Mary", "Alice"), session)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, http.MethodGet, "/api/shipments", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	listResp := parseResponse(t, w)
	assert.Equal(t, float64(2), listResp["count"])

	// Guests purchase without a balance check and get no new_balance back
	records := listResp["records"].([]interface{})
	id := records[0].(map[string]interface{})["id"].(float64)

	w = server.request(t, http.MethodPost, "/api/purchase", map[string]interface{}{
		"record_ids": []float64{id},
	}, session)
	require.Equal(t, http.StatusOK, w.Code)
	purchaseResp := parseResponse(t, w)
	_, hasBalance := purchaseResp["new_balance"]
	assert.False(t, hasBalance)

	// Another session sees nothing
	w = server.request(t, http.MethodGet, "/api/shipments", nil, map[string]string{"X-Session-ID": "other-session"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), parseResponse(t, w)["count"])
}

func TestIntegration_SessionCookieIssuedToGuests(t *testing.T) {
	server := setupIntegrationTest(t)

	w := server.request(t, http.MethodGet, "/api/shipments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == "session_id" && cookie.Value != "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIntegration_PresetsRequireAuth(t *testing.T) {
	server := setupIntegrationTest(t)

	w := server.request(t, http.MethodGet, "/api/addresses", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := server.registerUser(t, "presets@example.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	w = server.request(t, http.MethodPost, "/api/addresses", map[string]interface{}{
		"name":    "Warehouse",
		"address": "100 Main St",
		"city":    "Portland",
	}, auth)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = server.request(t, http.MethodGet, "/api/addresses", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), parseResponse(t, w)["count"])
}

func TestIntegration_InsufficientBalance(t *testing.T) {
	server := setupIntegrationTest(t)

	token := server.registerUser(t, "broke@example.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	// Drain the account to below one label's price
	require.NoError(t, server.DB.Exec("UPDATE accounts SET balance = 0.50").Error)

	w := server.uploadCSV(t, shipmentCSV("John"), auth)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, http.MethodGet, "/api/shipments", nil, auth)
	id := parseResponse(t, w)["records"].([]interface{})[0].(map[string]interface{})["id"].(float64)

	w = server.request(t, http.MethodPost, "/api/purchase", map[string]interface{}{
		"record_ids": []float64{id},
	}, auth)
	require.Equal(t, http.StatusBadRequest, w.Code)

	response := parseResponse(t, w)
	assert.Equal(t, "PURCHASE_INSUFFICIENT_BALANCE", response["error"])
	assert.InDelta(t, 0.50, response["available"].(float64), 0.001)

	// The record is still pending
	w = server.request(t, http.MethodGet, "/api/shipments", nil, auth)
	record := parseResponse(t, w)["records"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "pending", record["status"])
}
