package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-reservations/config"
	"hotel-reservations/controllers"
	"hotel-reservations/repositories"
	"hotel-reservations/routes"
	"hotel-reservations/services"
	"hotel-reservations/utils"
)

const testSecret = "controller-test-secret"

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repositories.AutoMigrate(db))

	log := zap.NewNop()
	store := repositories.NewStore(db)
	locks := services.NewLocker()
	reservations := services.NewReservationService(store, locks, nil, log)
	reservations.SetClock(func() time.Time { return time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC) })

	router := routes.SetupRouter(routes.Deps{
		Config:       config.Config{JWTSecret: testSecret},
		Log:          log,
		Rooms:        controllers.NewRoomController(services.NewRoomService(store, locks, nil, log), log),
		Customers:    controllers.NewCustomerController(services.NewCustomerService(store, locks, log), log),
		Reservations: controllers.NewReservationController(reservations, log),
		Auth:         controllers.NewAuthController(services.NewAuthService(store, testSecret), log),
	})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (a *apiClient) doList(path string) (int, []map[string]interface{}) {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	var out []map[string]interface{}
	if w.Code == http.StatusOK {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

// seed creates room 104 at 233 a night and customer ana, and logs in.
func (a *apiClient) seed() (roomID, customerID float64) {
	a.t.Helper()
	status, room := a.do(http.MethodPost, "/api/rooms", map[string]interface{}{
		"number": 104, "type": "suite", "description": "Suite with balcony", "price_per_night": 233,
	})
	require.Equal(a.t, http.StatusCreated, status, room)

	status, customer := a.do(http.MethodPost, "/api/customers", map[string]interface{}{
		"name": "Ana Lopez", "email": "ana@example.com", "phone": "5551234567",
		"username": "ana", "password": "Secret123",
	})
	require.Equal(a.t, http.StatusCreated, status, customer)
	_, hasHash := customer["password_hash"]
	assert.False(a.t, hasHash)

	status, login := a.do(http.MethodPost, "/api/login", map[string]interface{}{"username": "ana", "password": "Secret123"})
	require.Equal(a.t, http.StatusOK, status, login)
	a.token = login["token"].(string)

	return room["id"].(float64), customer["id"].(float64)
}

func TestReservationLifecycleOverHTTP(t *testing.T) {
	api := newAPI(t)
	roomID, customerID := api.seed()

	status, res := api.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"customer_id": customerID, "room_id": roomID,
		"check_in_date": "2024-11-01", "check_out_date": "2024-11-05",
	})
	require.Equal(t, http.StatusCreated, status, res)
	assert.Equal(t, 932.0, res["total_amount"])
	assert.Equal(t, "confirmed", res["status"])
	assert.Equal(t, "Ana Lopez", res["customer_name"])
	assert.Equal(t, 104.0, res["room_number"])
	resPath := fmt.Sprintf("/api/reservations/%v", res["id"])

	_, room := api.do(http.MethodGet, fmt.Sprintf("/api/rooms/%v", roomID), nil)
	assert.Equal(t, false, room["availability"])

	status, body := api.do(http.MethodPut, resPath, map[string]interface{}{"total_amount": 1})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "error.forbidden", body["code"])

	status, body = api.do(http.MethodPut, resPath, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error.no_op", body["code"])

	status, body = api.do(http.MethodPut, resPath, map[string]interface{}{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error.invalid_status", body["code"])

	status, body = api.do(http.MethodPut, resPath, map[string]interface{}{"status": "checked-out"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "checked-out", body["status"])

	_, room = api.do(http.MethodGet, fmt.Sprintf("/api/rooms/%v", roomID), nil)
	assert.Equal(t, true, room["availability"])
	_, customer := api.do(http.MethodGet, fmt.Sprintf("/api/customers/%v", customerID), nil)
	assert.Equal(t, 0.0, customer["active_reservations"])

	status, body = api.do(http.MethodPut, resPath, map[string]interface{}{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "error.immutable", body["code"])

	status, events := api.doList(resPath + "/events")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events, 2)
	assert.Equal(t, "reservation.created", events[0]["type"])
	assert.Equal(t, "reservation.status_changed", events[1]["type"])
	assert.Equal(t, "ana", events[1]["actor"])

	status, _ = api.do(http.MethodDelete, resPath, nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = api.do(http.MethodGet, resPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error.not_found", body["code"])
}

func TestCreateReservationRequiresToken(t *testing.T) {
	api := newAPI(t)
	roomID, customerID := api.seed()
	api.token = ""

	status, body := api.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"customer_id": customerID, "room_id": roomID,
		"check_in_date": "2024-11-01", "check_out_date": "2024-11-05",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "error.unauthorized", body["code"])
}

func TestCreateReservationErrors(t *testing.T) {
	api := newAPI(t)
	roomID, customerID := api.seed()

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
		code   string
	}{
		{
			name:   "bad date format",
			body:   map[string]interface{}{"customer_id": customerID, "room_id": roomID, "check_in_date": "11/01/2024", "check_out_date": "2024-11-05"},
			status: http.StatusBadRequest,
			code:   "error.validation",
		},
		{
			name:   "reversed dates",
			body:   map[string]interface{}{"customer_id": customerID, "room_id": roomID, "check_in_date": "2024-11-05", "check_out_date": "2024-11-01"},
			status: http.StatusBadRequest,
			code:   "error.invalid_date_range",
		},
		{
			name:   "unknown room",
			body:   map[string]interface{}{"customer_id": customerID, "room_id": 999, "check_in_date": "2024-11-01", "check_out_date": "2024-11-05"},
			status: http.StatusNotFound,
			code:   "error.not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := api.do(http.MethodPost, "/api/reservations", tt.body)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, tt.code, body["code"])
		})
	}

	status, _ := api.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"customer_id": customerID, "room_id": roomID, "check_in_date": "2024-11-01", "check_out_date": "2024-11-05",
	})
	require.Equal(t, http.StatusCreated, status)
	status, body := api.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"customer_id": customerID, "room_id": roomID, "check_in_date": "2024-12-01", "check_out_date": "2024-12-05",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "error.room_unavailable", body["code"])
}

func TestRoomAndCustomerLockedFields(t *testing.T) {
	api := newAPI(t)
	roomID, customerID := api.seed()

	status, body := api.do(http.MethodPut, fmt.Sprintf("/api/rooms/%v", roomID), map[string]interface{}{"availability": false})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = api.do(http.MethodPut, fmt.Sprintf("/api/customers/%v", customerID), map[string]interface{}{"email": "x@example.com"})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = api.do(http.MethodPut, fmt.Sprintf("/api/customers/%v", customerID), map[string]interface{}{"phone": "5559990000"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "5559990000", body["phone"])

	status, rooms := api.doList("/api/rooms?type=suite&availability=true")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, rooms, 1)

	status, _ = api.doList("/api/rooms?type=penthouse")
	assert.Equal(t, http.StatusBadRequest, status)
}
