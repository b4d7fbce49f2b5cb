package routes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-platform/controllers"
	"hotel-platform/middleware"
	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var secret = []byte("routes-secret")

type harness struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
}

func newHarness(t *testing.T, health func(context.Context) error) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)

	bookingSvc := services.NewBookingService(db, nil, nil)
	ctl := Controllers{
		Auth:     controllers.NewAuthController(services.NewAuthService(db, string(secret), time.Hour)),
		Bookings: controllers.NewBookingController(bookingSvc, services.NewExportService(db)),
		Payments: controllers.NewPaymentController(services.NewPaymentService(db, nil, nil), bookingSvc),
		Branches: controllers.NewBranchController(services.NewBranchService(db)),
		Rooms:    controllers.NewRoomController(services.NewRoomService(db)),
		Menu:     controllers.NewMenuItemController(services.NewMenuItemService(db)),
		Food:     controllers.NewFoodOrderController(services.NewFoodOrderService(db, nil, nil), bookingSvc),
		Service:  controllers.NewServiceRequestController(services.NewServiceRequestService(db, nil, nil)),
	}
	r := SetupRouter(ctl, Options{
		JWTSecret:   secret,
		AuthLimiter: middleware.NewRateLimiter(100, 100, nil),
		HealthCheck: health,
	})
	return &harness{router: r, mock: mock}
}

func bearer(t *testing.T, id uint, role string, branch *uint) string {
	t.Helper()
	raw, err := utils.SignToken(secret, id, role, branch, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + raw
}

func (h *harness) do(method, path, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func uptr(v uint) *uint { return &v }

func TestHealth(t *testing.T) {
	h := newHarness(t, func(context.Context) error { return nil })
	w := h.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	h = newHarness(t, func(context.Context) error { return errors.New("connection refused") })
	w = h.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthAndRoleGuards(t *testing.T) {
	h := newHarness(t, nil)
	user := bearer(t, 3, "user", uptr(1))

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/bookings", "", "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/bookings", user, "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/rooms", user, `{}`).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/branches", user, `{"name":"X"}`).Code)
	assert.Equal(t, http.StatusForbidden,
		h.do(http.MethodPost, "/api/payments", bearer(t, 1, "admin", nil), `{}`).Code,
		"payments are made by guests")
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestManagerCannotViewOtherBranchRooms(t *testing.T) {
	h := newHarness(t, nil)
	manager := bearer(t, 2, "manager", uptr(1))

	w := h.do(http.MethodGet, "/api/rooms/branch/2", manager, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
}

func TestRegisterCannotSelfAssignStaffRole(t *testing.T) {
	h := newHarness(t, nil)
	body := `{"name":"Eve","email":"eve@hotel.test","password":"secret1","role":"admin"}`

	w := h.do(http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsBadDates(t *testing.T) {
	h := newHarness(t, nil)
	user := bearer(t, 3, "user", uptr(1))

	w := h.do(http.MethodPost, "/api/bookings", user,
		`{"customerName":"A","branchId":1,"roomId":7,"checkIn":"2025-07-04","checkOut":"2025-07-01","totalAmount":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/bookings", user,
		`{"customerName":"A","branchId":1,"roomId":7,"checkIn":"04/07/2025","checkOut":"2025-07-06"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestCreateBookingConflict(t *testing.T) {
	h := newHarness(t, nil)
	user := bearer(t, 3, "user", uptr(1))

	h.mock.ExpectBegin()
	h.mock.ExpectQuery("SELECT \\* FROM `rooms`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "type", "price", "status", "branch_id"}).
			AddRow(7, "101", "Deluxe", 100.0, "Available", 1))
	h.mock.ExpectQuery("SELECT count\\(\\*\\) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	h.mock.ExpectRollback()

	w := h.do(http.MethodPost, "/api/bookings", user,
		`{"customerName":"A","branchId":1,"roomId":7,"checkIn":"2025-07-01","checkOut":"2025-07-03","totalAmount":200}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.ErrRoomBooked.Error(), gjson.Get(w.Body.String(), "error").String())
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestCreatePaymentHappyPath(t *testing.T) {
	h := newHarness(t, nil)
	user := bearer(t, 3, "user", uptr(1))

	h.mock.ExpectBegin()
	h.mock.ExpectQuery("SELECT \\* FROM `rooms`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "type", "price", "status", "branch_id"}).
			AddRow(7, "101", "Deluxe", 100.0, "Available", 1))
	h.mock.ExpectQuery("SELECT count\\(\\*\\) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	h.mock.ExpectExec("INSERT INTO `bookings`").WillReturnResult(sqlmock.NewResult(15, 1))
	h.mock.ExpectExec("INSERT INTO `payments`").WillReturnResult(sqlmock.NewResult(4, 1))
	h.mock.ExpectCommit()

	w := h.do(http.MethodPost, "/api/payments", user,
		`{"customerName":"A","branchId":1,"roomId":7,"checkIn":"2025-07-01","checkOut":"2025-07-03","totalAmount":200,"paymentMethod":"card","transactionId":"tx-77"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := w.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, int64(15), gjson.Get(body, "data.booking.id").Int())
	assert.Equal(t, "tx-77", gjson.Get(body, "data.payment.transactionId").String())
	assert.Equal(t, "Completed", gjson.Get(body, "data.payment.status").String())
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestFoodOrderForeignBookingForbidden(t *testing.T) {
	h := newHarness(t, nil)
	user := bearer(t, 3, "user", uptr(1))

	h.mock.ExpectQuery("SELECT \\* FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "branch_id", "room_id", "status"}).
			AddRow(20, 99, 1, 7, "Confirmed"))
	h.mock.ExpectQuery("SELECT \\* FROM `branches`").WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Main"))
	h.mock.ExpectQuery("SELECT \\* FROM `rooms`").WillReturnRows(sqlmock.NewRows([]string{"id", "room_number"}).AddRow(7, "101"))

	w := h.do(http.MethodPost, "/api/food", user,
		`{"booking_id":20,"branch_id":1,"items":[{"menu_item_id":1,"quantity":1,"price_each":5}]}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestBodiesAreBound(t *testing.T) {
	h := newHarness(t, nil)
	user := bearer(t, 3, "user", uptr(1))

	cases := map[string]struct {
		method, path, authz, body, message string
	}{
		"register email": {http.MethodPost, "/api/auth/register", "",
			`{"name":"Eve","email":"not-an-email","password":"secret1"}`, "email must be a valid email address"},
		"register password": {http.MethodPost, "/api/auth/register", "",
			`{"name":"Eve","email":"eve@hotel.test","password":"123"}`, "password must be at least 6 characters"},
		"login email": {http.MethodPost, "/api/auth/login", "",
			`{"password":"secret1"}`, "email is required"},
		"booking room": {http.MethodPost, "/api/bookings", user,
			`{"customerName":"A","checkIn":"2025-07-01","checkOut":"2025-07-03"}`, "roomId is required"},
		"food items": {http.MethodPost, "/api/food", user,
			`{"booking_id":20,"branch_id":1,"items":[]}`, "items must not be empty"},
		"food quantity": {http.MethodPost, "/api/food", user,
			`{"booking_id":20,"branch_id":1,"items":[{"menu_item_id":1,"quantity":0,"price_each":5}]}`, "quantity must be greater than 0"},
		"service description": {http.MethodPost, "/api/service", user,
			`{"type":"Cleaning","branch_id":1,"room_id":7}`, "description is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := h.do(tc.method, tc.path, tc.authz, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, gjson.Get(w.Body.String(), "error").String())
		})
	}
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestCreateServiceRequest(t *testing.T) {
	h := newHarness(t, nil)
	user := bearer(t, 3, "user", uptr(1))

	h.mock.ExpectBegin()
	h.mock.ExpectExec("INSERT INTO `service_requests`").WillReturnResult(sqlmock.NewResult(8, 1))
	h.mock.ExpectCommit()

	w := h.do(http.MethodPost, "/api/service", user,
		`{"type":"Cleaning","description":"fresh towels","branch_id":1,"room_id":7}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := w.Body.String()
	assert.Equal(t, int64(8), gjson.Get(body, "data.id").Int())
	assert.Equal(t, "Pending", gjson.Get(body, "data.status").String())
	assert.Equal(t, int64(3), gjson.Get(body, "data.guest_id").Int())
	assert.Equal(t, gjson.Null, gjson.Get(body, "data.booking_id").Type)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestServiceRequestStatusOtherBranchForbidden(t *testing.T) {
	h := newHarness(t, nil)
	manager := bearer(t, 2, "manager", uptr(1))

	h.mock.ExpectQuery("SELECT \\* FROM `service_requests`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "room_id", "guest_id", "type", "description", "status"}).
			AddRow(4, 2, 9, 3, "Repair", "lamp", "Pending"))

	w := h.do(http.MethodPatch, "/api/service/4/status", manager, `{"status":"Completed"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}
