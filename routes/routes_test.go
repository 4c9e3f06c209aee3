package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"myhotel/config"
	"myhotel/controllers"
	"myhotel/models"
	"myhotel/redisstore"
	"myhotel/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminUser     = "admin@hotel.local"
	adminPassword = "admin12345"
	webhookSecret = "whsec"
)

type fakeVerifier struct {
	amountMinor int64
}

func (v *fakeVerifier) Verify(_ context.Context, ref string) (services.VerifyResult, error) {
	return services.VerifyResult{
		Status:        "success",
		Reference:     ref,
		TransactionID: "T-" + ref,
		AmountMinor:   v.amountMinor,
		Currency:      "NGN",
		Raw:           json.RawMessage(`{"status":true}`),
	}, nil
}

type testServer struct {
	Engine   *gin.Engine
	DB       *gorm.DB
	Perms    *services.PermissionService
	Users    *services.UserService
	Verifier *fakeVerifier
	Standard models.RoomType
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	seed, err := config.DefaultSeed()
	require.NoError(t, err)
	log := zap.NewNop()
	require.NoError(t, config.Seed(context.Background(), db, seed, config.AdminConfig{
		Username: adminUser,
		Password: adminPassword,
		FullName: "Admin User",
	}, log))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := redisstore.NewWithClient(client)

	ledger := services.NewLedger(db)
	bookings := services.NewBookingService(db, ledger, log)
	guests := services.NewGuestService(db, ledger, log)
	perms := services.NewPermissionService(db, log)
	users := services.NewUserService(db, ledger, log)
	auth := services.NewAuthService(db, store, time.Hour, log)
	verifier := &fakeVerifier{amountMinor: 20000}
	payments := services.NewPaymentService(store, verifier, bookings, webhookSecret, time.Hour, log)
	inventory := services.NewInventoryService(db, ledger, log)

	engine := SetupRouter(Controllers{
		Availability: controllers.NewAvailabilityController(services.NewAvailabilityService(db, log), log),
		Bookings:     controllers.NewBookingController(bookings, payments, services.NewExportService(bookings, guests, log), log),
		Payments:     controllers.NewPaymentController(payments, log),
		Guests:       controllers.NewGuestController(guests, log),
		Contacts:     controllers.NewContactController(services.NewContactService(db, ledger, log), log),
		Inventory:    controllers.NewInventoryController(inventory, log),
		Roles:        controllers.NewRoleController(perms, log),
		Users:        controllers.NewUserController(users, perms, log),
		Auth:         controllers.NewAuthController(auth, users, log),
	}, Options{
		CORSOrigins: []string{"http://localhost:3000"},
		Tokens:      auth,
		Principals:  perms,
		Log:         log,
	})

	var standard models.RoomType
	require.NoError(t, db.Where("name = ?", "Standard").First(&standard).Error)

	return &testServer{
		Engine:   engine,
		DB:       db,
		Perms:    perms,
		Users:    users,
		Verifier: verifier,
		Standard: standard,
	}
}

type envelope struct {
	Success   bool            `json:"success"`
	Code      string          `json:"code"`
	Errors    []string        `json:"errors"`
	Data      json.RawMessage `json:"data"`
	Duplicate bool            `json:"duplicate"`
	Field     string          `json:"field"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

// staffWithRole creates an active user holding the named seeded role and
// returns a bearer token for it.
func (s *testServer) staffWithRole(t *testing.T, username, role string) string {
	t.Helper()
	ctx := context.Background()
	u, err := s.Users.Create(ctx, nil, services.UserInput{FullName: "Staff", Username: username, Password: "password123"})
	require.NoError(t, err)
	var r models.Role
	require.NoError(t, s.DB.Where("name = ?", role).First(&r).Error)
	_, err = s.Perms.AssignRole(ctx, u.ID, r.ID, nil)
	require.NoError(t, err)
	return s.login(t, username, "password123")
}

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
}

func (s *testServer) staffBooking(in, out int) gin.H {
	return gin.H{
		"room_type_id": s.Standard.ID,
		"check_in":     day(in),
		"check_out":    day(out),
		"guests":       2,
		"guest": gin.H{
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"email":      "ada@example.com",
			"phone":      "0800000000",
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/availability", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAvailabilityEndpoint(t *testing.T) {
	s := newTestServer(t)

	path := fmt.Sprintf("/api/availability?room_type=%d&checkin=%s&checkout=%s&room=1&guest=2",
		s.Standard.ID, day(1), day(4))
	w, env := s.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res services.AvailabilityResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, services.AvailabilityAvailable, res.Status)
	assert.Equal(t, 3, res.Nights)
	assert.InDelta(t, 300, res.TotalCost, 0.001)
	assert.Equal(t, 3, res.AvailableRooms)

	w, env = s.do(t, http.MethodPost, "/api/availability", gin.H{"room_type": s.Standard.ID, "checkin": day(4), "checkout": day(1)}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid_request", env.Code)
	assert.NotEmpty(t, env.Errors)
}

func TestPublicRoomTypes(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/room-types", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var types []models.RoomType
	require.NoError(t, json.Unmarshal(env.Data, &types))
	assert.Len(t, types, 2)
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/admin/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing_token", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/admin/bookings", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", env.Code)
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": adminUser, "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", env.Code)

	token := s.login(t, adminUser, adminPassword)
	w, env = s.do(t, http.MethodGet, "/api/admin/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me struct {
		Sections    []string `json:"sections"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Len(t, me.Sections, 6)
	assert.Contains(t, me.Permissions, "delete_booking")
	assert.Contains(t, me.Permissions, "access_account")

	w, _ = s.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(t, http.MethodGet, "/api/admin/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", env.Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	token := s.staffWithRole(t, "desk@hotel.local", "Front Desk")

	w, _ := s.do(t, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(t, http.MethodDelete, "/api/admin/bookings/1", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "permission_denied", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/admin/hotels", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "section_denied", env.Code)

	w, env = s.do(t, http.MethodDelete, "/api/admin/bookings/1/purge", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "superuser_required", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/admin/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Roles    []string `json:"roles"`
		Sections []string `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, []string{"Front Desk"}, me.Roles)
	assert.ElementsMatch(t, []string{"booking", "guest", "contact"}, me.Sections)
}

func TestPaidPublicBooking(t *testing.T) {
	s := newTestServer(t)
	const ref = "PSK-1001"

	body := s.staffBooking(1, 3)
	body["payment_reference"] = ref

	w, env := s.do(t, http.MethodPost, "/api/bookings", body, "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "payment_not_verified", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/payments/expected-amount", gin.H{"reference": ref, "amount": 200}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(t, http.MethodPost, "/api/payments/verify", gin.H{"reference": ref}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodPost, "/api/bookings", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created, 1)
	assert.Equal(t, models.StatusConfirmed, created[0].Status)
	assert.InDelta(t, 200, created[0].TotalPrice, 0.001)

	// the intent is single use
	w, env = s.do(t, http.MethodPost, "/api/bookings", body, "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "payment_not_verified", env.Code)
}

func TestPublicBookingWithoutReference(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/bookings", s.staffBooking(1, 3), "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "payment_required", env.Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader([]byte(`{"event":"charge.success"}`)))
	req.Header.Set("X-Paystack-Signature", "deadbeef")
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffBookingLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, adminUser, adminPassword)

	w, env := s.do(t, http.MethodPost, "/api/admin/bookings", s.staffBooking(2, 4), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created, 1)
	id := created[0].ID
	roomID := created[0].RoomID

	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/admin/bookings/room-availability?room_id=%d&check_in=%s&check_out=%s", roomID, day(3), day(5)), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var avail struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.False(t, avail.Available)

	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/bookings/%d/confirm", id), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/bookings/%d", id), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/admin/bookings/%d", id), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/admin/bookings?mode=deleted_only", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 1, page.Total)

	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/bookings/%d/restore", id), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/bookings/%d/purge", id), nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExportBookings(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, adminUser, adminPassword)
	w, _ := s.do(t, http.MethodPost, "/api/admin/bookings", s.staffBooking(2, 4), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/admin/bookings/export", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bookings-")
	assert.NotZero(t, w.Body.Len())
}

func TestGuestDuplicateWarning(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, adminUser, adminPassword)
	guest := gin.H{"first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com", "phone": "0811111111"}

	w, env := s.do(t, http.MethodPost, "/api/admin/guests", guest, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first models.Guest
	require.NoError(t, json.Unmarshal(env.Data, &first))

	guest["phone"] = "0822222222"
	w, env = s.do(t, http.MethodPost, "/api/admin/guests", guest, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Duplicate)
	assert.Equal(t, "email", env.Field)
	assert.Equal(t, fmt.Sprintf("/api/admin/guests/%d", first.ID), w.Header().Get("Location"))
}

func TestRoomDeleteGuard(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, adminUser, adminPassword)

	w, env := s.do(t, http.MethodPost, "/api/admin/bookings", s.staffBooking(2, 4), token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created []models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/rooms/%d", created[0].RoomID), nil, token)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.False(t, env.Success)

	w, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/room-types/%d", s.Standard.ID), nil, token)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestRoleAssignmentTakesEffect(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminUser, adminPassword)
	token := s.staffWithRole(t, "rooms@hotel.local", "Room Manager")

	w, _ := s.do(t, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var viewer models.Role
	require.NoError(t, s.DB.Where("name = ?", "Viewer").First(&viewer).Error)
	var staff models.User
	require.NoError(t, s.DB.Where("username = ?", "rooms@hotel.local").First(&staff).Error)

	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/roles", staff.ID), gin.H{"role_id": viewer.ID}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d/roles/%d", staff.ID, viewer.ID), nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAccountStaffCannotGrantSuperuser(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.Perms.CreateRole(ctx, services.RoleInput{
		Name:        "Account Clerk",
		Permissions: []string{"access_account", "view_user", "add_user", "edit_user", "delete_user"},
	})
	require.NoError(t, err)
	token := s.staffWithRole(t, "clerk@hotel.local", "Account Clerk")

	var clerk, admin models.User
	require.NoError(t, s.DB.Where("username = ?", "clerk@hotel.local").First(&clerk).Error)
	require.NoError(t, s.DB.Where("username = ?", adminUser).First(&admin).Error)

	w, env := s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", clerk.ID), gin.H{"is_superuser": true}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "superuser_required", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/admin/users", gin.H{"username": "shadow@hotel.local", "password": "password123", "is_superuser": true}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", admin.ID), gin.H{"password": "takeover123"}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", admin.ID), gin.H{"is_active": false}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", admin.ID), nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, s.DB.First(&clerk, clerk.ID).Error)
	assert.False(t, clerk.IsSuperuser)
	w, _ = s.do(t, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.login(t, adminUser, adminPassword)

	// Plain account work is still allowed.
	w, _ = s.do(t, http.MethodPost, "/api/admin/users", gin.H{"username": "porter@hotel.local", "password": "password123"}, token)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", clerk.ID), gin.H{"full_name": "Account Clerk"}, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSuperuserCanPromoteStaff(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminUser, adminPassword)
	token := s.staffWithRole(t, "rooms@hotel.local", "Room Manager")
	var staff models.User
	require.NoError(t, s.DB.Where("username = ?", "rooms@hotel.local").First(&staff).Error)

	w, _ := s.do(t, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", staff.ID), gin.H{"is_superuser": true}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.User
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.True(t, updated.IsSuperuser)

	w, _ = s.do(t, http.MethodGet, "/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingSummaryPeriods(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, adminUser, adminPassword)
	w, _ := s.do(t, http.MethodPost, "/api/admin/bookings", s.staffBooking(2, 4), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/admin/bookings/summary", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Counts  services.StatusCount      `json:"counts"`
		Periods services.BookingDashboard `json:"periods"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, int64(1), res.Counts.Confirmed+res.Counts.Pending)
	for _, p := range []services.PeriodCount{res.Periods.Today, res.Periods.Week, res.Periods.Month, res.Periods.Year, res.Periods.All} {
		assert.Equal(t, int64(1), p.Confirmed+p.Pending, p.Label)
	}
	assert.Equal(t, "All Bookings", res.Periods.All.Label)
}
