package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"logitrack-api/config"
	"logitrack-api/drafts"
	"logitrack-api/events"
	"logitrack-api/exports"
	"logitrack-api/handlers"
	"logitrack-api/inquiries"
	"logitrack-api/middleware"
	"logitrack-api/models"
	"logitrack-api/shipments"
	"logitrack-api/socket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	hub    *socket.Hub
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()

	db, err := config.InitDB(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	store, err := drafts.Open("", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hub := socket.NewHub(log)
	t.Cleanup(hub.CloseAll)

	r := NewRouter(Deps{
		DB:        db,
		Log:       log,
		Shipments: shipments.NewService(db, events.Multi{hub}, log),
		Drafts:    store,
		Hub:       hub,
		Inquiries: &inquiries.Service{DB: db, Notifier: events.LogNotifier{Log: log}, Log: log},
	})
	return &testEnv{router: r, db: db, hub: hub}
}

// userToken stores a user with the given role and returns a token for it
func (e *testEnv) userToken(t *testing.T, email string, role models.UserRole) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: email, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := middleware.GenerateToken(&user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func address(name, city string) models.Address {
	return models.Address{Name: name, Address: "1 Main St", City: city, Zip: "1000", Country: "US", Phone: "5550100"}
}

func bookingBody(from, to string) models.BookingRequest {
	return models.BookingRequest{
		ServiceType:      "road",
		PackageType:      "box",
		Weight:           5,
		Dimensions:       "20x20x20",
		PickupAddress:    address("Ann", from),
		DeliveryAddress:  address("Bob", to),
		PickupDate:       "2026-03-03",
		PickupTimeWindow: "morning",
		PaymentMethod:    models.PaymentCredit,
	}
}

func (e *testEnv) book(t *testing.T, token, from, to string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/bookings/", token, bookingBody(from, to))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.BookingResponse](t, w).LRNo
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	env := newEnv(t)

	reg := handlers.RegisterRequest{Name: "Cara", Email: "Cara@Example.com", Password: "secret1"}
	w := env.do(t, http.MethodPost, "/api/register", "", reg)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[handlers.AuthResponse](t, w)
	assert.Equal(t, models.RoleClient, created.User.Role)
	assert.Equal(t, "cara@example.com", created.User.Email)

	w = env.do(t, http.MethodPost, "/api/register", "", reg)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/login", "", handlers.LoginRequest{Email: "cara@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password.", decode[map[string]string](t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/login", "", handlers.LoginRequest{Email: "cara@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[handlers.AuthResponse](t, w)
	require.NotEmpty(t, login.Token)

	w = env.do(t, http.MethodGet, "/api/profile", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_type":"client"`)
}

func TestAdminCreatesStaff(t *testing.T) {
	env := newEnv(t)
	admin := env.userToken(t, "admin@x.io", models.RoleAdmin)
	client := env.userToken(t, "client@x.io", models.RoleClient)

	body := handlers.CreateUserRequest{
		RegisterRequest: handlers.RegisterRequest{Name: "Ag", Email: "agent@x.io", Password: "secret1"},
		Role:            models.RoleAgent,
	}
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/admin/users", client, body).Code)

	w := env.do(t, http.MethodPost, "/api/admin/users", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body.Email, body.Role = "boss@x.io", "owner"
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/admin/users", admin, body).Code)

	w = env.do(t, http.MethodGet, "/api/admin/users?role=agent", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])
}

func TestCreateBooking(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/bookings/", "", bookingBody("Chicago", "Houston"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[models.BookingResponse](t, w)
	assert.Equal(t, "1", resp.LRNo)
	assert.Equal(t, "Booking created successfully", resp.Message)
	assert.InDelta(t, 44.94, resp.Freight, 1e-9)

	bad := bookingBody("Chicago", "")
	bad.Dimensions = "big"
	w = env.do(t, http.MethodPost, "/api/bookings/", "", bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode[map[string]any](t, w)["details"].([]any)
	assert.Contains(t, details, "Dimensions must be given as LxWxH.")
	assert.Contains(t, details, "Delivery address must include city.")
}

func TestShipments_ClientScoping(t *testing.T) {
	env := newEnv(t)
	alice := env.userToken(t, "alice@x.io", models.RoleClient)
	bob := env.userToken(t, "bob@x.io", models.RoleClient)
	agent := env.userToken(t, "agent@x.io", models.RoleAgent)

	env.book(t, alice, "Chicago", "Houston")
	env.book(t, bob, "Dallas", "Phoenix")
	env.book(t, alice, "Toronto", "Montreal")

	w := env.do(t, http.MethodGet, "/api/shipments/", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ShipmentView](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/shipments/", agent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ShipmentView](t, w), 3)

	w = env.do(t, http.MethodGet, "/api/user-bookings/", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]models.Booking](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dallas", mine[0].FromLocation)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/shipments/", "", nil).Code)
}

func TestCustomerShipments_Pagination(t *testing.T) {
	env := newEnv(t)
	agent := env.userToken(t, "agent@x.io", models.RoleAgent)
	for range 3 {
		env.book(t, "", "Chicago", "Houston")
	}

	w := env.do(t, http.MethodGet, "/api/customer-shipments/?page_size=2&ordering=lr_no", agent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ShipmentPage](t, w)
	assert.EqualValues(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "1", page.Results[0].ID)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Nil(t, page.Previous)

	w = env.do(t, http.MethodGet, "/api/customer-shipments/?page_size=2&page=2&ordering=lr_no", agent, nil)
	page = decode[models.ShipmentPage](t, w)
	require.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.NotContains(t, *page.Previous, "page=")

	w = env.do(t, http.MethodGet, "/api/customer-shipments/?page_size=5000", agent, nil)
	assert.Len(t, decode[models.ShipmentPage](t, w).Results, 3)

	w = env.do(t, http.MethodGet, "/api/customer-shipments/?start_date=03/01/2026&end_date=2026-03-31", agent, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateShipmentStatus(t *testing.T) {
	env := newEnv(t)
	client := env.userToken(t, "client@x.io", models.RoleClient)
	agent := env.userToken(t, "agent@x.io", models.RoleAgent)
	admin := env.userToken(t, "admin@x.io", models.RoleAdmin)
	lr := env.book(t, client, "Chicago", "Houston")

	update := func(token string, status models.ShipmentStatus) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/api/update-shipment-status/", token,
			handlers.UpdateStatusRequest{LRNo: lr, Status: status, Location: "Memphis"})
	}

	assert.Equal(t, http.StatusForbidden, update(client, models.StatusOutForDelivery).Code)

	w := update(agent, models.StatusDelivered)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]any](t, w)
	assert.ElementsMatch(t, []any{"out-for-delivery", "delayed"}, body["valid_next_states"])

	w = update(agent, models.StatusOutForDelivery)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode[map[string]any](t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "in-transit", body["previous_status"])

	w = update(admin, models.StatusPending)
	assert.Equal(t, http.StatusOK, w.Code, "admin override")

	w = env.do(t, http.MethodPost, "/api/update-shipment-status/", agent,
		handlers.UpdateStatusRequest{LRNo: "999", Status: models.StatusDelayed})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/update-shipment-status/", agent, map[string]string{"lr_no": lr})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackShipment(t *testing.T) {
	env := newEnv(t)
	lr := env.book(t, "", "Chicago", "Houston")

	w := env.do(t, http.MethodPost, "/api/track_shipment/", "", handlers.TrackRequest{LRNo: " "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shipments.TrackingRequiredMessage, decode[map[string]any](t, w)["message"])

	w = env.do(t, http.MethodPost, "/api/track_shipment/", "", handlers.TrackRequest{LRNo: "404"})
	require.Equal(t, http.StatusOK, w.Code)
	miss := decode[models.TrackingResult](t, w)
	assert.False(t, miss.Success)
	assert.Equal(t, shipments.TrackingNotFoundMessage, miss.Message)

	w = env.do(t, http.MethodPost, "/api/track_shipment/", "", handlers.TrackRequest{LRNo: lr})
	require.Equal(t, http.StatusOK, w.Code)
	hit := decode[models.TrackingResult](t, w)
	assert.True(t, hit.Success)
	assert.Equal(t, "Road Freight", hit.Service)
	require.Len(t, hit.Updates, 1)
	assert.Equal(t, "Order Placed", hit.Updates[0].Status)
}

func TestExportCSV(t *testing.T) {
	env := newEnv(t)
	client := env.userToken(t, "client@x.io", models.RoleClient)
	admin := env.userToken(t, "admin@x.io", models.RoleAdmin)
	env.book(t, client, "Chicago", "Houston")
	env.book(t, "", "Dallas", "Phoenix")

	w := env.do(t, http.MethodGet, "/api/export-customer-shipments-csv/", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shipments.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(exports.CustomerHeader, ","), strings.TrimSpace(lines[0]))
	assert.Empty(t, w.Header().Get(handlers.ExportArchiveHeader))

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/export-all-customer-shipments-csv/", client, nil).Code)

	w = env.do(t, http.MethodGet, "/api/export-all-customer-shipments-csv/", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "all_shipments.csv")
	assert.Len(t, strings.Split(strings.TrimSpace(w.Body.String()), "\n"), 3)
}

func TestContact(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/api/contact/", "", handlers.ContactRequest{Name: "Dee", Email: "d@x.io"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, inquiries.MissingFieldsMessage, decode[map[string]string](t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/contact/", "", handlers.ContactRequest{
		Name: "Dee", Email: "d@x.io", Subject: "Rates", Message: "Do you ship to Oslo?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Inquiry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBookingDraftFlow(t *testing.T) {
	env := newEnv(t)
	owner := env.userToken(t, "owner@x.io", models.RoleClient)
	other := env.userToken(t, "other@x.io", models.RoleClient)

	w := env.do(t, http.MethodPost, "/api/booking-drafts", owner, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[handlers.DraftView](t, w)
	assert.Equal(t, "service", view.StepName)
	base := "/api/booking-drafts/" + view.ID

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, base, other, nil).Code)

	w = env.do(t, http.MethodPost, base+"/next", owner, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "service", decode[map[string]any](t, w)["step"])

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/service", owner, map[string]string{"service_type": "rail"}).Code)

	w = env.do(t, http.MethodPost, base+"/service", owner, map[string]string{"service_type": "air"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[handlers.DraftView](t, w)
	assert.Equal(t, "package", view.StepName)
	assert.InDelta(t, 104.94, view.Estimate.Total, 1e-9)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/next", owner, nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base+"/next", owner, nil).Code)

	pickup, delivery := address("Ann", "New York"), address("Bob", "Toronto")
	w = env.do(t, http.MethodPatch, base, owner, map[string]any{"pickup": pickup, "delivery": delivery})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/next", owner, nil).Code)

	w = env.do(t, http.MethodPatch, base, owner, map[string]any{"pickup_date": "2026-03-05", "pickup_time_window": "evening"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, base+"/next", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payment", decode[handlers.DraftView](t, w).StepName)

	w = env.do(t, http.MethodPost, base+"/submit", owner, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, "card details missing")

	card := map[string]string{"number": "4111111111111111", "name": "Ann", "expiry": "12/29", "cvv": "123"}
	w = env.do(t, http.MethodPatch, base, owner, map[string]any{"card": card})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[handlers.DraftView](t, w)
	assert.Equal(t, "************1111", view.Draft.Card.Number)
	assert.Equal(t, "***", view.Draft.Card.CVV)

	w = env.do(t, http.MethodPost, base+"/submit", owner, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view = decode[handlers.DraftView](t, w)
	assert.Equal(t, "success", view.StepName)
	assert.Equal(t, "1", view.Reference)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, owner, nil).Code)

	w = env.do(t, http.MethodGet, "/api/user-bookings/", owner, nil)
	bookings := decode[[]models.Booking](t, w)
	require.Len(t, bookings, 1)
	assert.Equal(t, "air", bookings[0].ServiceType)
	assert.Equal(t, "New York", bookings[0].FromLocation)
}

// draftAtPayment drives a new cash-on-delivery draft to the payment step
func (e *testEnv) draftAtPayment(t *testing.T, token string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/booking-drafts", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/booking-drafts/" + decode[handlers.DraftView](t, w).ID

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, base+"/service", token, map[string]string{"service_type": "road"}).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, base+"/next", token, nil).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPatch, base, token, map[string]any{
		"pickup":   address("Ann", "Chicago"),
		"delivery": address("Bob", "Houston"),
	}).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, base+"/next", token, nil).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPatch, base, token, map[string]any{
		"pickup_date":        "2026-03-05",
		"pickup_time_window": "morning",
		"payment_method":     models.PaymentCashOnDelivery,
	}).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, base+"/next", token, nil).Code)
	return base
}

func TestBookingDraft_SubmitOnce(t *testing.T) {
	env := newEnv(t)
	owner := env.userToken(t, "owner@x.io", models.RoleClient)
	base := env.draftAtPayment(t, owner)

	codes := make([]int, 6)
	bodies := make([]map[string]any, 6)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := env.do(t, http.MethodPost, base+"/submit", owner, nil)
			codes[i] = w.Code
			_ = json.Unmarshal(w.Body.Bytes(), &bodies[i])
		}()
	}
	wg.Wait()

	created := 0
	for i, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			assert.Equal(t, "1", bodies[i]["lr_no"])
		default:
			t.Errorf("unexpected status %d: %v", code, bodies[i])
		}
	}
	assert.Equal(t, 1, created)

	var count int64
	require.NoError(t, env.db.Model(&models.Booking{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	w := env.do(t, http.MethodPost, base+"/submit", owner, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "1", decode[map[string]any](t, w)["lr_no"])
}

func TestTrackingWebsocket(t *testing.T) {
	env := newEnv(t)
	agent := env.userToken(t, "agent@x.io", models.RoleAgent)
	lr := env.book(t, "", "Chicago", "Houston")

	srv := httptest.NewServer(env.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/track/"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"999", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+lr, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var snapshot models.TrackingResult
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, lr, snapshot.TrackingNumber)

	require.Eventually(t, func() bool { return env.hub.Subscribers(lr) == 1 }, 2*time.Second, 10*time.Millisecond)

	w := env.do(t, http.MethodPost, "/api/update-shipment-status/", agent,
		handlers.UpdateStatusRequest{LRNo: lr, Status: models.StatusDelayed})
	require.Equal(t, http.StatusOK, w.Code)

	var ev events.ShipmentEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.TypeStatusChanged, ev.Type)
	assert.Equal(t, models.StatusDelayed, ev.Status)
	assert.Equal(t, models.StatusInTransit, ev.PreviousStatus)
}

func TestRecoveryKeepsServing(t *testing.T) {
	env := newEnv(t)
	env.router.GET("/panic", func(*gin.Context) { panic("boom") })

	w := env.do(t, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, middleware.RecoveryMessage, decode[map[string]string](t, w)["error"])
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "", nil).Code)
}
