package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/internal/gateway/mercadopago"
	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/search"
	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/pkg/db"
	"github.com/planetaagua/storefront/pkg/logging"
	loggingmw "github.com/planetaagua/storefront/pkg/middleware/logging"
)

var testSecret = []byte("test-jwt-secret")

// fakeMP is a stand-in Mercado Pago API.
type fakeMP struct {
	mu       sync.Mutex
	status   string
	payments map[string]mercadopago.Payment
	nextID   int64
}

func (f *fakeMP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/checkout/preferences":
		var req mercadopago.PreferenceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(mercadopago.Preference{
			ID: "pref-1", InitPoint: "https://mp/init/pref-1", ExternalReference: req.ExternalReference,
		})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/payments":
		var req mercadopago.PaymentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.nextID++
		p := mercadopago.Payment{
			ID:                1000 + f.nextID,
			Status:            f.status,
			ExternalReference: req.ExternalReference,
			TransactionAmount: req.TransactionAmount,
			PaymentMethodID:   req.PaymentMethodID,
			Installments:      req.Installments,
		}
		f.payments[jsonID(p.ID)] = p
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(p)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/payments/"):
		p, ok := f.payments[strings.TrimPrefix(r.URL.Path, "/v1/payments/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": 404, "message": "Payment not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeMP) setPaymentStatus(id int64, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.payments[jsonID(id)]
	p.Status = status
	f.payments[jsonID(id)] = p
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

type testEnv struct {
	E      *echo.Echo
	DB     *gorm.DB
	MP     *fakeMP
	Events *events.Recorder
}

type envOption func(*service.OrderSaga)

func withItems(items repo.Repository[models.OrderItem]) envOption {
	return func(s *service.OrderSaga) { s.Items = items }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	gdb, err := db.OpenSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, models.Migrate(gdb))

	mp := &fakeMP{status: mercadopago.StatusApproved, payments: map[string]mercadopago.Payment{}}
	srv := httptest.NewServer(mp)
	t.Cleanup(srv.Close)
	gw, err := mercadopago.New("TEST-token", srv.URL, 2*time.Second)
	require.NoError(t, err)

	rec := &events.Recorder{}
	users := repo.NewGormRepo[models.User](gdb)
	addresses := repo.NewGormRepo[models.Address](gdb)
	orders := repo.NewGormRepo[models.Order](gdb)
	saga := &service.OrderSaga{Orders: orders, Items: repo.NewGormRepo[models.OrderItem](gdb), Events: rec}
	for _, opt := range opts {
		opt(saga)
	}

	e := echo.New()
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))
	Register(e, &Deps{
		Health: &HealthHTTP{StartedAt: time.Now()},
		Auth:   &AuthHTTP{Svc: &service.AuthService{Users: users, JWTSecret: testSecret, Events: rec}},
		Products: &ProductHTTP{Svc: &service.CatalogService{
			Products: repo.NewGormRepo[models.Product](gdb),
			Search:   &search.StoreSearcher{DB: gdb},
		}},
		Addresses: &AddressHTTP{Svc: &service.AddressService{Addresses: addresses}},
		Cards:     &CardHTTP{Svc: &service.CardService{Cards: repo.NewGormRepo[models.CreditCard](gdb)}},
		Orders:    &OrderHTTP{Svc: &service.OrderService{Orders: orders, Addresses: addresses, Saga: saga}},
		Payments: &PaymentHTTP{Svc: &service.PaymentService{
			Gateway:     gw,
			Users:       users,
			Addresses:   addresses,
			Orders:      orders,
			Saga:        saga,
			Events:      rec,
			FrontendURL: "http://localhost:3000",
			APIURL:      "http://localhost:3001",
		}},
		JWTSecret: testSecret,
	})

	return &testEnv{E: e, DB: gdb, MP: mp, Events: rec}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// register signs a user up and logs them in, returning the bearer token.
func (env *testEnv) register(t *testing.T, name, email string) (string, uint) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/signup", map[string]string{"name": name, "email": email, "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/login", map[string]string{"email": email, "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func (env *testEnv) product(t *testing.T, name string, price float64) models.Product {
	t.Helper()
	p := models.Product{Name: name, Description: name + " description", Price: price, ImageURL: "https://img/" + name}
	require.NoError(t, env.DB.Create(&p).Error)
	return p
}

func (env *testEnv) address(t *testing.T, token string) models.Address {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/addresses", map[string]string{
		"street": "Rua das Flores", "number": "10", "neighborhood": "Boa Viagem",
		"city": "Recife", "state": "PE", "zip_code": "51020-000",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var a models.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	return a
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
