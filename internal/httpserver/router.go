package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/validate"
	authmw "github.com/planetaagua/storefront/pkg/middleware/auth"
)

type Deps struct {
	Health    *HealthHTTP
	Auth      *AuthHTTP
	Products  *ProductHTTP
	Addresses *AddressHTTP
	Cards     *CardHTTP
	Orders    *OrderHTTP
	Payments  *PaymentHTTP
	JWTSecret []byte
	// RateLimit guards signup and login; nil disables it.
	RateLimit echo.MiddlewareFunc
}

// Configure installs the validator and JSON error handler on e.
func Configure(e *echo.Echo) {
	e.Validator = validate.New()
	e.HTTPErrorHandler = ErrorHandler
}

func Register(e *echo.Echo, d *Deps) {
	Configure(e)

	e.GET("/", d.Health.Root)
	e.GET("/health", d.Health.Health)

	var limited []echo.MiddlewareFunc
	if d.RateLimit != nil {
		limited = append(limited, d.RateLimit)
	}
	e.POST("/signup", d.Auth.Signup, limited...)
	e.POST("/login", d.Auth.Login, limited...)

	e.GET("/products", d.Products.List)
	e.GET("/products/search", d.Products.Search)
	e.GET("/products/:id", d.Products.Get)

	e.POST("/payments/webhook", d.Payments.Webhook)

	// Bearer auth is per route so unknown paths stay 404.
	auth := authmw.NewBearer(d.JWTSecret).RequireAuth

	e.GET("/profile", d.Auth.Profile, auth)

	e.GET("/addresses", d.Addresses.List, auth)
	e.POST("/addresses", d.Addresses.Create, auth)
	e.PUT("/addresses/:id", d.Addresses.Update, auth)
	e.DELETE("/addresses/:id", d.Addresses.Delete, auth)

	e.GET("/credit-cards", d.Cards.List, auth)
	e.POST("/credit-cards", d.Cards.Create, auth)
	e.DELETE("/credit-cards/:id", d.Cards.Delete, auth)

	e.POST("/orders", d.Orders.Create, auth)
	e.GET("/orders", d.Orders.List, auth)
	e.POST("/orders/process", d.Orders.Process, auth)

	e.POST("/payments/create-preference", d.Payments.CreatePreference, auth)
	e.POST("/payments/process", d.Payments.Process, auth)
}
