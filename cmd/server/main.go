package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/internal/gateway/mercadopago"
	"github.com/planetaagua/storefront/internal/httpserver"
	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/search"
	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/pkg/config"
	"github.com/planetaagua/storefront/pkg/db"
	"github.com/planetaagua/storefront/pkg/logging"
	loggingmw "github.com/planetaagua/storefront/pkg/middleware/logging"
	"github.com/planetaagua/storefront/pkg/middleware/ratelimit"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env not loaded: %v, using process environment", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	if err := models.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	gateway, err := mercadopago.New(cfg.MercadoPagoToken, cfg.MercadoPagoBaseURL, cfg.MercadoPagoTimeout)
	if err != nil {
		log.Fatal(err)
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			log.Fatal(err)
		}
		publisher = kp
	}

	var searcher search.Searcher = &search.StoreSearcher{DB: gdb}
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Printf("elasticsearch unavailable, falling back to store search: %v", err)
		} else {
			searcher = search.NewESSearcher(esClient, cfg.ESIndex)
		}
	}

	var rdb *redis.Client
	var rateLimit echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		limiter, err := ratelimit.NewFixedWindowLimiter(rdb, cfg.ServiceName+":auth", cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatal(err)
		}
		rateLimit = limiter.Middleware()
	}

	users := repo.NewGormRepo[models.User](gdb)
	addresses := repo.NewGormRepo[models.Address](gdb)
	orders := repo.NewGormRepo[models.Order](gdb)
	saga := &service.OrderSaga{Orders: orders, Items: repo.NewGormRepo[models.OrderItem](gdb), Events: publisher}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Health: &httpserver.HealthHTTP{StartedAt: time.Now()},
		Auth:   &httpserver.AuthHTTP{Svc: &service.AuthService{Users: users, JWTSecret: cfg.JWTSecret, Events: publisher}},
		Products: &httpserver.ProductHTTP{Svc: &service.CatalogService{
			Products: repo.NewGormRepo[models.Product](gdb),
			Search:   searcher,
		}},
		Addresses: &httpserver.AddressHTTP{Svc: &service.AddressService{Addresses: addresses}},
		Cards:     &httpserver.CardHTTP{Svc: &service.CardService{Cards: repo.NewGormRepo[models.CreditCard](gdb)}},
		Orders:    &httpserver.OrderHTTP{Svc: &service.OrderService{Orders: orders, Addresses: addresses, Saga: saga}},
		Payments: &httpserver.PaymentHTTP{Svc: &service.PaymentService{
			Gateway:     gateway,
			Users:       users,
			Addresses:   addresses,
			Orders:      orders,
			Saga:        saga,
			Events:      publisher,
			FrontendURL: cfg.FrontendURL,
			APIURL:      cfg.APIURL,
		}},
		JWTSecret: cfg.JWTSecret,
		RateLimit: rateLimit,
	})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen %s: %v", addr, err)
	}

	srv := &http.Server{
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		log.Println("force exit")
		os.Exit(1)
	}()

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Printf("db close error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
