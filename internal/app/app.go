package app

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/kallbadhuset/bastubokning/internal/access"
	"github.com/kallbadhuset/bastubokning/internal/booking"
	"github.com/kallbadhuset/bastubokning/internal/directus"
	"github.com/kallbadhuset/bastubokning/internal/domain"
	"github.com/kallbadhuset/bastubokning/internal/iot"
	"github.com/kallbadhuset/bastubokning/internal/mailer"
	"github.com/kallbadhuset/bastubokning/internal/swish"
	appvalidator "github.com/kallbadhuset/bastubokning/internal/validator"
	"github.com/kallbadhuset/bastubokning/internal/vcs"
	"github.com/redis/go-redis/v9"
)

var (
	version = vcs.Version()
)

type application struct {
	config    config
	logger    *slog.Logger
	validator *validator.Validate
	redis     redis.UniversalClient
	mailer    mailer.Mailer

	slotRepo        domain.SlotRepository
	bookingRepo     domain.BookingRepository
	couponRepo      domain.CouponRepository
	transactionRepo domain.TransactionRepository
	userRepo        domain.UserRepository
	memberRepo      domain.MemberRepository
	priceRepo       domain.PriceRepository

	gateway     domain.PaymentGateway
	finalizer   *booking.Finalizer
	canceller   *booking.Canceller
	temperature *iot.Client
}

type config struct {
	port      int
	env       string
	publicURL string

	cms struct {
		url         string
		token       string
		bathersRole string
	}
	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	swish struct {
		url         string
		qrURL       string
		alias       string
		callbackURL string
		certBase64  string
		keyBase64   string
		caBase64    string
		message     string
	}
	access struct {
		url      string
		token    string
		deviceID string
	}
	iot struct {
		url      string
		username string
		password string
		deviceID string
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
}

func Run() error {
	var cfg config

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.publicURL, "public-url", envString("PUBLIC_URL", "https://falkenbergskallbad.se"),
		"Public site URL used in payment app callbacks")

	flag.StringVar(&cfg.cms.url, "cms-url", envString("CMS_URL", ""), "Document store URL")
	flag.StringVar(&cfg.cms.token, "cms-token", envString("CMS_ACCESS_TOKEN", ""), "Document store access token")
	flag.StringVar(&cfg.cms.bathersRole, "cms-bathers-role", envString("CMS_BATHERS_ROLE", ""),
		"Document store role id for bathers created by the booking flow")

	flag.StringVar(&cfg.redis.url, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.swish.url, "swish-url", envString("SWISH_API_BASE_URL", ""), "Swish API base URL")
	flag.StringVar(&cfg.swish.qrURL, "swish-qr-url",
		envString("SWISH_QR_URL", "https://mpc.getswish.net/qrg-swish/api/v1/commerce"), "Swish QR commerce endpoint")
	flag.StringVar(&cfg.swish.alias, "swish-alias", envString("SWISH_ALIAS", ""), "Swish payee alias")
	flag.StringVar(&cfg.swish.callbackURL, "swish-callback-url", envString("SWISH_CALLBACK_URL", ""), "Swish callback URL")
	flag.StringVar(&cfg.swish.certBase64, "swish-cert", envString("SWISH_PUBLIC_PEM", ""), "Swish client certificate (base64 PEM)")
	flag.StringVar(&cfg.swish.keyBase64, "swish-key", envString("SWISH_PRIVATE_KEY", ""), "Swish client key (base64 PEM)")
	flag.StringVar(&cfg.swish.caBase64, "swish-ca", envString("SWISH_CA_PEM", ""), "Swish CA bundle (base64 PEM)")
	flag.StringVar(&cfg.swish.message, "swish-message", "Bastu Falkenbergs Kallbad", "Payment message shown in the payer's app")

	flag.StringVar(&cfg.access.url, "access-url", envString("ACCESS_API_URL", "https://connect.getseam.com"), "Access control API URL")
	flag.StringVar(&cfg.access.token, "access-token", envString("ACCESS_API_TOKEN", ""), "Access control API token")
	flag.StringVar(&cfg.access.deviceID, "access-device", envString("ACCESS_DEVICE_ID", ""), "Door lock device id")

	flag.StringVar(&cfg.iot.url, "iot-url", envString("IOT_API_URL", ""), "Sensor platform URL")
	flag.StringVar(&cfg.iot.username, "iot-username", envString("IOT_USERNAME", ""), "Sensor platform username")
	flag.StringVar(&cfg.iot.password, "iot-password", envString("IOT_PASSWORD", ""), "Sensor platform password")
	flag.StringVar(&cfg.iot.deviceID, "iot-device", envString("IOT_DEVICE_ID", ""), "Water temperature device id")

	flag.StringVar(&cfg.smtp.host, "smtp-host", envString("SMTP_HOST", ""), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "Falkenbergs Kallbad <no-reply@falkenbergskallbad.se>", "SMTP sender")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cmsClient := directus.NewClient(cfg.cms.url, cfg.cms.token)

	slotRepo := directus.NewSlotRepository(cmsClient)
	bookingRepo := directus.NewBookingRepository(cmsClient)
	couponRepo := directus.NewCouponRepository(cmsClient)
	transactionRepo := directus.NewTransactionRepository(cmsClient)
	userRepo := directus.NewUserRepository(cmsClient, cfg.cms.bathersRole)
	memberRepo := directus.NewMemberRepository(cmsClient)
	priceRepo := directus.NewPriceRepository(cmsClient)

	gateway, err := newSwishClient(cfg, logger)
	if err != nil {
		return err
	}

	accessClient := access.NewClient(cfg.access.url, cfg.access.token, cfg.access.deviceID)

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	smtpMailer := mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)

	finalizer := booking.NewFinalizer(booking.FinalizerOptions{
		Logger:       logger,
		Slots:        slotRepo,
		Bookings:     bookingRepo,
		Coupons:      couponRepo,
		Transactions: transactionRepo,
		Users:        userRepo,
		AccessCodes:  accessClient,
		Locker:       booking.NewRedisSlotLocker(redisClient),
		Idempotency:  booking.NewRedisIdempotencyGuard(redisClient),
		Mailer:       smtpMailer,
	})

	canceller := booking.NewCanceller(booking.CancellerOptions{
		Logger:   logger,
		Bookings: bookingRepo,
		Slots:    slotRepo,
		Coupons:  couponRepo,
		Gateway:  gateway,
		Mailer:   smtpMailer,
	})

	app := &application{
		config:          cfg,
		logger:          logger,
		validator:       appvalidator.NewValidator(),
		redis:           redisClient,
		mailer:          smtpMailer,
		slotRepo:        slotRepo,
		bookingRepo:     bookingRepo,
		couponRepo:      couponRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
		memberRepo:      memberRepo,
		priceRepo:       priceRepo,
		gateway:         gateway,
		finalizer:       finalizer,
		canceller:       canceller,
		temperature:     iot.NewClient(cfg.iot.url, cfg.iot.username, cfg.iot.password, cfg.iot.deviceID, logger),
	}

	return app.run()
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// newSwishClient decodes the base64 PEM material the certificates are
// provisioned as and builds the mutually authenticated gateway client.
func newSwishClient(cfg config, logger *slog.Logger) (*swish.Client, error) {
	decode := func(value string) ([]byte, error) {
		if value == "" {
			return nil, nil
		}
		return base64.StdEncoding.DecodeString(value)
	}

	certPEM, err := decode(cfg.swish.certBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding swish certificate: %w", err)
	}
	keyPEM, err := decode(cfg.swish.keyBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding swish key: %w", err)
	}
	caPEM, err := decode(cfg.swish.caBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding swish CA bundle: %w", err)
	}

	return swish.NewClient(swish.Config{
		BaseURL:     cfg.swish.url,
		QRCodeURL:   cfg.swish.qrURL,
		PayeeAlias:  cfg.swish.alias,
		CallbackURL: cfg.swish.callbackURL,
		CertPEM:     certPEM,
		KeyPEM:      keyPEM,
		CAPEM:       caPEM,
	}, logger)
}

func newRedisClient(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func (app *application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealth)

	r.Get("/slots", app.ListSlotsHandler)
	r.Get("/slots/{id}", app.GetSlotHandler)
	r.Get("/temperature", app.GetTemperatureHandler)

	r.Get("/membership", app.CheckMembershipHandler)
	r.Post("/members", app.CreateMemberHandler)

	r.Get("/coupons", app.ListCouponsHandler)
	r.Post("/coupons", app.CreateCouponHandler)

	r.Post("/payments", app.CreatePaymentHandler)
	r.Get("/payments/{id}", app.GetPaymentStatusHandler)
	r.Post("/payments/{id}/await", app.AwaitPaymentHandler)

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", app.FinalizeBookingHandler)
		r.Post("/coupon", app.CouponBookingHandler)
		r.Get("/{uuid}", app.GetBookingHandler)
		r.Post("/{id}/cancel", app.CancelBookingHandler)
	})

	return r
}
