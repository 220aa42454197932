package main

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/audit"
	"github.com/prescripto/prescripto-api/internal/config"
	dbpkg "github.com/prescripto/prescripto-api/internal/db"
	domainAppointment "github.com/prescripto/prescripto-api/internal/domain/appointment"
	domainPayment "github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/infra/cache"
	"github.com/prescripto/prescripto-api/internal/infra/notify"
	"github.com/prescripto/prescripto-api/internal/infra/payment"
	"github.com/prescripto/prescripto-api/internal/infra/storage"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/notification"
	"github.com/prescripto/prescripto-api/internal/routes"
	"github.com/prescripto/prescripto-api/internal/timezone"
)

// app owns the background workers; Close drains them.
type app struct {
	routes.Deps

	notifier *notification.Dispatcher
	auditor  *audit.Dispatcher
}

func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	notifier := notification.NewDispatcher(
		emailSender(cfg, log),
		smsSender(cfg, log),
		notification.NewGormLog(db),
		log,
		m,
		cfg.NotificationQueue,
	)
	auditor := audit.NewDispatcher(audit.NewGormWriter(db), log)

	return &app{
		Deps: routes.Deps{
			DB:       db,
			Config:   cfg,
			Log:      log,
			Metrics:  m,
			Cache:    slotCache(cfg, log, m),
			Gateways: gateways(cfg, log),
			Notifier: notifier,
			Audit:    auditor,
			Store:    objectStore(cfg, log),
			Location: timezone.Location(cfg.ClinicTimezone),
		},
		notifier: notifier,
		auditor:  auditor,
	}, nil
}

func (a *app) Close() {
	a.notifier.Close()
	a.auditor.Close()
}

// --------- Collaborators, each with a local fallback ---------

func slotCache(cfg *config.Config, log *logger.Logger, m *metrics.Collector) domainAppointment.SlotCache {
	if cfg.RedisURL == "" {
		return cache.NoopSlotCache{}
	}

	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("redis disabled")
		return cache.NoopSlotCache{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, slot cache disabled")
		return cache.NoopSlotCache{}
	}

	return cache.NewRedisSlotCache(client, cfg.SlotCacheTTL, log, m)
}

func gateways(cfg *config.Config, log *logger.Logger) domainPayment.Resolver {
	var gws []domainPayment.Gateway

	if cfg.MercadoPagoAccessToken != "" {
		mp, err := payment.NewMercadoPago(cfg.MercadoPagoAccessToken)
		if err != nil {
			log.WithError(err).Warn("mercadopago disabled")
		} else {
			gws = append(gws, mp)
		}
	}

	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gws = append(gws, payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret))
	}

	reg := payment.NewRegistry(cfg.PaymentGateway, gws...)
	log.WithField("provider", reg.Default().Name()).Info("payment gateway ready")
	return reg
}

func emailSender(cfg *config.Config, log *logger.Logger) notification.EmailSender {
	if cfg.SMTPHost == "" {
		return notify.NewLogEmailSender(log)
	}
	return notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
}

func smsSender(cfg *config.Config, log *logger.Logger) notification.SMSSender {
	if cfg.TwilioAccountSID == "" {
		return notify.NewLogSMSSender(log)
	}
	return notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
}

func objectStore(cfg *config.Config, log *logger.Logger) storage.Store {
	if cfg.S3Bucket == "" {
		log.Warn("S3_BUCKET not set, files are kept in memory")
		return storage.NewMemoryStore()
	}
	return storage.NewS3Store(storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.AWSAccessKeyID,
		SecretKey: cfg.AWSSecretKey,
		PublicURL: cfg.PublicAssetsURL,
	})
}
