package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "trustlend-backend/internal/adapter/http"
	"trustlend-backend/internal/adapter/middleware"
	"trustlend-backend/internal/adapter/repository/mysql"
	"trustlend-backend/internal/adapter/scheduler"
	"trustlend-backend/internal/config"
	"trustlend-backend/internal/infrastructure/cache"
	"trustlend-backend/internal/infrastructure/db"
	eligibilityUc "trustlend-backend/internal/usecase/eligibility"
	loanUc "trustlend-backend/internal/usecase/loan"
	matchingUc "trustlend-backend/internal/usecase/matching"
	paymentUc "trustlend-backend/internal/usecase/payment"
	trustUc "trustlend-backend/internal/usecase/trust"
	voucherUc "trustlend-backend/internal/usecase/voucher"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	gdb, err := db.OpenGorm(db.Options{DSN: cfg.MySQLDSN(), LogQueries: cfg.LogSQL}, log)
	if err != nil {
		log.WithError(err).Fatal("mysql connection failed")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		// Redis backs idempotency and the score cache; run degraded without it.
		log.WithError(err).Warn("redis unavailable, idempotency and caching disabled")
		rdb = nil
	}

	// repositories
	loans := mysql.NewLoanRepository(gdb)
	schedules := mysql.NewScheduleRepository(gdb)
	matches := mysql.NewMatchRepository(gdb)
	trustRepo := mysql.NewTrustRepository(gdb)
	vouchers := mysql.NewVoucherRepository(gdb)
	lenders := mysql.NewLenderRepository(gdb)
	borrowers := mysql.NewBorrowerRepository(gdb)
	notify := mysql.NewNotificationSink(gdb)
	tx := mysql.NewGormUoW(gdb)

	// usecases
	trust := trustUc.NewUsecase(trustRepo, borrowers, rdb, log)
	voucher := voucherUc.NewUsecase(vouchers, trust, log)
	eligibility := eligibilityUc.NewUsecase(borrowers, loans, lenders)
	loan := loanUc.NewUsecase(loans, schedules, eligibility, log)
	matching := matchingUc.NewUsecase(tx, loans, matches, lenders, borrowers, voucher, notify, log)
	payment := paymentUc.NewUsecase(tx, loans, schedules, borrowers, lenders, trust, voucher, notify, log, cfg.TierLoansToAdvance)

	// background sweeps
	sched := scheduler.New(matching, payment, log)
	if err := sched.Register(cfg.OfferExpirySchedule, cfg.MissedSweepSchedule); err != nil {
		log.WithError(err).Fatal("invalid cron schedule")
	}
	sched.Start()
	defer sched.Stop()

	// http
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	h := httpadp.NewHandler(gdb, rdb)
	loanH := httpadp.NewLoanHandler(loan)
	matchH := httpadp.NewMatchHandler(matching)
	eligH := httpadp.NewEligibilityHandler(eligibility)
	trustH := httpadp.NewTrustHandler(trust)
	voucherH := httpadp.NewVoucherHandler(voucher)
	webhookH := httpadp.NewWebhookHandler(payment, log)

	e.GET("/health", h.Health)

	api := e.Group("/api/v1")
	if rdb != nil {
		api.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log))
	}
	api.POST("/loans", loanH.CreateLoan)
	api.GET("/loans/:loan_id", loanH.GetLoan)
	api.GET("/loans/:loan_id/schedule", loanH.GetSchedule)
	api.POST("/loans/:loan_id/offers", matchH.CreateOffers)
	api.POST("/offers/:match_id/respond", matchH.Respond)
	api.POST("/vouches", voucherH.CreateVouch)
	api.GET("/borrowers/:borrower_id/eligibility", eligH.Check)
	api.GET("/users/:user_id/trust-score", trustH.GetScore)
	api.GET("/users/:user_id/trust-events", trustH.GetHistory)

	// provider callbacks are deduplicated downstream, not by the middleware
	e.POST("/webhooks/transfers", webhookH.TransferEvent)

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil {
			log.WithError(err).Info("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	if err := e.Close(); err != nil {
		log.WithError(err).Warn("server close failed")
	}
}
