package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpadp "device-approval-backend/internal/adapter/http"
	"device-approval-backend/internal/adapter/repository/mysql"
	"device-approval-backend/internal/config"
	"device-approval-backend/internal/infrastructure/cache"
	"device-approval-backend/internal/infrastructure/db"
	"device-approval-backend/internal/infrastructure/logging"
	"device-approval-backend/internal/infrastructure/mail"
	"device-approval-backend/internal/infrastructure/queue"
	ucApproval "device-approval-backend/internal/usecase/approval"
	ucNotification "device-approval-backend/internal/usecase/notification"

	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, os.Stdout)
	log := logrus.NewEntry(logger).WithField("service", "device-approval")

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.WithError(err).Fatal("database handle")
	}
	if cfg.DBMigrateOnStart {
		if err := db.AutoMigrate(gdb); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		log.WithError(err).Fatal("open redis")
	}

	mailer, err := mail.NewSMTPMailer(mail.Config{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		User:       cfg.SMTP.User,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		TLSEnabled: cfg.SMTP.TLSEnabled,
	}, log.WithField("component", "mail"))
	if err != nil {
		log.WithError(err).Fatal("init mailer")
	}

	qcfg := queue.DefaultConfig()
	qcfg.Buffer = cfg.NotifyQueueBuffer
	qcfg.MaxRetries = cfg.NotifyMaxRetries
	qcfg.RetryDelay = cfg.NotifyRetryDelay
	notices := queue.New[ucNotification.Envelope](qcfg)

	users := mysql.NewDirectoryResolver(gdb)
	store := mysql.NewNotificationStore(gdb)
	dispatcher := ucNotification.NewDispatcher(notices, store, mailer, log.WithField("component", "dispatcher"), cfg.NotifyMaxRetries)

	approvals := ucApproval.NewUsecase(ucApproval.Deps{
		UoW:      mysql.NewGormUoW(gdb),
		Requests: mysql.NewApprovalRepository(gdb),
		Steps:    mysql.NewStepRepository(gdb),
		Comments: mysql.NewCommentRepository(gdb),
		Users:    users,
		Notifier: ucNotification.NewQueuePublisher(notices, log.WithField("component", "publisher"), 0),
		Log:      log.WithField("component", "approval"),
		LinkBase: cfg.AppBaseURL,
	})

	health := httpadp.NewHandler(
		httpadp.Check{Name: "mysql", Probe: sqlDB.PingContext},
		httpadp.Check{Name: "redis", Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	e := httpadp.NewEcho()
	e.Use(middleware.Logger())
	httpadp.Register(e, httpadp.RouterDeps{
		Approvals:     httpadp.NewApprovalHandler(approvals, log.WithField("component", "http")),
		Notifications: httpadp.NewNotificationHandler(ucNotification.NewService(store, users), log.WithField("component", "http")),
		Health:        health,
		Redis:         rdb,
		IdempTTL:      cfg.IdempotencyTTL(),
		Log:           log.WithField("component", "idempotency"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the dispatcher outlives the signal so queued notices can drain
	dispCtx, dispCancel := context.WithCancel(context.Background())
	defer dispCancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(dispCtx)
	}()

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	drain(shutdownCtx, notices)
	notices.Close()
	dispCancel()
	wg.Wait()

	if n := notices.DLQSize(); n > 0 {
		log.WithField("dead_letters", n).Warn("undelivered notices dropped at shutdown")
	}
	_ = rdb.Close()
	_ = sqlDB.Close()
}

func drain(ctx context.Context, q *queue.Queue[ucNotification.Envelope]) {
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for q.Size() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}
