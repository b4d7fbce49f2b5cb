// Command crmsync pushes branches, rooms, bookings, menu items, food orders,
// order items and service requests into the CRM. It runs once by default, or
// on a cron schedule with -cron.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"hotel-platform/config"
	"hotel-platform/crm"
	"hotel-platform/metrics"
)

type job struct {
	cfg    *config.Config
	sqlDB  *sql.DB
	rdb    *redis.Client
	log    *logrus.Logger
	source crm.Source
}

func main() {
	os.Exit(runMain())
}

func runMain() int {
	configPath := flag.String("config", "", "path to YAML config (defaults to CONFIG_PATH)")
	schedule := flag.String("cron", "", "cron schedule; empty runs once")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics on this address while running")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Error("load config")
		return 1
	}
	log := config.NewLogger(cfg.Logging)
	metrics.Register()

	if *schedule == "" {
		*schedule = cfg.Sync.Schedule
	}
	if *metricsAddr == "" {
		*metricsAddr = cfg.Sync.MetricsAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// schema changes belong to the API server
	cfg.Database.AutoMigrate = false
	db, err := config.ConnectDatabase(cfg.Database, config.AuthConfig{}, log)
	if err != nil {
		log.WithError(err).Error("database connect failed")
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("database handle")
		return 1
	}

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, running without sync lock")
	}

	j := &job{cfg: cfg, sqlDB: sqlDB, rdb: rdb, log: log, source: crm.NewGormSource(db)}
	defer j.close()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, log)
	}

	if *schedule == "" {
		if err := j.run(ctx); err != nil && !errors.Is(err, crm.ErrLocked) {
			return 1
		}
		return 0
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(*schedule, func() { _ = j.run(ctx) }); err != nil {
		log.WithError(err).WithField("schedule", *schedule).Error("invalid cron schedule")
		return 1
	}
	log.WithField("schedule", *schedule).Info("crm sync scheduled")
	c.Start()

	<-ctx.Done()
	log.Info("shutdown signal received, waiting for running sync")
	<-c.Stop().Done()
	return 0
}

// close releases the store and Redis connections.
func (j *job) close() {
	if j.rdb != nil {
		if err := j.rdb.Close(); err != nil {
			j.log.WithError(err).Warn("close redis")
		}
	}
	if j.sqlDB != nil {
		if err := j.sqlDB.Close(); err != nil {
			j.log.WithError(err).Warn("close database")
		}
	}
}

// run performs one sync with a fresh CRM session.
func (j *job) run(ctx context.Context) error {
	start := time.Now()
	log := j.log.WithField("run", start.Format(time.RFC3339))

	if j.rdb != nil {
		lock, err := crm.AcquireLock(ctx, j.rdb, j.cfg.Sync.LockKey, j.cfg.Sync.LockTTL)
		switch {
		case errors.Is(err, crm.ErrLocked):
			log.Info("previous crm sync still running, skipping")
			metrics.ObserveSyncRun("skipped", time.Since(start))
			return err
		case err != nil:
			log.WithError(err).Warn("crm sync lock unavailable, running without it")
		default:
			defer func() {
				if err := lock.Release(context.Background()); err != nil {
					log.WithError(err).Warn("release crm sync lock")
				}
			}()
		}
	}

	client, err := crm.Dial(ctx, crm.Config{
		LoginURL:      j.cfg.CRM.LoginURL,
		Username:      j.cfg.CRM.Username,
		Password:      j.cfg.CRM.Password,
		SecurityToken: j.cfg.CRM.SecurityToken,
		ClientID:      j.cfg.CRM.ClientID,
		ClientSecret:  j.cfg.CRM.ClientSecret,
		APIVersion:    j.cfg.CRM.APIVersion,
		Timeout:       j.cfg.CRM.Timeout,
	})
	if err != nil {
		log.WithError(err).Error("crm authentication failed")
		metrics.ObserveSyncRun("failed", time.Since(start))
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			log.WithError(err).Warn("revoke crm token")
		}
	}()

	report, err := crm.NewSyncer(j.source, client, log).Run(ctx)
	if err != nil {
		log.WithError(err).Error("crm sync aborted")
		metrics.ObserveSyncRun("failed", time.Since(start))
		return err
	}

	outcome := "success"
	if report.Failed() > 0 {
		outcome = "partial"
	}
	metrics.ObserveSyncRun(outcome, report.Duration)
	log.WithFields(logrus.Fields{
		"upserted": report.Upserted(),
		"failed":   report.Failed(),
		"duration": report.Duration.String(),
	}).Info("crm sync finished")
	return nil
}

func serveMetrics(addr string, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Warn("metrics listener stopped")
	}
}
