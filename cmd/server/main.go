package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	authhandler "taskboard/internal/auth/handler"
	authservice "taskboard/internal/auth/service"
	audithandler "taskboard/internal/audit/handler"
	auditpostgres "taskboard/internal/audit/store/postgres"
	"taskboard/internal/audit/publisher"
	dashboardhandler "taskboard/internal/dashboard/handler"
	httptransport "taskboard/internal/http"
	"taskboard/internal/platform/config"
	"taskboard/internal/platform/httpserver"
	"taskboard/internal/platform/logger"
	"taskboard/internal/platform/metrics"
	projecthandler "taskboard/internal/project/handler"
	projectservice "taskboard/internal/project/service"
	projectpostgres "taskboard/internal/project/store/postgres"
	taskhandler "taskboard/internal/task/handler"
	taskservice "taskboard/internal/task/service"
	taskpostgres "taskboard/internal/task/store/postgres"
	tenanthandler "taskboard/internal/tenant/handler"
	tenantservice "taskboard/internal/tenant/service"
	tenantpostgres "taskboard/internal/tenant/store/postgres"
	"taskboard/internal/token"
	userhandler "taskboard/internal/user/handler"
	userservice "taskboard/internal/user/service"
	userpostgres "taskboard/internal/user/store/postgres"
)

// main wires the dependency graph and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	tenantStore := tenantpostgres.New(db)
	userStore := userpostgres.New(db)
	projectStore := projectpostgres.New(db)
	taskStore := taskpostgres.New(db)
	auditStore := auditpostgres.New(db)

	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
		publisher.WithMetrics(m),
	)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	authSvc := authservice.NewService(userStore, tenantStore, tokens,
		authservice.WithLogger(log), authservice.WithMetrics(m))
	tenantSvc := tenantservice.NewService(tenantStore, userStore, auditor,
		tenantservice.WithLogger(log))
	userSvc := userservice.NewService(userStore, tenantStore, auditor,
		userservice.WithLogger(log), userservice.WithMetrics(m))
	projectSvc := projectservice.NewService(projectStore, tenantStore, auditor,
		projectservice.WithLogger(log), projectservice.WithMetrics(m))
	taskSvc := taskservice.NewService(taskStore, projectStore, auditor,
		taskservice.WithLogger(log), taskservice.WithMetrics(m))

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:      authhandler.New(authSvc, log),
		Tenant:    tenanthandler.New(tenantSvc, log),
		User:      userhandler.New(userSvc, log),
		Project:   projecthandler.New(projectSvc, log),
		Task:      taskhandler.New(taskSvc, log),
		Audit:     audithandler.New(auditStore, log),
		Dashboard: dashboardhandler.New(projectStore, taskStore, userStore, log),
	}, tokens, db, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting taskboard", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Drain buffered audit events after the server stops accepting requests.
	auditor.Close()
}
