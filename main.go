package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"helpdesk-cloud/internal/audit"
	"helpdesk-cloud/internal/auth"
	masterdatahttp "helpdesk-cloud/internal/masterdata/interfaces/http"
	masterdatarepo "helpdesk-cloud/internal/masterdata/infrastructure/postgres"
	"helpdesk-cloud/internal/notify"
	"helpdesk-cloud/internal/observability/metrics"
	recordapp "helpdesk-cloud/internal/records/application"
	recordrepo "helpdesk-cloud/internal/records/infrastructure/postgres"
	recordhttp "helpdesk-cloud/internal/records/interfaces/http"
	"helpdesk-cloud/internal/reminder"
	reportapp "helpdesk-cloud/internal/reports/application"
	reports "helpdesk-cloud/internal/reports/domain"
	reportinterfaces "helpdesk-cloud/internal/reports/interfaces"
	ticketapp "helpdesk-cloud/internal/tickets/application"
	ticketrepo "helpdesk-cloud/internal/tickets/infrastructure/postgres"
	tickethttp "helpdesk-cloud/internal/tickets/interfaces/http"
	workorderapp "helpdesk-cloud/internal/workorders/application"
	workorderrepo "helpdesk-cloud/internal/workorders/infrastructure/postgres"
	workorderhttp "helpdesk-cloud/internal/workorders/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	branchRepo := masterdatarepo.NewBranchRepository(db)
	userRepo := masterdatarepo.NewUserRepository(db)
	meterRepo := masterdatarepo.NewMeterRepository(db)

	branchHandler, err := masterdatahttp.NewBranchHandler(branchRepo, auditRepo)
	if err != nil {
		logger.Fatalf("branch handler error: %v", err)
	}
	meterHandler, err := masterdatahttp.NewMeterHandler(meterRepo, auditRepo)
	if err != nil {
		logger.Fatalf("meter handler error: %v", err)
	}

	recordRepo := recordrepo.NewRecordRepository(db)
	recordService, err := recordapp.NewService(recordRepo, meterRepo)
	if err != nil {
		logger.Fatalf("record service error: %v", err)
	}
	recordHandler, err := recordhttp.NewHandler(recordService, auditRepo)
	if err != nil {
		logger.Fatalf("record handler error: %v", err)
	}

	engine := reports.NewEngine(logger)
	reportService, err := reportapp.NewUsageReportService(recordRepo, engine)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}
	reportHandler, err := reportinterfaces.NewReportHandler(reportService, auditRepo)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	notifyCfg, err := notify.LoadConfig()
	if err != nil {
		logger.Fatalf("notify config error: %v", err)
	}
	var channel notify.Channel
	if notifyCfg.GatewayURL != "" {
		whatsapp, err := notify.NewWhatsAppChannel(notifyCfg.GatewayURL, notifyCfg.Token)
		if err != nil {
			logger.Fatalf("whatsapp channel error: %v", err)
		}
		channel = whatsapp
	}

	ticketRepo := ticketrepo.NewTicketRepository(db)
	ticketService, err := ticketapp.NewService(ticketRepo, userRepo, branchRepo, channel, logger)
	if err != nil {
		logger.Fatalf("ticket service error: %v", err)
	}
	ticketHandler, err := tickethttp.NewHandler(ticketService, auditRepo)
	if err != nil {
		logger.Fatalf("ticket handler error: %v", err)
	}

	workOrderRepo := workorderrepo.NewWorkOrderRepository(db)
	workOrderService, err := workorderapp.NewService(workOrderRepo, ticketRepo, userRepo, logger)
	if err != nil {
		logger.Fatalf("work order service error: %v", err)
	}
	workOrderHandler, err := workorderhttp.NewHandler(workOrderService, auditRepo)
	if err != nil {
		logger.Fatalf("work order handler error: %v", err)
	}

	if channel != nil {
		scheduler, err := reminder.NewScheduler(branchRepo, recordRepo, channel, notifyCfg.ReminderCron, logger)
		if err != nil {
			logger.Fatalf("reminder scheduler error: %v", err)
		}
		if err := scheduler.Start(); err != nil {
			logger.Fatalf("reminder start error: %v", err)
		}
		defer scheduler.Stop()
	} else {
		logger.Printf("reminder: no WhatsApp gateway configured, scheduler disabled")
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/daily-records", recordHandler)
	mux.Handle("/api/v1/reports/daily-usage", reportHandler)
	mux.Handle("/api/v1/exports/daily-usage.xlsx", reportHandler)
	mux.Handle("/api/v1/exports/daily-usage.pdf", reportHandler)
	mux.Handle("/api/v1/tickets", ticketHandler)
	mux.Handle("/api/v1/tickets/", ticketHandler)
	mux.Handle("/api/v1/work-orders", workOrderHandler)
	mux.Handle("/api/v1/work-orders/", workOrderHandler)
	mux.Handle("/api/v1/branches", branchHandler)
	mux.Handle("/api/v1/meters", meterHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
