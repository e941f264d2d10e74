package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/harchamaq/informes/internal/config"
	"github.com/harchamaq/informes/internal/export"
	"github.com/harchamaq/informes/internal/report"
)

type application struct {
	cfg       *config.Config
	logger    *zap.Logger
	report    *report.Report
	dashboard *export.HTMLExporter
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", app.dashboardHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Route("/report", func(r chi.Router) {
			r.Get("/", app.handleGetReport)
			r.Get("/totals", app.handleGetTotals)
			r.Get("/workshop", app.handleGetWorkshop)
			r.Route("/machines", func(r chi.Router) {
				r.Get("/", app.handleGetMachines)
				r.Get("/{code}", app.handleGetMachine)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.cfg.Server.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.logger.Info("server started", zap.String("addr", app.cfg.Server.Addr))
	return srv.ListenAndServe()
}
