package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/farxc/budget_engine/internal/budgetcontrol"
	"github.com/farxc/budget_engine/internal/forecast"
	"github.com/farxc/budget_engine/internal/provisioning"
	"github.com/farxc/budget_engine/internal/reconcile"
	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/store"
)

type application struct {
	config     config
	logger     *zap.Logger
	store      store.Storage
	reference  *reference.Store
	engine     *reconcile.Engine
	provisions *provisioning.Service
	transfers  *budgetcontrol.Service
	forecasts  *forecast.ScenarioService
}

type config struct {
	addr           string
	db             dbConfig
	migrationsPath string
	runMigrations  bool
	budgetYear     int
	budgetFile     string
	centersFile    string
	accountsFile   string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
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

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Route("/reconciliation", func(r chi.Router) {
			r.Get("/monthly", app.handleGetMonthlyComparison)
			r.Get("/by-center", app.handleGetComparisonByCenter)
			r.Get("/by-account", app.handleGetComparisonByAccount)
			r.Get("/asset-groups", app.handleGetAssetGroupSummary)
			r.Get("/asset-groups/{ativo}/drill-down", app.handleGetDrillDown)
			r.Get("/top-variances", app.handleGetTopVariances)
			r.Get("/kpis", app.handleGetKPIs)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", app.handleListEntries)
			r.Post("/", app.handleCreateEntry)
			r.Get("/stats", app.handleGetEntryStats)
			r.Get("/{id}", app.handleGetEntry)
			r.Patch("/{id}", app.handleUpdateEntry)
			r.Delete("/{id}", app.handleDeleteEntry)
		})

		r.Route("/provisions", func(r chi.Router) {
			r.Get("/", app.handleListProvisions)
			r.Post("/", app.handleCreateProvision)
			r.Post("/batch", app.handleBatchCreateProvisions)
			r.Patch("/batch", app.handleBatchUpdateProvisions)
			r.Patch("/{id}", app.handleUpdateProvision)
			r.Post("/{id}/reconcile", app.handleReconcileProvision)
			r.Post("/{id}/cancel", app.handleCancelProvision)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", app.handleListTransfers)
			r.Post("/", app.handleRequestTransfer)
			r.Post("/{id}/approve", app.handleApproveTransfer)
			r.Post("/{id}/reject", app.handleRejectTransfer)
			r.Get("/adjustments", app.handleGetNetAdjustments)
		})

		r.Route("/forecast", func(r chi.Router) {
			r.Get("/scenarios", app.handleListScenarios)
			r.Post("/scenarios", app.handleBuildScenario)
			r.Get("/scenarios/{id}", app.handleGetScenario)
			r.Get("/scenarios/{id}/entries", app.handleGetScenarioEntries)
			r.Delete("/scenarios/{id}", app.handleDeleteScenario)
		})

		r.Route("/reference", func(r chi.Router) {
			r.Get("/centers", app.handleSearchCenters)
			r.Get("/centers/{codigo}", app.handleGetCenter)
			r.Get("/centers/{codigo}/hierarchy", app.handleGetHierarchyDetail)
			r.Get("/accounts", app.handleSearchAccounts)
			r.Get("/asset-groups", app.handleGetAtivos)
			r.Get("/budget/by-month", app.handleGetBudgetByMonth)
			r.Get("/budget/by-center", app.handleGetBudgetByCenter)
			r.Get("/budget/by-account", app.handleGetBudgetByAccount)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.logger.Info("server started", zap.String("addr", app.config.addr))
	return srv.ListenAndServe()
}
