package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farxc/budget_engine/internal/reconcile"
	"github.com/farxc/budget_engine/internal/response"
)

type GetMonthlyComparisonResponse = response.APIResponse[[]reconcile.MonthlyRow]
type GetComparisonByCenterResponse = response.APIResponse[[]reconcile.CenterRow]
type GetComparisonByAccountResponse = response.APIResponse[[]reconcile.AccountRow]
type GetAssetGroupSummaryResponse = response.APIResponse[[]reconcile.AssetGroupRow]
type GetDrillDownResponse = response.APIResponse[[]reconcile.DrillDownRow]
type GetKPIsResponse = response.APIResponse[reconcile.KPIs]

func (app *application) handleGetMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}

	data, err := app.engine.MonthlyComparison(r.Context(), ano)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &GetMonthlyComparisonResponse{
		Success: true,
		Data:    data,
		Message: "Successfully built monthly comparison",
	})
}

func (app *application) handleGetComparisonByCenter(w http.ResponseWriter, r *http.Request) {
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}

	data, err := app.engine.ComparisonByCenter(r.Context(), ano, mes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &GetComparisonByCenterResponse{
		Success: true,
		Data:    data,
		Message: "Successfully built comparison by center",
	})
}

func (app *application) handleGetComparisonByAccount(w http.ResponseWriter, r *http.Request) {
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}

	data, err := app.engine.ComparisonByAccount(r.Context(), ano, mes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &GetComparisonByAccountResponse{
		Success: true,
		Data:    data,
		Message: "Successfully built comparison by account",
	})
}

func (app *application) handleGetAssetGroupSummary(w http.ResponseWriter, r *http.Request) {
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}

	data, err := app.engine.AssetGroupSummary(r.Context(), ano, mes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &GetAssetGroupSummaryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully built asset group summary",
	})
}

func (app *application) handleGetDrillDown(w http.ResponseWriter, r *http.Request) {
	ativo := chi.URLParam(r, "ativo")
	if ativo == "" {
		writeJSONError(w, http.StatusBadRequest, "missing ativo parameter")
		return
	}
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}

	data, err := app.engine.DrillDown(r.Context(), ativo, ano, mes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &GetDrillDownResponse{
		Success: true,
		Data:    data,
		Message: "Successfully built drill down",
	})
}

func (app *application) handleGetTopVariances(w http.ResponseWriter, r *http.Request) {
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}
	n := parseIntOrDefault(r.URL.Query().Get("n"), 10)

	data, err := app.engine.TopVariances(r.Context(), n, ano, mes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &GetComparisonByCenterResponse{
		Success: true,
		Data:    data,
		Message: "Successfully ranked variances",
	})
}

func (app *application) handleGetKPIs(w http.ResponseWriter, r *http.Request) {
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}

	data, err := app.engine.YearKPIs(r.Context(), ano)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &GetKPIsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully computed year KPIs",
	})
}
