package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/response"
)

type CenterResponse = response.APIResponse[reference.CostCenter]
type ListCentersResponse = response.APIResponse[[]reference.CostCenter]
type HierarchyDetailResponse = response.APIResponse[reference.HierarchyDetail]
type ListAccountsResponse = response.APIResponse[[]reference.Account]
type ListAtivosResponse = response.APIResponse[[]string]
type BudgetByMonthResponse = response.APIResponse[[]reference.MonthBudget]
type BudgetByCenterResponse = response.APIResponse[[]reference.CenterBudget]
type BudgetByAccountResponse = response.APIResponse[[]reference.AccountBudget]

func (app *application) handleSearchCenters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := reference.CenterFilter{
		Termo:      q.Get("termo"),
		Ativo:      q.Get("ativo"),
		Classe:     q.Get("classe"),
		Regional:   q.Get("regional"),
		Base:       q.Get("base"),
		ExcluirCOS: q.Get("excluir_cos") == "true",
	}

	writeJSON(w, http.StatusOK, &ListCentersResponse{
		Success: true,
		Data:    app.reference.SearchCenters(filter),
		Message: "Successfully searched cost centers",
	})
}

func (app *application) handleGetCenter(w http.ResponseWriter, r *http.Request) {
	codigo := chi.URLParam(r, "codigo")

	center, ok := app.reference.CenterByCode(codigo)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "centro de gasto não encontrado: "+codigo)
		return
	}

	writeJSON(w, http.StatusOK, &CenterResponse{
		Success: true,
		Data:    center,
		Message: "Successfully fetched cost center",
	})
}

func (app *application) handleGetHierarchyDetail(w http.ResponseWriter, r *http.Request) {
	codigo := chi.URLParam(r, "codigo")

	detail, ok := app.reference.HierarchyDetail(codigo)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "centro de gasto não encontrado: "+codigo)
		return
	}

	writeJSON(w, http.StatusOK, &HierarchyDetailResponse{
		Success: true,
		Data:    detail,
		Message: "Successfully resolved hierarchy",
	})
}

func (app *application) handleSearchAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &ListAccountsResponse{
		Success: true,
		Data:    app.reference.SearchAccounts(r.URL.Query().Get("termo")),
		Message: "Successfully searched accounts",
	})
}

func (app *application) handleGetAtivos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &ListAtivosResponse{
		Success: true,
		Data:    app.reference.Ativos(),
		Message: "Successfully listed asset groups",
	})
}

func (app *application) handleGetBudgetByMonth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &BudgetByMonthResponse{
		Success: true,
		Data:    app.reference.BudgetByMonth(),
		Message: "Successfully aggregated budget by month",
	})
}

func (app *application) handleGetBudgetByCenter(w http.ResponseWriter, r *http.Request) {
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}

	writeJSON(w, http.StatusOK, &BudgetByCenterResponse{
		Success: true,
		Data:    app.reference.BudgetByCenter(mes),
		Message: "Successfully aggregated budget by center",
	})
}

func (app *application) handleGetBudgetByAccount(w http.ResponseWriter, r *http.Request) {
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}

	writeJSON(w, http.StatusOK, &BudgetByAccountResponse{
		Success: true,
		Data:    app.reference.BudgetByAccount(mes),
		Message: "Successfully aggregated budget by account",
	})
}
