package main

import (
	"net/http"
	"strings"

	"github.com/farxc/budget_engine/internal/provisioning"
	"github.com/farxc/budget_engine/internal/response"
	"github.com/farxc/budget_engine/internal/store"
)

type ProvisionResponse = response.APIResponse[*store.Provision]
type ListProvisionsResponse = response.APIResponse[[]store.Provision]
type BatchUpdateResponse = response.APIResponse[provisioning.BatchResult]

type BatchCreateResult struct {
	Created int                     `json:"created"`
	Errors  []provisioning.RowError `json:"errors,omitempty"`
}

type BatchCreateResponse = response.APIResponse[BatchCreateResult]

func (app *application) handleCreateProvision(w http.ResponseWriter, r *http.Request) {
	var provision store.Provision
	if err := readJSON(w, r, &provision); err != nil {
		return
	}

	if err := app.provisions.Create(r.Context(), &provision); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, &ProvisionResponse{
		Success: true,
		Data:    &provision,
		Message: "Successfully created provision",
	})
}

func (app *application) handleBatchCreateProvisions(w http.ResponseWriter, r *http.Request) {
	var rows []store.Provision
	if err := readJSON(w, r, &rows); err != nil {
		return
	}

	created, failures := app.provisions.BatchCreate(r.Context(), rows)

	writeJSON(w, http.StatusOK, &BatchCreateResponse{
		Success: true,
		Data:    BatchCreateResult{Created: created, Errors: failures},
		Message: "Batch create finished",
	})
}

func (app *application) handleBatchUpdateProvisions(w http.ResponseWriter, r *http.Request) {
	var items []provisioning.UpdateItem
	if err := readJSON(w, r, &items); err != nil {
		return
	}

	result, err := app.provisions.BatchUpdate(r.Context(), items)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &BatchUpdateResponse{
		Success: true,
		Data:    result,
		Message: "Batch update finished",
	})
}

func (app *application) handleUpdateProvision(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var item provisioning.UpdateItem
	if err := readJSON(w, r, &item); err != nil {
		return
	}
	item.ID = id

	provision, err := app.provisions.Update(r.Context(), item)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ProvisionResponse{
		Success: true,
		Data:    provision,
		Message: "Successfully updated provision",
	})
}

func (app *application) handleReconcileProvision(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var body struct {
		LancamentoRealizadoID int64 `json:"lancamento_realizado_id"`
	}
	if err := readJSON(w, r, &body); err != nil {
		return
	}

	provision, err := app.provisions.Reconcile(r.Context(), id, body.LancamentoRealizadoID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ProvisionResponse{
		Success: true,
		Data:    provision,
		Message: "Successfully reconciled provision",
	})
}

func (app *application) handleCancelProvision(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var body struct {
		Motivo string `json:"motivo"`
	}
	if err := readJSON(w, r, &body); err != nil {
		return
	}

	provision, err := app.provisions.Cancel(r.Context(), id, body.Motivo)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ProvisionResponse{
		Success: true,
		Data:    provision,
		Message: "Successfully cancelled provision",
	})
}

func (app *application) handleListProvisions(w http.ResponseWriter, r *http.Request) {
	ano, ok := parseOptionalYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}
	mes, ok := parseMonth(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid mes parameter")
		return
	}

	filter := store.ProvisionFilter{
		Ano:               ano,
		Mes:               mes,
		Status:            strings.ToUpper(r.URL.Query().Get("status")),
		CentroGastoCodigo: r.URL.Query().Get("centro"),
		Ativo:             r.URL.Query().Get("ativo"),
		Regional:          r.URL.Query().Get("regional"),
	}

	data, err := app.provisions.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ListProvisionsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed provisions",
	})
}
