package main

import (
	"net/http"
	"strings"

	"github.com/farxc/budget_engine/internal/response"
	"github.com/farxc/budget_engine/internal/store"
)

type TransferResponse = response.APIResponse[*store.Transfer]
type ListTransfersResponse = response.APIResponse[[]store.Transfer]
type NetAdjustmentsResponse = response.APIResponse[[]store.CenterAdjustment]

func (app *application) handleRequestTransfer(w http.ResponseWriter, r *http.Request) {
	var transfer store.Transfer
	if err := readJSON(w, r, &transfer); err != nil {
		return
	}

	if err := app.transfers.Request(r.Context(), &transfer); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, &TransferResponse{
		Success: true,
		Data:    &transfer,
		Message: "Successfully requested transfer",
	})
}

func (app *application) handleApproveTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var body struct {
		Decisor string `json:"decisor"`
	}
	if err := readJSON(w, r, &body); err != nil {
		return
	}

	transfer, err := app.transfers.Approve(r.Context(), id, body.Decisor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &TransferResponse{
		Success: true,
		Data:    transfer,
		Message: "Successfully approved transfer",
	})
}

func (app *application) handleRejectTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var body struct {
		Decisor string `json:"decisor"`
		Motivo  string `json:"motivo"`
	}
	if err := readJSON(w, r, &body); err != nil {
		return
	}

	transfer, err := app.transfers.Reject(r.Context(), id, body.Decisor, body.Motivo)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &TransferResponse{
		Success: true,
		Data:    transfer,
		Message: "Successfully rejected transfer",
	})
}

func (app *application) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	ano, ok := app.parseYear(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
		return
	}
	status := strings.ToUpper(r.URL.Query().Get("status"))

	data, err := app.transfers.List(r.Context(), ano, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ListTransfersResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed transfers",
	})
}

func (app *application) handleGetNetAdjustments(w http.ResponseWriter, r *http.Request) {
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

	data, err := app.transfers.NetAdjustments(r.Context(), ano, mes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &NetAdjustmentsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully computed net adjustments",
	})
}
