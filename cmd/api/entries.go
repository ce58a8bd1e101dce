package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/response"
	"github.com/farxc/budget_engine/internal/store"
)

type EntryResponse = response.APIResponse[*store.ActualEntry]
type ListEntriesResponse = response.APIResponse[[]store.ActualEntry]

type EntryStatsResult struct {
	Stats    *store.EntryStats  `json:"stats"`
	PorAtivo []store.AtivoTotal `json:"por_ativo"`
}

type EntryStatsResponse = response.APIResponse[EntryStatsResult]

func (app *application) handleListEntries(w http.ResponseWriter, r *http.Request) {
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

	filter := store.EntryFilter{
		Ano:                 ano,
		Mes:                 mes,
		CentroGastoCodigo:   r.URL.Query().Get("centro"),
		Ativo:               r.URL.Query().Get("ativo"),
		ContaContabilCodigo: r.URL.Query().Get("conta"),
	}
	if v := r.URL.Query().Get("apenas_cos"); v != "" {
		apenasCOS, err := strconv.ParseBool(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid apenas_cos parameter")
			return
		}
		filter.ApenasCOS = &apenasCOS
	}

	data, err := app.store.Entries.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ListEntriesResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed entries",
	})
}

func (app *application) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	entry, err := app.store.Entries.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &EntryResponse{
		Success: true,
		Data:    entry,
		Message: "Successfully fetched entry",
	})
}

// handleCreateEntry accepts a manual ledger entry. Hierarchy fields come
// from the reference store so callers only supply the center code.
func (app *application) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var entry store.ActualEntry
	if err := readJSON(w, r, &entry); err != nil {
		return
	}

	if !reference.IsMonth(entry.Mes) {
		writeJSONError(w, http.StatusBadRequest, "invalid mes")
		return
	}
	if valid, message := app.reference.ValidateCenter(entry.CentroGastoCodigo); !valid {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}
	if valid, message := app.reference.ValidateAccount(entry.ContaContabilCodigo); !valid {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}

	if center, ok := app.reference.CenterByCode(entry.CentroGastoCodigo); ok {
		entry.CentroGastoCodigo = center.Codigo
		entry.CentroDescricao = center.Descricao
		entry.CodigoPai = center.CodigoPai
		entry.Classe = center.Classe
		entry.Ativo = center.Ativo
		entry.Regional = center.Regional
		entry.Base = center.Base
	}
	if entry.ContaDescricao == "" {
		if account, ok := app.reference.AccountByCode(entry.ContaContabilCodigo); ok {
			entry.ContaDescricao = account.Descricao
		}
	}
	if entry.Ano == 0 {
		entry.Ano = app.config.budgetYear
	}
	entry.DataCriacao = time.Now()
	entry.DataAtualizacao = entry.DataCriacao

	if err := app.store.Entries.Insert(r.Context(), &entry); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &EntryResponse{
		Success: true,
		Data:    &entry,
		Message: "Successfully created entry",
	})
}

func (app *application) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var payload struct {
		Valor          *float64 `json:"valor"`
		Fornecedor     *string  `json:"fornecedor"`
		Documento      *string  `json:"documento"`
		ContaDescricao *string  `json:"conta_descricao"`
	}
	if err := readJSON(w, r, &payload); err != nil {
		return
	}

	entry, err := app.store.Entries.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if payload.Valor != nil {
		entry.Valor = *payload.Valor
	}
	if payload.Fornecedor != nil {
		entry.Fornecedor = *payload.Fornecedor
	}
	if payload.Documento != nil {
		entry.Documento = *payload.Documento
	}
	if payload.ContaDescricao != nil {
		entry.ContaDescricao = *payload.ContaDescricao
	}
	entry.DataAtualizacao = time.Now()

	if err := app.store.Entries.Update(r.Context(), entry); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &EntryResponse{
		Success: true,
		Data:    entry,
		Message: "Successfully updated entry",
	})
}

func (app *application) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := app.store.Entries.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleGetEntryStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := app.store.Entries.Stats(r.Context(), ano)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	porAtivo, err := app.store.Entries.TotalsByAtivo(r.Context(), ano, mes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &EntryStatsResponse{
		Success: true,
		Data:    EntryStatsResult{Stats: stats, PorAtivo: porAtivo},
		Message: "Successfully computed entry stats",
	})
}
