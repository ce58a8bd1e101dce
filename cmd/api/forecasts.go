package main

import (
	"net/http"

	"github.com/farxc/budget_engine/internal/forecast"
	"github.com/farxc/budget_engine/internal/response"
	"github.com/farxc/budget_engine/internal/store"
)

type ScenarioResponse = response.APIResponse[*store.ForecastScenario]
type ListScenariosResponse = response.APIResponse[[]store.ForecastScenario]
type ScenarioEntriesResponse = response.APIResponse[[]store.ForecastEntry]

func (app *application) handleBuildScenario(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nome       string  `json:"nome"`
		Descricao  string  `json:"descricao"`
		AnoAlvo    int     `json:"ano_alvo"`
		AnoInicial int     `json:"ano_inicial"`
		Metodo     string  `json:"metodo"`
		Window     int     `json:"window"`
		Alpha      float64 `json:"alpha"`
		CriadoPor  string  `json:"criado_por"`
	}
	if err := readJSON(w, r, &body); err != nil {
		return
	}

	scenario, err := app.forecasts.BuildAutomatic(r.Context(), forecast.BuildInput{
		Nome:       body.Nome,
		Descricao:  body.Descricao,
		AnoAlvo:    body.AnoAlvo,
		AnoInicial: body.AnoInicial,
		Metodo:     body.Metodo,
		Window:     body.Window,
		Alpha:      body.Alpha,
		CriadoPor:  body.CriadoPor,
	})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, &ScenarioResponse{
		Success: true,
		Data:    scenario,
		Message: "Successfully built forecast scenario",
	})
}

func (app *application) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	ano := parseIntOrDefault(r.URL.Query().Get("ano"), 0)

	data, err := app.forecasts.List(r.Context(), ano)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ListScenariosResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed scenarios",
	})
}

func (app *application) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	scenario, err := app.forecasts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ScenarioResponse{
		Success: true,
		Data:    scenario,
		Message: "Successfully fetched scenario",
	})
}

func (app *application) handleGetScenarioEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	data, err := app.forecasts.Entries(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &ScenarioEntriesResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed scenario entries",
	})
}

func (app *application) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := app.forecasts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &response.APIResponse[struct{}]{
		Success: true,
		Message: "Successfully deleted scenario",
	})
}
