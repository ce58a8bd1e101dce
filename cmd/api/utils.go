package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/farxc/budget_engine/internal/reference"
)

// parseYear reads the required "ano" query parameter, falling back to the
// configured budget year when absent.
func (app *application) parseYear(r *http.Request) (int, bool) {
	param := r.URL.Query().Get("ano")
	if param == "" {
		return app.config.budgetYear, true
	}
	ano, err := strconv.Atoi(param)
	if err != nil || ano < 2000 || ano > 2100 {
		return 0, false
	}
	return ano, true
}

// parseOptionalYear is parseYear without the configured-year fallback:
// an absent "ano" means every year. Provision listings use it so a
// lifecycle can be followed across year boundaries.
func parseOptionalYear(r *http.Request) (int, bool) {
	param := r.URL.Query().Get("ano")
	if param == "" {
		return 0, true
	}
	ano, err := strconv.Atoi(param)
	if err != nil || ano < 2000 || ano > 2100 {
		return 0, false
	}
	return ano, true
}

// parseMonth reads the optional "mes" query parameter. Empty means the
// whole year.
func parseMonth(r *http.Request) (string, bool) {
	mes := strings.ToUpper(r.URL.Query().Get("mes"))
	if mes == "" {
		return "", true
	}
	if !reference.IsMonth(mes) {
		return "", false
	}
	return mes, true
}

func parseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseIntOrDefault(param string, fallback int) int {
	if param == "" {
		return fallback
	}
	n, err := strconv.Atoi(param)
	if err != nil {
		return fallback
	}
	return n
}
