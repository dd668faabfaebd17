package api

import (
	"net/http"

	"vetclinic/m/domain"
	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/export"
)

// dateRange reads ?start and ?end, defaulting to the current month so far.
func dateRange(r *http.Request) (domain.Date, domain.Date, error) {
	today := domain.NewDate(timeNow())
	end, err := queryDate(r, "end", today)
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	start, err := queryDate(r, "start", end.MonthStart())
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	return start, end, nil
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	expenses, err := h.svc.Expenses.List(r.Context(), start, end)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req clinic.ExpenseInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.svc.Expenses.Record(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (h *Handler) analyticsReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	report, err := h.svc.Analytics.Report(r.Context(), start, end)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type reportExportRequest struct {
	Start domain.Date `json:"start"`
	End   domain.Date `json:"end"`
	Path  string      `json:"path"`
}

func (h *Handler) exportAnalytics(w http.ResponseWriter, r *http.Request) {
	var req reportExportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.End.IsZero() {
		req.End = domain.NewDate(timeNow())
	}
	if req.Start.IsZero() {
		req.Start = req.End.MonthStart()
	}
	report, err := h.svc.Analytics.Report(r.Context(), req.Start, req.End)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	text := export.ReportText(report, h.deps.Translator, h.currency())
	path, err := export.WriteFile(h.deps.ExportDir, req.Path, text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"path": path, "text": text})
}
