package api

import (
	"errors"
	"net/http"
	"time"

	"vetclinic/m/domain"
	"vetclinic/m/internal/backup"
	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/notify"
)

var timeNow = time.Now

func (h *Handler) vaccinesDue(w http.ResponseWriter, r *http.Request) {
	due, err := h.svc.Reminders.VaccinesDueToday(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, due)
}

func (h *Handler) expiringItems(w http.ResponseWriter, r *http.Request) {
	days, _, err := queryInt(r, "days")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.svc.Reminders.ExpiringWithin(r.Context(), days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold, given, err := queryInt(r, "threshold")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var items []domain.InventoryItem
	if given {
		items, err = h.svc.Reminders.BelowThreshold(r.Context(), threshold)
	} else {
		items, err = h.svc.Reminders.LowStock(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.deps.Board.Snapshot())
}

func (h *Handler) refreshDashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Board.Refresh(r.Context(), ""); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.deps.Board.Snapshot())
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.deps.Settings.Get())
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	next := h.deps.Settings.Get()
	if err := decodeJSON(r, &next); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := next.Validate(); err != nil {
		h.fail(w, r, &clinic.ValidationError{Field: "settings", Message: err.Error()})
		return
	}
	if err := h.deps.Settings.Update(next); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deps.Hub.Publish(r.Context(), notify.TopicSettings)
	respondJSON(w, http.StatusOK, h.deps.Settings.Get())
}

func (h *Handler) runBackup(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	tr := h.deps.Translator
	path, err := h.deps.Backup.Run(r.Context())
	switch {
	case errors.Is(err, backup.ErrUnsupported):
		respondJSON(w, http.StatusOK, map[string]string{"message": tr.T("Backups are only available for SQLite data files.")})
	case errors.Is(err, backup.ErrNoDataFile):
		respondError(w, http.StatusNotFound, tr.T("Database file not found."))
	case err != nil:
		h.fail(w, r, err)
	default:
		respondJSON(w, http.StatusCreated, map[string]string{"message": tr.T("Backup created."), "path": path})
	}
}

func (h *Handler) translations(w http.ResponseWriter, r *http.Request) {
	tr := h.deps.Translator
	respondJSON(w, http.StatusOK, map[string]any{"language": tr.Language(), "table": tr.Table()})
}
