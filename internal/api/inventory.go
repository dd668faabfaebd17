package api

import (
	"net/http"

	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/export"
	"vetclinic/m/internal/seed"
)

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Inventory.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) addInventory(w http.ResponseWriter, r *http.Request) {
	var req clinic.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.svc.Inventory.Add(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handler) getInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.svc.Inventory.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) updateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req clinic.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.svc.Inventory.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Inventory.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importInventory takes a CSV body; any bad row rejects the whole file.
func (h *Handler) importInventory(w http.ResponseWriter, r *http.Request) {
	rows, err := seed.ParseInventoryCSV(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.svc.Inventory.Import(r.Context(), rows)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int{"imported": n})
}

func (h *Handler) exportInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Inventory.List(r.Context(), "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := export.WriteInventoryCSV(w, items); err != nil {
		h.log.Error("inventory export failed", map[string]any{"error": err})
	}
}
