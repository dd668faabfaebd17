package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/export"
)

type openInvoice struct {
	mu   sync.Mutex
	inv  *clinic.Invoice
	bill *clinic.Bill
}

// invoiceBook holds the invoices being assembled by operators. They live in
// memory only; an unbilled invoice has not touched the store.
type invoiceBook struct {
	mu   sync.Mutex
	open map[string]*openInvoice
}

func newInvoiceBook() *invoiceBook {
	return &invoiceBook{open: map[string]*openInvoice{}}
}

func (b *invoiceBook) add(inv *clinic.Invoice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open[inv.ID] = &openInvoice{inv: inv}
}

func (b *invoiceBook) get(id string) (*openInvoice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.open[id]
	return o, ok
}

func (b *invoiceBook) remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.open[id]
	delete(b.open, id)
	return ok
}

// withInvoice runs fn with the invoice named in the path locked.
func (h *Handler) withInvoice(w http.ResponseWriter, r *http.Request, fn func(o *openInvoice)) {
	o, ok := h.invoices.get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, h.deps.Translator.T("Record not found."))
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o)
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, clinic.DefaultServices)
}

func (h *Handler) openInvoice(w http.ResponseWriter, r *http.Request) {
	inv := h.svc.Billing.NewInvoice()
	h.invoices.add(inv)
	respondJSON(w, http.StatusCreated, inv)
}

type invoiceLineRequest struct {
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

func (h *Handler) addInvoiceLine(w http.ResponseWriter, r *http.Request) {
	var req invoiceLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withInvoice(w, r, func(o *openInvoice) {
		if _, err := h.svc.Billing.AddInventoryLine(r.Context(), o.inv, req.ItemName, req.Quantity); err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, o.inv)
	})
}

func (h *Handler) discardInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.invoices.remove(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, h.deps.Translator.T("Record not found."))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generateBill(w http.ResponseWriter, r *http.Request) {
	var req clinic.BillRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withInvoice(w, r, func(o *openInvoice) {
		bill, err := h.svc.Billing.GenerateBill(r.Context(), o.inv, req)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		o.bill = &bill
		h.deps.Board.BillGenerated()
		respondJSON(w, http.StatusCreated, bill)
	})
}

type exportRequest struct {
	Path string `json:"path"`
}

func (h *Handler) exportBill(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withInvoice(w, r, func(o *openInvoice) {
		if o.bill == nil {
			h.fail(w, r, &clinic.ValidationError{Field: "invoice", Message: "Invoice has not been billed yet."})
			return
		}
		text := export.BillText(*o.bill, h.deps.Translator, h.currency())
		path, err := export.WriteFile(h.deps.ExportDir, req.Path, text)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"path": path, "text": text})
	})
}
