package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vetclinic/m/domain"
	"vetclinic/m/internal/backup"
	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/config"
	"vetclinic/m/internal/dashboard"
	"vetclinic/m/internal/export"
	"vetclinic/m/internal/i18n"
	"vetclinic/m/internal/logger"
	"vetclinic/m/internal/notify"
)

type ctxKey string

const (
	ctxOperatorID ctxKey = "operatorID"
	ctxRole       ctxKey = "role"
)

// Services are the clinic operations exposed over HTTP.
type Services struct {
	Patients     *clinic.Patients
	Inventory    *clinic.Inventory
	Billing      *clinic.Billing
	Analytics    *clinic.Analytics
	Reminders    *clinic.Reminders
	Appointments *clinic.Appointments
	Expenses     *clinic.Expenses
	Operators    *clinic.Operators
}

// Deps bundles everything a Handler needs besides the clinic services.
type Deps struct {
	Secret     string
	ExportDir  string
	Settings   *config.SettingsStore
	Hub        *notify.Hub
	Translator *i18n.Translator
	Board      *dashboard.Board
	Backup     *backup.Service
	Log        logger.Logger
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc      Services
	deps     Deps
	log      logger.Logger
	invoices *invoiceBook
}

func New(svc Services, deps Deps) *Handler {
	return &Handler{svc: svc, deps: deps, log: deps.Log, invoices: newInvoiceBook()}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.HandlerFor(h.deps.Board.Registry(), promhttp.HandlerOpts{}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/owners", func(r chi.Router) {
			r.Get("/", h.searchOwners)
			r.Post("/", h.registerPatient)
			r.Get("/by-phone/{phone}", h.ownerByPhone)
			r.Get("/{id}", h.getOwner)
			r.Put("/{id}", h.updateOwner)
			r.Delete("/{id}", h.deleteOwner)
		})

		pr.Route("/pets", func(r chi.Router) {
			r.Put("/{id}", h.updatePetRecord)
			r.Delete("/{id}", h.deletePet)
			r.Post("/{id}/vaccines", h.addVaccine)
		})

		pr.Route("/vaccines", func(r chi.Router) {
			r.Get("/calendar", h.vaccineCalendar)
			r.Get("/suggestions", h.vaccineSuggestions)
			r.Delete("/{id}", h.deleteVaccine)
		})

		pr.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.listInventory)
			r.Post("/", h.addInventory)
			r.Post("/import", h.importInventory)
			r.Get("/export", h.exportInventory)
			r.Get("/{id}", h.getInventory)
			r.Put("/{id}", h.updateInventory)
			r.Delete("/{id}", h.deleteInventory)
		})

		pr.Route("/billing", func(r chi.Router) {
			r.Get("/services", h.listServices)
			r.Post("/invoices", h.openInvoice)
			r.Post("/invoices/{id}/lines", h.addInvoiceLine)
			r.Delete("/invoices/{id}", h.discardInvoice)
			r.Post("/invoices/{id}/generate", h.generateBill)
			r.Post("/invoices/{id}/export", h.exportBill)
		})

		pr.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.listExpenses)
			r.Post("/", h.recordExpense)
		})

		pr.Route("/appointments", func(r chi.Router) {
			r.Get("/", h.listAppointments)
			r.Post("/", h.scheduleAppointment)
			r.Get("/{id}", h.getAppointment)
			r.Put("/{id}", h.updateAppointment)
			r.Delete("/{id}", h.deleteAppointment)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/analytics", h.analyticsReport)
			r.Post("/analytics/export", h.exportAnalytics)
		})

		pr.Route("/reminders", func(r chi.Router) {
			r.Get("/vaccines", h.vaccinesDue)
			r.Get("/expiring", h.expiringItems)
			r.Get("/low-stock", h.lowStock)
		})

		pr.Get("/dashboard", h.dashboard)
		pr.Post("/dashboard/refresh", h.refreshDashboard)

		pr.Get("/settings", h.getSettings)
		pr.Put("/settings", h.updateSettings)
		pr.Post("/backup", h.runBackup)
		pr.Get("/i18n", h.translations)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication helpers

type authClaims struct {
	OperatorID int64  `json:"operator_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(op domain.Operator) (string, error) {
	now := time.Now()
	claims := authClaims{
		OperatorID: op.ID,
		Role:       op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   op.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.deps.Secret))
}

func (h *Handler) parseToken(r *http.Request) (*authClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, errors.New("missing bearer token")
	}
	tokenString := strings.TrimSpace(header[len("Bearer "):])
	token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.deps.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*authClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.parseToken(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), ctxOperatorID, claims.OperatorID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	role, _ := r.Context().Value(ctxRole).(string)
	if role == "" {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	for _, allowedRole := range allowed {
		if role == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

// fail maps a clinic error onto a status code and a translated message.
// Unexpected errors are logged and reported generically.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	tr := h.deps.Translator
	var ve *clinic.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": tr.T(ve.Message), "field": ve.Field})
	case errors.Is(err, clinic.ErrNotFound):
		respondError(w, http.StatusNotFound, tr.T("Record not found."))
	case errors.Is(err, clinic.ErrInsufficientStock):
		respondJSON(w, http.StatusConflict, map[string]string{"error": tr.T("Insufficient stock."), "detail": err.Error()})
	case errors.Is(err, clinic.ErrDuplicate):
		respondJSON(w, http.StatusConflict, map[string]string{"error": tr.T("Record already exists."), "detail": err.Error()})
	case errors.Is(err, clinic.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, tr.T("Invalid credentials."))
	case errors.Is(err, export.ErrWriteFailed):
		h.log.Error("export failed", map[string]any{"path": r.URL.Path, "error": err})
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": tr.T("Export failed."), "detail": err.Error()})
	default:
		h.log.Error("request failed", map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
			"error":      err,
		})
		respondError(w, http.StatusInternalServerError, tr.T("An unexpected error occurred."))
	}
}

func (h *Handler) currency() string {
	return h.deps.Settings.Get().Currency
}

// Helpers

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &clinic.ValidationError{Field: "id", Message: "invalid id"}
	}
	return id, nil
}

func queryDate(r *http.Request, key string, fallback domain.Date) (domain.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, &clinic.ValidationError{Field: key, Message: err.Error()}
	}
	return d, nil
}

func queryInt(r *http.Request, key string) (int, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, &clinic.ValidationError{Field: key, Message: "must be an integer"}
	}
	return n, true, nil
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
