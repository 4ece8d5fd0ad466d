package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"atlas-core-wave-layer/internal/application"
	"atlas-core-wave-layer/internal/buildinfo"
	"atlas-core-wave-layer/internal/config"
	"atlas-core-wave-layer/internal/domain"
	"atlas-core-wave-layer/internal/infrastructure/wave"
	"atlas-core-wave-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "atlas-core-wave-layer"

// SecretHeader carries the internal shared secret on every request.
const SecretHeader = "x-internal-secret"

// Handler exposes the internal JSON endpoints. Every endpoint runs the same
// pipeline: authenticate, validate, resolve business configuration, execute
// the Wave calls, shape the response.
type Handler struct {
	cfg          *config.Config
	invoices     *application.InvoiceService
	products     *application.ProductService
	customers    *application.CustomerService
	transactions *application.TransactionService
	reports      *application.ReportService
	logger       zerolog.Logger
}

// NewHandler wires the endpoint services onto one executor.
func NewHandler(cfg *config.Config, exec ports.GraphQLExecutor, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:          cfg,
		invoices:     application.NewInvoiceService(exec, cfg, logger),
		products:     application.NewProductService(exec, cfg, logger),
		customers:    application.NewCustomerService(exec, cfg, logger),
		transactions: application.NewTransactionService(exec, cfg, logger),
		reports:      application.NewReportService(exec, cfg, logger),
		logger:       logger,
	}
}

// Routes builds the endpoint router. The method check happens at routing,
// so a wrong-method request gets 405 with an Allow header before the secret
// is ever evaluated.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(methodNotAllowed)
	r.Get("/health", h.Health)
	r.Post("/create-invoice", h.CreateInvoice)
	r.Post("/approve-invoice", h.ApproveInvoice)
	r.Post("/add-payment", h.AddPayment)
	r.Post("/list-invoices", h.ListInvoices)
	r.Post("/list-products", h.ListProducts)
	r.Post("/create-product", h.CreateProduct)
	r.Post("/update-product", h.UpdateProduct)
	r.Post("/list-customers", h.ListCustomers)
	r.Post("/ensure-customer", h.EnsureCustomer)
	r.Post("/create-transaction", h.CreateTransaction)
	r.Post("/monthly-summary", h.MonthlySummary)
	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	allow := http.MethodPost
	if strings.HasSuffix(r.URL.Path, "/health") {
		allow = http.MethodGet
	}
	w.Header().Set("Allow", allow)
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// Health reports service identity; it still requires the shared secret.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": ServiceName,
		"version": buildinfo.Version,
	})
}

// CreateInvoice creates a draft invoice.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req createInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.invoices.CreateInvoice(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// ApproveInvoice moves a draft invoice to approved.
func (h *Handler) ApproveInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req approveInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	key, invoiceID, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.invoices.ApproveInvoice(r.Context(), key, invoiceID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// AddPayment records a payment against an invoice and returns its updated totals.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req addPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.invoices.AddPayment(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactionId": result.TransactionID,
		"invoice":       result.Invoice,
	})
}

// ListInvoices returns one page of invoices.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req listInvoicesRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.invoices.ListInvoices(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// ListProducts returns one page of products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req listRequest
	if !h.decode(w, r, &req) {
		return
	}
	key, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.products.ListProducts(r.Context(), key, req.Page, req.PageSize)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// CreateProduct creates a sellable product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req createProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.products.CreateProduct(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// UpdateProduct patches an existing product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req updateProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.products.UpdateProduct(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// ListCustomers returns one page of customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req listRequest
	if !h.decode(w, r, &req) {
		return
	}
	key, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.customers.ListCustomers(r.Context(), key, req.Page, req.PageSize)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// EnsureCustomer returns an existing customer by name or creates one.
func (h *Handler) EnsureCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req ensureCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.customers.EnsureCustomer(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"customer": result.Customer,
		"created":  result.Created,
	})
}

// CreateTransaction records a generic money transaction.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req createTransactionRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn, err := h.transactions.CreateTransaction(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

// MonthlySummary aggregates one month of invoices.
func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	var req monthlySummaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	key, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := h.reports.MonthlySummary(r.Context(), key, req.Year, req.Month)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) bool {
	secret := r.Header.Get(SecretHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.InternalSecret)) != 1 {
		h.logger.Warn().
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Msg("Rejected request with missing or invalid secret")
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// respondServiceError maps the error taxonomy onto status codes and the
// failure envelope. Full upstream error lists are embedded, never truncated.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().
		Err(err).
		Str("path", r.URL.Path).
		Msg("Request failed")

	var upstream *application.UpstreamError
	var transport *wave.TransportError
	var gqlErr *wave.GraphQLError
	var missing *config.MissingEntryError

	switch {
	case errors.Is(err, domain.ErrUnknownBusinessKey):
		respondError(w, http.StatusBadRequest, "Invalid businessKey")
	case errors.Is(err, application.ErrInvoiceNotFound):
		respondError(w, http.StatusNotFound, "Invoice not found")
	case errors.As(err, &upstream):
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:       "Upstream rejected the request",
			InputErrors: upstream.Messages,
		})
	case errors.As(err, &missing):
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Server configuration error",
			Details: missing.Error(),
		})
	case errors.Is(err, wave.ErrMissingToken):
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server configuration error",
		})
	case wave.IsDeadlineExceeded(err):
		respondError(w, http.StatusGatewayTimeout, "Upstream request timed out")
	case errors.As(err, &gqlErr):
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Upstream returned errors",
			Details: strings.Join(gqlErr.Messages, "; "),
		})
	case errors.As(err, &transport):
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Upstream request failed",
			Details: transport.Error(),
		})
	case errors.Is(err, wave.ErrMissingData), errors.Is(err, application.ErrBusinessNotFound):
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Unexpected upstream response",
			Details: err.Error(),
		})
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
	}
}

type errorResponse struct {
	Error       string   `json:"error"`
	Details     string   `json:"details,omitempty"`
	InputErrors []string `json:"inputErrors,omitempty"`
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
