package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"arms-backoffice/internal/app"
	"arms-backoffice/internal/core"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	log    *logrus.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *logrus.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/health", h.health)

	r.Route("/warehouses", func(r chi.Router) {
		r.Get("/", h.listWarehouses)
		r.Post("/", h.createWarehouse)
		r.Get("/{id}", h.getWarehouse)
		r.Delete("/{id}", h.disableWarehouse)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.addProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.disableProduct)
	})

	r.Route("/produced-products", func(r chi.Router) {
		r.Get("/", h.listProducedUnits)
		r.Post("/", h.produce)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Delete("/{id}", h.disableCustomer)
	})

	r.Route("/supply-contracts", func(r chi.Router) {
		r.Get("/", h.listContracts)
		r.Post("/", h.createContract)
		r.Get("/{id}", h.getContract)
		r.Post("/{id}/complete", h.completeContract)
		r.Patch("/{id}/status", h.changeContractStatus)
	})

	r.Route("/financial-situation", func(r chi.Router) {
		r.Get("/", h.listLedgerEntries)
		r.Post("/", h.applyBalanceOperation)
		r.Get("/balance", h.getBalance)
		r.Get("/operation-types", h.listOperationTypes)
	})

	r.Get("/deal-history", h.listDeals)

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// respondError renders a core error; untyped failures are logged with the
// request id before the generic 500 goes out.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusForError(err)
	if code == "INTERNAL_ERROR" || code == "CONFIGURATION_ERROR" {
		h.log.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Error("request failed")
	}
	writeError(w, r, message, code, status)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Warehouses ────────────────────────────────────────────────────────────────

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	filter := core.WarehouseFilter{
		Name:     r.URL.Query().Get("name"),
		Type:     core.WarehouseType(r.URL.Query().Get("warehouse_type")),
		Disabled: queryBool(r, "disable"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}
	result, err := h.svc.ListWarehouses(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetWarehouse(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var req app.CreateWarehouseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.CreateWarehouse(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) disableWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.DisableWarehouse(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Products ──────────────────────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := core.ProductFilter{
		Name:            r.URL.Query().Get("name"),
		Type:            r.URL.Query().Get("product_type"),
		Subtype:         r.URL.Query().Get("product_subtype"),
		StorageLocation: queryInt64(r, "storage_location"),
		Disabled:        queryBool(r, "disable"),
		MinQuantity:     queryInt64(r, "min_quantity"),
		MinPrice:        queryDecimal(r, "min_price"),
		Page:            queryInt(r, "page"),
		Limit:           queryInt(r, "limit"),
	}
	result, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req app.AddProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.AddProduct(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.UpdateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) disableProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.DisableProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Production ────────────────────────────────────────────────────────────────

func (h *Handler) produce(w http.ResponseWriter, r *http.Request) {
	var req app.ProduceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.Produce(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) listProducedUnits(w http.ResponseWriter, r *http.Request) {
	filter := core.ProducedUnitFilter{
		ProductID:       queryInt64(r, "product_id"),
		ContractID:      queryInt64(r, "contract_id"),
		StorageLocation: queryInt64(r, "storage_location"),
		SerialNumber:    r.URL.Query().Get("serial_number"),
		MintedFrom:      r.URL.Query().Get("minted_from"),
		Unreserved:      r.URL.Query().Get("unreserved") == "true",
		Page:            queryInt(r, "page"),
		Limit:           queryInt(r, "limit"),
	}
	result, err := h.svc.ListProducedUnits(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	filter := core.CustomerFilter{
		Name:     r.URL.Query().Get("name"),
		Type:     r.URL.Query().Get("type"),
		Disabled: queryBool(r, "disable"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}
	result, err := h.svc.ListCustomers(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req app.CreateCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) disableCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.DisableCustomer(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Supply contracts ──────────────────────────────────────────────────────────

func (h *Handler) listContracts(w http.ResponseWriter, r *http.Request) {
	filter := core.ContractFilter{
		CustomerID: queryInt64(r, "customer_id"),
		Status:     core.ContractStatus(r.URL.Query().Get("contract_status")),
		Type:       r.URL.Query().Get("contract_type"),
		Currency:   r.URL.Query().Get("currency"),
		Disabled:   queryBool(r, "disable"),
		DateFrom:   r.URL.Query().Get("date_from"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
	result, err := h.svc.ListContracts(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetContract(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createContract(w http.ResponseWriter, r *http.Request) {
	var req app.CreateContractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.CreateContract(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) completeContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CompleteContract(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) changeContractStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.ChangeContractStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.ChangeContractStatus(r.Context(), id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Financial situation ───────────────────────────────────────────────────────

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBalance(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listLedgerEntries(w http.ResponseWriter, r *http.Request) {
	filter := core.LedgerFilter{
		OperationTypeID: queryInt64(r, "operation_type_id"),
		DateFrom:        r.URL.Query().Get("date_from"),
		DateTo:          r.URL.Query().Get("date_to"),
		Page:            queryInt(r, "page"),
		Limit:           queryInt(r, "limit"),
	}
	result, err := h.svc.ListLedgerEntries(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) applyBalanceOperation(w http.ResponseWriter, r *http.Request) {
	var req app.BalanceOperationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.ApplyBalanceOperation(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) listOperationTypes(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOperationTypes(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Deal history ──────────────────────────────────────────────────────────────

func (h *Handler) listDeals(w http.ResponseWriter, r *http.Request) {
	filter := core.DealFilter{
		CustomerID: queryInt64(r, "customer_id"),
		ContractID: queryInt64(r, "contract_id"),
		From:       r.URL.Query().Get("from"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
	result, err := h.svc.ListDeals(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ── Request parsing helpers ───────────────────────────────────────────────────

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func queryInt64(r *http.Request, key string) *int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(r *http.Request, key string) *bool {
	switch r.URL.Query().Get(key) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func queryDecimal(r *http.Request, key string) *decimal.Decimal {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &v
}
