/*
handlers.go - HTTP request handlers

PURPOSE:
  Thin HTTP layer over the three engines and the store. Handlers decode a
  DTO, run the pure computation, persist a history record and encode the
  response. No arithmetic lives here.

ERROR MAPPING:
  calc.ErrValidation  -> 400 (details carry the offending field)
  calc.ErrNotFound    -> 404
  calc.ErrLookup      -> 422 (input is well-formed, a factor is missing)
  anything else       -> 500

HISTORY:
  Every successful compute is saved with the caller's X-Owner-ID header
  (empty when absent). Persistence failures are logged, never surfaced:
  the calculation itself succeeded.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: routing
*/
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juriscalc/calc-engine/arrears"
	"github.com/juriscalc/calc-engine/calc"
	"github.com/juriscalc/calc-engine/debt"
	"github.com/juriscalc/calc-engine/sentence"
	"github.com/juriscalc/calc-engine/store/sqlite"
)

const ownerHeader = "X-Owner-ID"

// Handler holds the dependencies of every endpoint.
type Handler struct {
	store   *sqlite.Store
	indexes calc.FactorProvider
	log     *zap.Logger
}

// NewHandler wires the endpoints. The store doubles as the correction-factor
// provider; pass a nil store for a stateless server (no history, factor 1).
func NewHandler(store *sqlite.Store, log *zap.Logger) *Handler {
	var indexes calc.FactorProvider = calc.Unity{}
	if store != nil {
		indexes = store
	}
	return &Handler{store: store, indexes: indexes, log: log}
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// ComputeDebt handles POST /api/calculations/debt
func (h *Handler) ComputeDebt(w http.ResponseWriter, r *http.Request) {
	var req DebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request", nil)
		return
	}

	terms, asOf, err := req.toDomain()
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	result, err := debt.Compute(terms, asOf, h.indexes)
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	resp := toDebtResponse(result)
	resp.ID = h.saveHistory(r, "debt", req, resp, result.Report.String())
	h.writeJSON(w, http.StatusOK, resp)
}

// ComputeArrears handles POST /api/calculations/arrears
func (h *Handler) ComputeArrears(w http.ResponseWriter, r *http.Request) {
	var req ArrearsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request", nil)
		return
	}

	ob, asOf, err := req.toDomain()
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	result, err := arrears.Compute(ob, asOf)
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	resp := toArrearsResponse(result)
	resp.ID = h.saveHistory(r, "arrears", req, resp, result.Report.String())
	h.writeJSON(w, http.StatusOK, resp)
}

// ComputeSentence handles POST /api/calculations/sentence
func (h *Handler) ComputeSentence(w http.ResponseWriter, r *http.Request) {
	var req SentenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request", nil)
		return
	}

	in, asOf, err := req.toDomain()
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	result, err := sentence.Compute(in, asOf)
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	resp := toSentenceResponse(result)
	resp.ID = h.saveHistory(r, "sentence", req, resp, result.Report.String())
	h.writeJSON(w, http.StatusOK, resp)
}

// saveHistory persists a successful run and returns the record id, or ""
// when the server runs without a store or persistence fails.
func (h *Handler) saveHistory(r *http.Request, kind string, input, result any, report string) string {
	if h.store == nil {
		return ""
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		h.log.Warn("failed to marshal calculation input", zap.String("kind", kind), zap.Error(err))
		return ""
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		h.log.Warn("failed to marshal calculation result", zap.String("kind", kind), zap.Error(err))
		return ""
	}

	rec := &sqlite.CalculationRecord{
		OwnerID:    r.Header.Get(ownerHeader),
		Kind:       kind,
		InputJSON:  string(inputJSON),
		ResultJSON: string(resultJSON),
		Report:     report,
	}
	if err := h.store.SaveCalculation(r.Context(), rec); err != nil {
		h.log.Warn("failed to save calculation history", zap.String("kind", kind), zap.Error(err))
		return ""
	}
	return rec.ID
}

// =============================================================================
// HISTORY
// =============================================================================

// requireStore guards the endpoints that only exist with persistence.
func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		h.writeError(w, http.StatusNotFound, "server is running without persistence", "not_found", nil)
		return false
	}
	return true
}

// ListCalculations handles GET /api/calculations
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = r.Header.Get(ownerHeader)
	}
	records, err := h.store.ListCalculations(r.Context(), owner, 0)
	if err != nil {
		h.serverError(w, "failed to list calculations", err)
		return
	}

	dtos := make([]CalculationDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toCalculationDTO(rec, false))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

// GetCalculation handles GET /api/calculations/{id}
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	rec, err := h.store.GetCalculation(r.Context(), chi.URLParam(r, "id"))
	if calc.IsNotFound(err) {
		h.writeError(w, http.StatusNotFound, "calculation not found", "not_found", nil)
		return
	}
	if err != nil {
		h.serverError(w, "failed to load calculation", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCalculationDTO(*rec, true))
}

// DeleteCalculation handles DELETE /api/calculations/{id}
func (h *Handler) DeleteCalculation(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	if err := h.store.DeleteCalculation(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.serverError(w, "failed to delete calculation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCalculationDTO(rec sqlite.CalculationRecord, full bool) CalculationDTO {
	dto := CalculationDTO{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Kind:      rec.Kind,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if full {
		dto.Input = json.RawMessage(rec.InputJSON)
		dto.Result = json.RawMessage(rec.ResultJSON)
		dto.Report = rec.Report
	}
	return dto
}

// =============================================================================
// INDEXES
// =============================================================================

// ListIndexes handles GET /api/indexes
func (h *Handler) ListIndexes(w http.ResponseWriter, r *http.Request) {
	codes := calc.KnownIndexes()
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, string(c))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"indexes": names})
}

// ListFactors handles GET /api/indexes/{code}/factors
func (h *Handler) ListFactors(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	code := calc.IndexCode(chi.URLParam(r, "code"))
	if code == calc.IndexNone || !code.Valid() {
		h.writeError(w, http.StatusNotFound, "unknown index", "not_found", nil)
		return
	}

	records, err := h.store.ListFactors(r.Context(), code)
	if err != nil {
		h.serverError(w, "failed to list factors", err)
		return
	}

	dtos := make([]FactorDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, FactorDTO{Month: rec.Month, Factor: rec.Factor.String()})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"code": string(code), "factors": dtos})
}

// PutFactors handles PUT /api/indexes/{code}/factors
func (h *Handler) PutFactors(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	code := calc.IndexCode(chi.URLParam(r, "code"))
	if code == calc.IndexNone || !code.Valid() {
		h.writeError(w, http.StatusNotFound, "unknown index", "not_found", nil)
		return
	}

	var req PutFactorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request", nil)
		return
	}
	if len(req.Factors) == 0 {
		h.writeError(w, http.StatusBadRequest, "no factors supplied", "validation", map[string]string{"field": "factors"})
		return
	}

	factors := make(map[string]decimal.Decimal, len(req.Factors))
	for month, raw := range req.Factors {
		if _, err := calc.ParseDate(month + "-01"); err != nil {
			h.writeError(w, http.StatusBadRequest, "month must be YYYY-MM: "+month, "validation", map[string]string{"field": "factors"})
			return
		}
		f, err := decimal.NewFromString(raw)
		if err != nil || !f.IsPositive() {
			h.writeError(w, http.StatusBadRequest, "factor for "+month+" must be a positive decimal", "validation", map[string]string{"field": "factors"})
			return
		}
		factors[month] = f
	}

	if err := h.store.SaveFactors(r.Context(), code, factors); err != nil {
		h.serverError(w, "failed to save factors", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"code": string(code), "saved": len(factors)})
}

// =============================================================================
// HEALTH
// =============================================================================

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string, details any) {
	h.writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

// writeComputeError maps engine errors onto HTTP statuses.
func (h *Handler) writeComputeError(w http.ResponseWriter, err error) {
	var vErr *calc.ValidationError
	if errors.As(err, &vErr) {
		h.writeError(w, http.StatusBadRequest, vErr.Error(), "validation", map[string]string{"field": vErr.Field})
		return
	}
	if calc.IsClientError(err) {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation", nil)
		return
	}

	var lErr *calc.LookupError
	if errors.As(err, &lErr) {
		h.writeError(w, http.StatusUnprocessableEntity, lErr.Error(), "index_lookup",
			map[string]string{"index": string(lErr.Index), "month": lErr.Month})
		return
	}

	h.serverError(w, "calculation failed", err)
}

func (h *Handler) serverError(w http.ResponseWriter, message string, err error) {
	h.log.Error(message, zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, message, "internal", nil)
}
