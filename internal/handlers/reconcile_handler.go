package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/luckpool/backend/internal/services"
)

type ReconcileHandler struct {
	service   *services.ReconcileService
	validator *services.ValidationHelper
}

func NewReconcileHandler(service *services.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// Trigger runs a reconciliation pass over unchecked tickets
// @Summary Trigger Reconciliation
// @Description Match unchecked tickets against drawings, credit pools, and notify members
// @Tags Reconcile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ReconcileRequest false "Optional game and draw date filter"
// @Success 200 {object} services.RunReport
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Failure 500 {object} services.RunReport
// @Router /reconcile [post]
func (h *ReconcileHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		log.Printf("[RECONCILE] Trigger - Unauthorized: userID missing from context")
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	if err := h.service.CheckRateLimit(r.Context(), userID); err != nil {
		log.Printf("[RECONCILE] Trigger - Rate limited: caller=%s", userID)
		services.SendErrorResponse(w, "Too many reconciliation triggers, try again later", http.StatusTooManyRequests, nil)
		return
	}

	var req services.ReconcileRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	// The body is optional; an empty body means all games, latest drawings.
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("[RECONCILE] Trigger - Decode error: %v", err)
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	} else if err == nil {
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			log.Printf("[RECONCILE] Trigger - Multiple JSON objects detected")
			services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
			return
		}
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		log.Printf("[RECONCILE] Trigger - Validation error: %v", err)
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	log.Printf("[RECONCILE] Trigger - caller=%s, game=%q, date=%q", userID, req.GameType, req.DrawDate)

	report := h.service.Run(r.Context(), userID, req)

	w.Header().Set("Content-Type", "application/json")
	if !report.Success {
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(report)
}

// LatestRuns returns the most recent reconciliation run reports
// @Summary Latest Reconciliation Runs
// @Description Get the most recent persisted run reports, newest first
// @Tags Reconcile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.RunReport
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /reconcile/runs/latest [get]
func (h *ReconcileHandler) LatestRuns(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	reports, err := h.service.LatestRuns(r.Context(), 10)
	if err != nil {
		log.Printf("[RECONCILE] LatestRuns - Query error: %v", err)
		services.SendErrorResponse(w, "Failed to load run reports", http.StatusInternalServerError, nil)
		return
	}
	if reports == nil {
		reports = []json.RawMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}
