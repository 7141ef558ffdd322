package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ocumatch/platform/pkg/common/logger"
	"github.com/ocumatch/platform/pkg/common/models"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/api/v1/compatibility", h.handleEvaluate).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/match/predict", h.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/match/suggestions", h.handleSuggestions).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/match/detect/{type}/{id}", h.handleDetect).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/match/candidates/{type}/{id}", h.handleCandidates).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/match", h.handleCommit).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DonorID == "" || req.RecipientID == "" {
		http.Error(w, "donorId and recipientId are required", http.StatusBadRequest)
		return
	}

	evaluation, err := h.service.Evaluate(r.Context(), req.DonorID, req.RecipientID)
	if err != nil {
		h.writeError(w, err, "failed to evaluate pair")
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DonorID == "" || req.RecipientID == "" {
		http.Error(w, "donorId and recipientId are required", http.StatusBadRequest)
		return
	}

	pair, err := h.service.Predict(r.Context(), req.DonorID, req.RecipientID)
	if err != nil {
		h.writeError(w, err, "failed to predict pair")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *HTTPHandler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.Suggest(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to build suggestions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": suggestions})
}

func (h *HTTPHandler) handleDetect(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subjectType := vars["type"]
	if subjectType != "donor" && subjectType != "recipient" {
		http.Error(w, "subject type must be donor or recipient", http.StatusBadRequest)
		return
	}

	detection, err := h.service.Detect(r.Context(), subjectType, vars["id"])
	if err != nil {
		h.writeError(w, err, "failed to run perfect-match scan")
		return
	}
	writeJSON(w, http.StatusOK, detection)
}

func (h *HTTPHandler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subjectType := vars["type"]
	if subjectType != "donor" && subjectType != "recipient" {
		http.Error(w, "subject type must be donor or recipient", http.StatusBadRequest)
		return
	}

	minHLA := 0.0
	if raw := r.URL.Query().Get("minHLA"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid minHLA", http.StatusBadRequest)
			return
		}
		minHLA = parsed
	}

	candidates, err := h.service.Candidates(r.Context(), subjectType, vars["id"], minHLA)
	if err != nil {
		h.writeError(w, err, "failed to list candidates")
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (h *HTTPHandler) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DonorID == "" || req.RecipientID == "" {
		http.Error(w, "donorId and recipientId are required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Commit(r.Context(), req.DonorID, req.RecipientID)
	if err != nil {
		h.writeError(w, err, "failed to commit match")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "record not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyMatched):
		http.Error(w, "record already matched", http.StatusConflict)
	case errors.Is(err, ErrStoreUnavailable):
		logger.Log.WithError(err).Error(msg)
		http.Error(w, "record store unavailable", http.StatusBadGateway)
	default:
		logger.Log.WithError(err).Error(msg)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
