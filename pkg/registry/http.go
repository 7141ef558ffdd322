package registry

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
	router.HandleFunc("/donor", h.handleRegisterDonor).Methods(http.MethodPost)
	router.HandleFunc("/donor", h.handleListDonors).Methods(http.MethodGet)
	router.HandleFunc("/donor/{id}", h.handleGetDonor).Methods(http.MethodGet)
	router.HandleFunc("/recipient", h.handleRegisterRecipient).Methods(http.MethodPost)
	router.HandleFunc("/recipient", h.handleListRecipients).Methods(http.MethodGet)
	router.HandleFunc("/recipient/{id}", h.handleGetRecipient).Methods(http.MethodGet)
	router.HandleFunc("/match", h.handleCommitMatch).Methods(http.MethodPost)
	router.HandleFunc("/match", h.handleListMatches).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleRegisterDonor(w http.ResponseWriter, r *http.Request) {
	var in models.DonorIntake
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.service.RegisterDonor(r.Context(), in)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to register donor")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *HTTPHandler) handleListDonors(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListDonors(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list donors")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *HTTPHandler) handleGetDonor(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetDonor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "donor not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get donor")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *HTTPHandler) handleRegisterRecipient(w http.ResponseWriter, r *http.Request) {
	var in models.RecipientIntake
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.service.RegisterRecipient(r.Context(), in)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to register recipient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *HTTPHandler) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListRecipients(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list recipients")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *HTTPHandler) handleGetRecipient(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetRecipient(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "recipient not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get recipient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *HTTPHandler) handleCommitMatch(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DonorID == "" || req.RecipientID == "" {
		http.Error(w, "donorId and recipientId are required", http.StatusBadRequest)
		return
	}

	result, err := h.service.CommitMatch(r.Context(), req.DonorID, req.RecipientID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrAlreadyMatched):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			logger.Log.WithError(err).Error("failed to commit match")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	matches, err := h.service.ListMatches(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list matches")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": matches})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
