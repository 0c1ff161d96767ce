package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pitchside/matchday/internal/auth"
	"github.com/pitchside/matchday/internal/domains/dtos"
	"github.com/pitchside/matchday/internal/report"
	"github.com/pitchside/matchday/internal/storage"
	"github.com/pitchside/matchday/pkg/logging"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// Handler serves the match report REST surface.
type Handler struct {
	service    *Service
	authSecret []byte
}

func NewHandler(service *Service, authSecret []byte) *Handler {
	return &Handler{service: service, authSecret: authSecret}
}

// Register mounts the report routes on a router.
func (h *Handler) Register(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.authenticate)
	api.HandleFunc("/matches/{matchId}/report", h.handleGetReport).Methods("GET")
	api.HandleFunc("/matches/{matchId}/report", h.handleSubmitReport).Methods("POST")
	api.HandleFunc("/standings/{teamId}", h.handleGetStanding).Methods("GET")
}

// CorsHandler wraps a router with the CORS policy for browser clients.
func CorsHandler(router *mux.Router) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.TokenFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		identity, err := auth.ValidateToken(token, h.authSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(r *http.Request) auth.Identity {
	identity, _ := r.Context().Value(identityKey).(auth.Identity)
	return identity
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	matchId := mux.Vars(r)["matchId"]
	identity := identityFrom(r)

	snapshot, err := h.service.Snapshot(r.Context(), matchId, identity.UserId)
	if err != nil {
		h.writeServiceError(w, matchId, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	matchId := mux.Vars(r)["matchId"]
	identity := identityFrom(r)

	var req dtos.SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Submit(r.Context(), matchId, identity.UserId, req)
	if err != nil {
		h.writeServiceError(w, matchId, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetStanding(w http.ResponseWriter, r *http.Request) {
	teamId := mux.Vars(r)["teamId"]

	standing, err := h.service.Standing(r.Context(), teamId)
	if err != nil {
		h.writeServiceError(w, teamId, err)
		return
	}
	writeJSON(w, http.StatusOK, standing)
}

// writeServiceError maps the failure taxonomy onto statuses: stale
// version is 409 carrying the stored version, validation 400, missing
// match 404, everything else a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, matchId string, err error) {
	if conflict, ok := storage.AsVersionConflict(err); ok {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":          "version_conflict",
			"message":        conflict.Error(),
			"currentVersion": conflict.CurrentVersion,
		})
		return
	}
	var validation report.ValidationError
	if errors.As(err, &validation) {
		writeError(w, http.StatusBadRequest, validation.Error())
		return
	}
	if errors.Is(err, storage.ErrMatchNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	logging.Error("report request failed",
		zap.String("match_id", matchId),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
