// Package api - HTTP handlers for cost computation
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sms-cost/core/pricing"
	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// handleCompute handles POST /compute
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Quantity < 0 {
		s.writeError(w, r, string(apperrors.TypeInput), "quantity must not be negative", http.StatusBadRequest)
		return
	}

	if s.svc.Strict() {
		if err := pricing.ValidateBands(req.Bands); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}

	charges, total := s.svc.Calculator().Price(req.Quantity, req.Bands)

	s.writeJSON(w, ComputeResponse{
		Quantity: req.Quantity,
		Total:    total,
		Charges:  charges,
	}, http.StatusOK)
}

// handleCost handles GET /subjects/{id}/cost?period=YYYY-MM
func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	subject, err := types.ParseSubject(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, string(apperrors.TypeInput), err.Error(), http.StatusBadRequest)
		return
	}

	period := types.PeriodOf(time.Now().UTC())
	if raw := r.URL.Query().Get("period"); raw != "" {
		period, err = types.ParsePeriod(raw)
		if err != nil {
			s.writeError(w, r, string(apperrors.TypeInput), err.Error(), http.StatusBadRequest)
			return
		}
	}

	stmt, err := s.svc.CostFor(r.Context(), subject, period)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, stmt, http.StatusOK)
}

// handleUsage handles POST /subjects/{id}/usage
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	subject, err := types.ParseSubject(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, string(apperrors.TypeInput), err.Error(), http.StatusBadRequest)
		return
	}

	var req UsageRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	err = s.svc.RecordUsage(r.Context(), types.UsageRecord{
		Subject:  subject,
		Period:   req.Period,
		Quantity: req.Quantity,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"service":     "sms-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// statusFor maps a domain error type to an HTTP status
func statusFor(t apperrors.Type) int {
	switch t {
	case apperrors.TypeInput:
		return http.StatusBadRequest
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	case apperrors.TypeBands:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	t := apperrors.TypeOf(err)
	status := statusFor(t)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err))
	}
	s.writeError(w, r, string(t), err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	s.writeJSON(w, ErrorResponse{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			RequestID: requestID(r.Context()),
		},
	}, status)
}
