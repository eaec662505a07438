package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmrc/retreats/internal/models"
	"github.com/dmrc/retreats/internal/services"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Storage failures are
// logged with their cause and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *services.ValidationError
		cerr *services.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   verr.Code,
			"field":   verr.Field,
			"message": verr.Error(),
		})
	case errors.Is(err, services.ErrTicketNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "invalid_ticket",
			"message": "ticket not found",
			"valid":   false,
		})
	case errors.Is(err, services.ErrBookingNotFound), errors.Is(err, services.ErrRetreatNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "not_found",
			"message": err.Error(),
		})
	case errors.As(err, &cerr):
		body := map[string]any{"error": "conflict", "message": cerr.Reason}
		if cerr.Booking != nil {
			body["booking"] = cerr.Booking
		}
		writeJSON(w, http.StatusConflict, body)
	default:
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "internal",
			"message": "something went wrong, please try again",
		})
	}
}

// decodeJSON reads a single JSON object into dst. Type mismatches come back
// as invalid_type ValidationErrors naming the offending field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var (
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return &services.ValidationError{Field: "body", Code: services.CodeRequired, Message: "request body is empty"}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &services.ValidationError{
			Field:   field,
			Code:    services.CodeInvalidType,
			Message: fmt.Sprintf("must be %s, got %s", jsonKind(typeErr.Type.Kind().String()), typeErr.Value),
		}
	case errors.Is(err, models.ErrAgeType):
		return &services.ValidationError{Field: "form.familyMembers.age", Code: services.CodeInvalidType, Message: err.Error()}
	case errors.As(err, &tooBig):
		return &services.ValidationError{Field: "body", Code: services.CodeInvalid, Message: "request body too large"}
	case errors.As(err, &synErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &services.ValidationError{Field: "body", Code: services.CodeInvalid, Message: "malformed JSON"}
	}
	return &services.ValidationError{Field: "body", Code: services.CodeInvalid, Message: err.Error()}
}

func jsonKind(k string) string {
	switch k {
	case "string":
		return "a string"
	case "struct", "map":
		return "an object"
	case "slice", "array":
		return "an array"
	case "bool":
		return "a boolean"
	}
	return "a number"
}

// idParam parses a positive numeric URL parameter.
func idParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, &services.ValidationError{Field: name, Code: services.CodeInvalid, Message: "must be a positive integer"}
	}
	return uint(n), nil
}
