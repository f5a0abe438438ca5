package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"safetrip/pkg/e"
	"safetrip/pkg/validator"
)

const maxBodyBytes = 1 << 20

// BindJSON decodes exactly one JSON object from the request body into target
// and validates it. Unknown fields and trailing data are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, target any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON: %w", e.ErrInvalidInput)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: %w", e.ErrInvalidInput)
	}

	if err := validator.ValidateStruct(target); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), e.ErrInvalidInput)
	}
	return nil
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
