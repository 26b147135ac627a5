package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorPayload struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, errorPayload{Error: message})
}

// ValidateStruct runs the shared validator and converts the first
// violation into a FieldError naming the offending field.
func ValidateStruct(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return FieldError{
			Field:  strings.ToLower(first.Field()[:1]) + first.Field()[1:],
			Reason: "failed validation: " + first.Tag(),
		}
	}
	return err
}

// WriteDomainError maps expected sentinels to their status codes and
// everything else to a 500 with a generic message. Unexpected errors are
// logged; expected absences are not retried or escalated.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, authz.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, authz.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg(generic)
		WriteError(w, http.StatusInternalServerError, generic)
	}
}
