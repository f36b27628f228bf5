// Package responses centralizes JSON serialization and the error-to-HTTP
// mapping so controllers never hand-roll status codes.
package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/types"
)

// WriteJSON serializes the payload as-is. List endpoints pass their full
// envelope here; single resources pass the DTO.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteNoContent answers 204 with an empty body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps a typed error onto its HTTP metadata. The public message
// comes from the code's metadata unless the error message is safe to show;
// the full cause chain is only ever logged.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	code := pkgerrors.CodeOf(err)
	if code == "" {
		code = pkgerrors.CodeInternal
	}
	meta := pkgerrors.MetadataFor(code)

	apiErr := types.APIError{
		Code:    string(code),
		Message: meta.PublicMessage,
	}
	if typed := pkgerrors.As(err); typed != nil && meta.DetailsAllowed {
		if typed.Message() != "" {
			apiErr.Message = typed.Message()
		}
		apiErr.Details = typed.Details()
	}

	if logg != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		lctx := logg.WithField(ctx, "error_dump", pkgerrors.Dump(err))
		logg.Error(lctx, "request failed", err)
	}

	WriteJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr})
}
