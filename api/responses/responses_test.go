package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/types"
)

func TestWriteJSONSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, map[string]string{"status": "ok"})

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestWriteErrorMapsTypedCodes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "not found",
			err:     pkgerrors.New(pkgerrors.CodeNotFound, "product not found"),
			status:  404,
			code:    "NOT_FOUND",
			message: "resource not found",
		},
		{
			name:    "validation keeps its message",
			err:     pkgerrors.New(pkgerrors.CodeValidation, "name is required"),
			status:  400,
			code:    "VALIDATION_ERROR",
			message: "name is required",
		},
		{
			name:    "dependency hides the cause",
			err:     pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("pq: connection refused"), "listing products"),
			status:  500,
			code:    "DEPENDENCY_ERROR",
			message: "error retrieving records",
		},
		{
			name:    "untyped becomes internal",
			err:     errors.New("boom"),
			status:  500,
			code:    "INTERNAL_ERROR",
			message: "internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)

			var envelope types.ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tc.code, envelope.Error.Code)
			assert.Equal(t, tc.message, envelope.Error.Message)
		})
	}
}
