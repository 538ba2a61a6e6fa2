package http

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"sharesphere-backend/internal/errors"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"Validation", errors.Validation("bad input"), http.StatusBadRequest, "VALIDATION"},
		{"Authorization", errors.Authorization("not yours"), http.StatusForbidden, "NOT_AUTHORIZED"},
		{"State conflict", errors.StateConflict("already approved"), http.StatusConflict, "STATE_CONFLICT"},
		{"Insufficient funds", errors.InsufficientFunds("short 10 tokens"), http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
		{"Not found", errors.NotFound("no such item"), http.StatusNotFound, "NOT_FOUND"},
		{"Untyped stays opaque", stderrors.New("db connection lost"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/test", nil)

			writeError(rec, req, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantCode)
			if tc.wantCode == "INTERNAL" {
				// Internal detail must not leak to the client.
				assert.NotContains(t, rec.Body.String(), "db connection lost")
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	var dst struct{}
	err := decodeJSON(req, &dst)
	assert.True(t, errors.Is(err, errors.KindValidation))
}
