package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Evgen-Mutagen/paymentref/internal/model"
	"github.com/Evgen-Mutagen/paymentref/pkg/paymentref"
)

type fakeReferenceService struct {
	fault    bool
	stats    []*model.SchemeStat
	statsErr error
}

func (f *fakeReferenceService) Validate(_ context.Context, value string) paymentref.Result {
	if f.fault {
		return paymentref.Result{
			Scheme:  paymentref.SchemeNetherlands,
			Kind:    paymentref.KindUnexpectedFault,
			Message: "An unknown error occurred when validating the payment reference: boom",
		}
	}
	return paymentref.Validate(value)
}

func (f *fakeReferenceService) ValidateBatch(ctx context.Context, values []string) []paymentref.Result {
	results := make([]paymentref.Result, len(values))
	for i, v := range values {
		results[i] = f.Validate(ctx, v)
	}
	return results
}

func (f *fakeReferenceService) Stats(context.Context) ([]*model.SchemeStat, error) {
	return f.stats, f.statsErr
}

func (f *fakeReferenceService) FlushStats(context.Context) error { return nil }

func newTestRouter(svc *fakeReferenceService) http.Handler {
	c := NewReferenceController(svc, validator.New(), zap.NewNop())
	r := chi.NewRouter()
	r.Post("/validate", c.Validate)
	r.Post("/check", c.Check)
	r.Post("/batch", c.Batch)
	r.Get("/stats", c.Stats)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReferenceController_Validate(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&fakeReferenceService{})

	t.Run("valid belgian", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/validate", `{"reference":"+++090/9337/55493+++"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp model.ValidationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, model.ValidationResponse{
			Reference: "+++090/9337/55493+++",
			Valid:     true,
			Scheme:    "Belgium",
			Kind:      "valid",
		}, resp)
	})

	t.Run("invalid dutch", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/validate", `{"reference":"7100000000000003"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp model.ValidationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.Equal(t, "Netherlands", resp.Scheme)
		assert.Equal(t, "checksum_mismatch", resp.Kind)
		assert.Equal(t, "The payment reference is not a valid reference in the Netherlands", resp.Message)
	})

	t.Run("empty reference is a result, not an error", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/validate", `{"reference":""}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"malformed_input"`)
	})

	t.Run("bad json", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/validate", `{"reference":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too long", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/validate", `{"reference":"`+strings.Repeat("1", 65)+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReferenceController_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fault  bool
		body   string
		status int
		text   string
	}{
		{name: "valid", body: "06100000000000003", status: http.StatusOK},
		{name: "mismatch", body: "+++090/9337/55494+++", status: http.StatusUnprocessableEntity, text: "not a valid reference in Belgium"},
		{name: "malformed", body: "12345", status: http.StatusUnprocessableEntity, text: "malformed"},
		{name: "empty", body: "", status: http.StatusBadRequest},
		{name: "fault", fault: true, body: "6100000000000003", status: http.StatusInternalServerError, text: "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeReferenceService{fault: tt.fault})
			rec := do(t, h, http.MethodPost, "/check", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			if tt.text != "" {
				assert.Contains(t, rec.Body.String(), tt.text)
			}
		})
	}
}

func TestReferenceController_CheckBodyLimit(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&fakeReferenceService{})
	padding := strings.Repeat(" ", maxCheckBody-16)

	t.Run("at the limit is validated", func(t *testing.T) {
		body := padding + "6100000000000003"
		require.Len(t, body, maxCheckBody)

		rec := do(t, h, http.MethodPost, "/check", body)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("over the limit is rejected, not truncated", func(t *testing.T) {
		body := padding + "6100000000000003" + "999"
		require.Equal(t, paymentref.KindMalformedInput, paymentref.Validate(body).Kind)

		rec := do(t, h, http.MethodPost, "/check", body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestReferenceController_JSONBodyLimit(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&fakeReferenceService{})
	huge := strings.Repeat("1", maxJSONBody)

	t.Run("validate", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/validate", `{"reference":"`+huge+`"}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("batch", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/batch", `{"references":["`+huge+`"]}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestReferenceController_Batch(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&fakeReferenceService{})

	t.Run("keeps order", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/batch", `{"references":["6100000000000003","***090/9337/55493***","x"]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []model.ValidationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 3)
		assert.Equal(t, "6100000000000003", resp[0].Reference)
		assert.True(t, resp[0].Valid)
		assert.Equal(t, "Belgium", resp[1].Scheme)
		assert.True(t, resp[1].Valid)
		assert.Equal(t, "malformed_input", resp[2].Kind)
	})

	t.Run("empty list", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/batch", `{"references":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too many", func(t *testing.T) {
		refs := make([]string, 101)
		for i := range refs {
			refs[i] = "6100000000000003"
		}
		body, err := json.Marshal(model.BatchRequest{References: refs})
		require.NoError(t, err)

		rec := do(t, h, http.MethodPost, "/batch", string(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReferenceController_Stats(t *testing.T) {
	t.Parallel()

	t.Run("no content", func(t *testing.T) {
		rec := do(t, newTestRouter(&fakeReferenceService{}), http.MethodGet, "/stats", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("stats", func(t *testing.T) {
		svc := &fakeReferenceService{stats: []*model.SchemeStat{{Scheme: "Belgium", Kind: "valid", Total: 3}}}
		rec := do(t, newTestRouter(svc), http.MethodGet, "/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var stats []model.SchemeStat
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		require.Len(t, stats, 1)
		assert.Equal(t, int64(3), stats[0].Total)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := &fakeReferenceService{statsErr: errors.New("db down")}
		rec := do(t, newTestRouter(svc), http.MethodGet, "/stats", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
