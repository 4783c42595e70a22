package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sms-cost/adapters/storage/memory"
	"sms-cost/core/billing"
	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
)

func standardBands() []types.PriceBand {
	return []types.PriceBand{
		types.NewPriceBand(1, 200, decimal.RequireFromString("0.10")),
		types.NewPriceBand(201, 500, decimal.RequireFromString("0.08")),
		types.NewPriceBand(501, 1000, decimal.RequireFromString("0.06")),
		types.NewOpenPriceBand(1001, decimal.RequireFromString("0.03")),
	}
}

func newTestServer(t *testing.T, strict bool) (*Server, *memory.UsageStore) {
	t.Helper()

	usage := memory.NewUsageStore()
	bands := memory.NewBandStore()
	if err := bands.SetDefault(standardBands()); err != nil {
		t.Fatal(err)
	}

	svc := billing.NewService(usage, bands, billing.Options{Currency: types.CurrencyGBP, Strict: strict})
	return NewServer(svc, Options{Version: "test"}), usage
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp.Error
}

func TestCompute(t *testing.T) {
	s, _ := newTestServer(t, true)

	tests := []struct {
		quantity int64
		want     string
	}{
		{0, "0"},
		{150, "15"},
		{200, "20"},
		{450, "40"},
		{1500, "89"},
	}

	for _, tt := range tests {
		body, _ := json.Marshal(ComputeRequest{Quantity: tt.quantity, Bands: standardBands()})
		rec := do(s, http.MethodPost, "/compute", string(body))

		if rec.Code != http.StatusOK {
			t.Fatalf("quantity %d: expected 200, got %d: %s", tt.quantity, rec.Code, rec.Body)
		}

		var resp ComputeResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Total.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("quantity %d: expected total %s, got %s", tt.quantity, tt.want, resp.Total)
		}
		if resp.Charges == nil {
			t.Errorf("quantity %d: charges should encode as a list", tt.quantity)
		}
	}
}

func TestComputeAcceptsNumericPrices(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := do(s, http.MethodPost, "/compute",
		`{"quantity":10,"bands":[{"quantity_from":1,"unit_price":0.5}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp ComputeResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Total.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected 5, got %s", resp.Total)
	}
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		body   string
		status int
		code   string
	}{
		{"negative quantity", false, `{"quantity":-1,"bands":[]}`, http.StatusBadRequest, string(apperrors.TypeInput)},
		{"malformed json", false, `{"quantity":`, http.StatusBadRequest, "INVALID_JSON"},
		{"empty body", false, ``, http.StatusBadRequest, "INVALID_JSON"},
		{"unknown field", false, `{"qty":1}`, http.StatusBadRequest, "INVALID_JSON"},
		{
			"gapped bands in strict mode", true,
			`{"quantity":10,"bands":[{"quantity_from":1,"quantity_to":5,"unit_price":"1"},{"quantity_from":8,"unit_price":"1"}]}`,
			http.StatusUnprocessableEntity, string(apperrors.TypeBands),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.strict)
			rec := do(s, http.MethodPost, "/compute", tt.body)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body)
			}
			if got := decodeError(t, rec); got.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, got.Code)
			}
		})
	}
}

func TestComputeFollowsServiceStrictness(t *testing.T) {
	gapped := `{"quantity":10,"bands":[{"quantity_from":1,"quantity_to":5,"unit_price":"1"},{"quantity_from":8,"unit_price":"1"}]}`

	tests := []struct {
		strict bool
		status int
	}{
		{false, http.StatusOK},
		{true, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		s, _ := newTestServer(t, tt.strict)
		rec := do(s, http.MethodPost, "/compute", gapped)
		if rec.Code != tt.status {
			t.Errorf("strict=%t: expected %d, got %d: %s", tt.strict, tt.status, rec.Code, rec.Body)
		}
	}
}

func TestSubjectCost(t *testing.T) {
	s, usage := newTestServer(t, true)
	subject := uuid.New()
	period := types.NewPeriod(2024, 3)

	if err := usage.Add(context.Background(), subject, period, 450); err != nil {
		t.Fatal(err)
	}

	rec := do(s, http.MethodGet, "/subjects/"+subject.String()+"/cost?period=2024-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var stmt types.Statement
	if err := json.NewDecoder(rec.Body).Decode(&stmt); err != nil {
		t.Fatalf("failed to decode statement: %v", err)
	}
	if stmt.Subject != subject || stmt.Period != period || stmt.Quantity != 450 {
		t.Errorf("unexpected statement: %+v", stmt)
	}
	if !stmt.Total.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 40, got %s", stmt.Total)
	}
	if stmt.Currency != types.CurrencyGBP {
		t.Errorf("expected GBP, got %s", stmt.Currency)
	}
	if len(stmt.Charges) != 2 {
		t.Errorf("expected 2 charges, got %d", len(stmt.Charges))
	}
}

func TestSubjectCostErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"bad subject", "/subjects/not-a-uuid/cost?period=2024-03", http.StatusBadRequest},
		{"bad period", "/subjects/" + uuid.NewString() + "/cost?period=2024-13", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, true)
			rec := do(s, http.MethodGet, tt.target, "")
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body)
			}
		})
	}
}

func TestSubjectCostWithoutBands(t *testing.T) {
	svc := billing.NewService(memory.NewUsageStore(), memory.NewBandStore(), billing.Options{})
	s := NewServer(svc, Options{})

	rec := do(s, http.MethodGet, "/subjects/"+uuid.NewString()+"/cost?period=2024-03", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
	if got := decodeError(t, rec); got.Code != string(apperrors.TypeNotFound) {
		t.Errorf("expected NOT_FOUND, got %s", got.Code)
	}
}

func TestRecordUsage(t *testing.T) {
	s, usage := newTestServer(t, true)
	subject := uuid.New()
	target := "/subjects/" + subject.String() + "/usage"

	for i := 0; i < 3; i++ {
		rec := do(s, http.MethodPost, target, `{"period":"2024-03","quantity":100}`)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body)
		}
	}

	got, _ := usage.QuantityFor(context.Background(), subject, types.NewPeriod(2024, 3))
	if got != 300 {
		t.Errorf("expected 300 recorded units, got %d", got)
	}

	rec := do(s, http.MethodPost, target, `{"period":"2024-03","quantity":-5}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative usage, got %d", rec.Code)
	}
}

func TestRecordUsageUnsupported(t *testing.T) {
	usage := billing.UsageFunc(func(ctx context.Context, subject uuid.UUID, period types.Period) (int64, error) {
		return 0, nil
	})
	svc := billing.NewService(usage, memory.NewBandStore(), billing.Options{})
	s := NewServer(svc, Options{})

	rec := do(s, http.MethodPost, "/subjects/"+uuid.NewString()+"/usage", `{"period":"2024-03","quantity":1}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	s, _ := newTestServer(t, true)

	for _, path := range []string{"/health", "/version"} {
		rec := do(s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: expected a request id header", path)
		}
	}
}

func TestRequestIDPropagates(t *testing.T) {
	s, _ := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/subjects/nope/cost", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if got := decodeError(t, rec); got.RequestID != "req-42" {
		t.Errorf("expected request id req-42, got %q", got.RequestID)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[apperrors.Type]int{
		apperrors.TypeInput:    http.StatusBadRequest,
		apperrors.TypeNotFound: http.StatusNotFound,
		apperrors.TypeBands:    http.StatusUnprocessableEntity,
		apperrors.TypeStorage:  http.StatusInternalServerError,
		apperrors.TypeConfig:   http.StatusInternalServerError,
	}
	for typ, want := range tests {
		if got := statusFor(typ); got != want {
			t.Errorf("%s: expected %d, got %d", typ, want, got)
		}
	}
}
