package consultation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T, gen *stubGenerator, dev bool) http.Handler {
	t.Helper()
	svc := newTestService(t, gen)
	h := NewHandler(svc, dev)

	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return resp.Error
}

func TestGenerateEndpoint_ReturnsHTMLReport(t *testing.T) {
	gen := &stubGenerator{output: wellFormedOutput}
	h := newTestHandler(t, gen, false)

	rec := postJSON(t, h, "/api/v1/consultations/generate", `{"prompt": "`+clinicalNotes+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML content type, got %q", ct)
	}
	for _, want := range []string{"55", "IIA"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestGenerateEndpoint_MissingPromptIs400(t *testing.T) {
	for _, body := range []string{`{}`, `{"prompt": ""}`, `{"prompt": "   "}`} {
		gen := &stubGenerator{output: wellFormedOutput}
		h := newTestHandler(t, gen, false)

		rec := postJSON(t, h, "/api/v1/consultations/generate", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
		if e := decodeError(t, rec); e.Kind != KindInput {
			t.Errorf("body %s: expected input kind, got %s", body, e.Kind)
		}
		if gen.calls != 0 {
			t.Errorf("body %s: provider called %d times for rejected input", body, gen.calls)
		}
	}
}

func TestGenerateEndpoint_MalformedBodyIs400(t *testing.T) {
	gen := &stubGenerator{output: wellFormedOutput}
	h := newTestHandler(t, gen, false)

	rec := postJSON(t, h, "/api/v1/consultations/generate", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if gen.calls != 0 {
		t.Errorf("provider called %d times for malformed body", gen.calls)
	}
}

func TestGenerateEndpoint_SchemaViolationDetailGatedByMode(t *testing.T) {
	badOutput := `{"history": "only a history"}`

	prod := newTestHandler(t, &stubGenerator{output: badOutput}, false)
	rec := postJSON(t, prod, "/api/v1/consultations/generate", `{"prompt": "notes"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	e := decodeError(t, rec)
	if e.Kind != KindSchemaViolation {
		t.Errorf("expected schema_violation kind, got %s", e.Kind)
	}
	if len(e.Violations) != 0 || e.RawText != "" {
		t.Error("production responses must not carry violations or raw output")
	}

	dev := newTestHandler(t, &stubGenerator{output: badOutput}, true)
	rec = postJSON(t, dev, "/api/v1/consultations/generate", `{"prompt": "notes"}`)
	e = decodeError(t, rec)
	if len(e.Violations) == 0 {
		t.Error("dev responses must carry the violation list")
	}
	if e.RawText != badOutput {
		t.Error("dev responses must carry the raw model output")
	}
}

func TestValidateEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, false)

	rec := postJSON(t, h, "/api/v1/consultations/validate", `{"record": `+wellFormedOutput+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp validateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Valid || len(resp.Violations) != 0 {
		t.Errorf("expected a valid verdict, got %+v", resp)
	}

	rec = postJSON(t, h, "/api/v1/consultations/validate", `{"record": {"history": "x"}}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Valid || len(resp.Violations) == 0 {
		t.Errorf("expected violations for an incomplete record, got %+v", resp)
	}

	rec = postJSON(t, h, "/api/v1/consultations/validate", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a missing record, got %d", rec.Code)
	}
}

func TestSchemaEndpoint_ServesCanonicalDocument(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("schema response is not JSON: %v", err)
	}
	if doc["$id"] != "https://oncoscribe.dev/schemas/consult-record/v1" {
		t.Errorf("unexpected schema id %v", doc["$id"])
	}
}
