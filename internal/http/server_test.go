package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"registro/internal/auth"
	"registro/internal/ledger"
	"registro/internal/records"
	"registro/internal/store"
	"registro/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store, *ledger.Engine) {
	t.Helper()

	mem := memory.New(store.CollectionPath("test-app"))
	eng := ledger.New(mem)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("engine start: %v", err)
	}
	t.Cleanup(eng.Stop)

	svc := records.NewService(mem, auth.New("actor-test"))
	s := NewServer("127.0.0.1:0", svc, eng)
	t.Cleanup(func() { s.rateLimiter.stop() })
	if s.templates == nil {
		t.Fatal("templates failed to parse")
	}
	return s, mem, eng
}

func postForm(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func validRecordForm() url.Values {
	return url.Values{
		"date":         {"2024-01-10"},
		"type":         {"Gasto"},
		"amount":       {"120000"},
		"dimension":    {"Salud"},
		"subDimension": {"Plan"},
		"description":  {"plan de salud"},
	}
}

func TestIndex(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := get(s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Registro de Finanzas Familiares") {
		t.Error("page title missing")
	}
	if !strings.Contains(body, "Sin registros todavía.") {
		t.Error("empty ledger placeholder missing")
	}
	if !strings.Contains(body, "Salud") {
		t.Error("dimension options missing")
	}
}

func TestIndex_UnknownPath(t *testing.T) {
	s, _, _ := newTestServer(t)
	if rec := get(s, "/no-such-page"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubmit_CreateAndRender(t *testing.T) {
	s, _, eng := newTestServer(t)

	rec := postForm(s, "/records", validRecordForm())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/?status=created" {
		t.Errorf("Location = %q", loc)
	}

	if n := len(eng.Snapshot()); n != 1 {
		t.Fatalf("ledger has %d records, want 1", n)
	}

	page := get(s, "/?status=created")
	body := page.Body.String()
	if !strings.Contains(body, records.StatusCreated) {
		t.Error("status message missing after redirect")
	}
	if !strings.Contains(body, "plan de salud") || !strings.Contains(body, "$120000") {
		t.Error("created record not rendered")
	}
}

func TestSubmit_ValidationFailurePreservesForm(t *testing.T) {
	s, _, eng := newTestServer(t)

	form := validRecordForm()
	form.Set("amount", "")
	rec := postForm(s, "/records", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, records.StatusMissingFields) {
		t.Error("missing-fields message not shown")
	}
	if !strings.Contains(body, "plan de salud") {
		t.Error("submitted description must be preserved for retry")
	}
	if len(eng.Snapshot()) != 0 {
		t.Error("no record may be created on validation failure")
	}
}

func TestSubmit_Update(t *testing.T) {
	s, _, eng := newTestServer(t)

	postForm(s, "/records", validRecordForm())
	id := eng.Snapshot()[0].ID

	form := validRecordForm()
	form.Set("amount", "95000")
	form.Set("editing_id", id)
	rec := postForm(s, "/records", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?status=updated" {
		t.Errorf("Location = %q", loc)
	}

	snap := eng.Snapshot()
	if len(snap) != 1 || snap[0].Amount != 95000 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestIndex_EditPrefillsForm(t *testing.T) {
	s, _, eng := newTestServer(t)

	postForm(s, "/records", validRecordForm())
	id := eng.Snapshot()[0].ID

	rec := get(s, "/?edit="+id)
	body := rec.Body.String()
	if !strings.Contains(body, `name="editing_id" value="`+id+`"`) {
		t.Error("editing_id not set in form")
	}
	if !strings.Contains(body, "Actualizar Registro") {
		t.Error("edit mode submit label missing")
	}
}

func TestDelete(t *testing.T) {
	s, _, eng := newTestServer(t)

	postForm(s, "/records", validRecordForm())
	id := eng.Snapshot()[0].ID

	rec := postForm(s, "/records/delete", url.Values{"id": {id}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if len(eng.Snapshot()) != 0 {
		t.Error("record not removed from ledger")
	}
}

func TestDelete_MissingID(t *testing.T) {
	s, _, _ := newTestServer(t)
	if rec := postForm(s, "/records/delete", url.Values{}); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExport(t *testing.T) {
	s, _, _ := newTestServer(t)

	// Empty ledger redirects with a notice instead of serving an empty file.
	rec := get(s, "/export.csv")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?status=nodata" {
		t.Errorf("Location = %q", loc)
	}

	postForm(s, "/records", validRecordForm())

	rec = get(s, "/export.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv;charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "registros_financieros_familiares.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Fecha,Tipo,Monto,Dimensión,Subdimensión,Descripción,Usuario ID\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(body, "\n", 2)[0])
	}
	if !strings.Contains(body, `2024-01-10,Gasto,120000,Salud,Plan,"plan de salud",actor-test`) {
		t.Errorf("record row missing: %q", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)

	if rec := get(s, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := get(s, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := get(s, "/")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
