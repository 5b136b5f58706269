package http

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"registro/internal/core"
	"registro/internal/export"
	"registro/internal/ledger"
	"registro/internal/records"
)

// StatusNoExportData is shown when the export is requested on an empty ledger.
const StatusNoExportData = "No hay datos para exportar."

// statusMessages maps redirect status keys to the user-facing message.
var statusMessages = map[string]string{
	"created": records.StatusCreated,
	"updated": records.StatusUpdated,
	"deleted": records.StatusDeleted,
	"nodata":  StatusNoExportData,
}

type recordRow struct {
	ID           string
	Date         string
	Type         string
	Amount       string
	Dimension    string
	SubDimension string
	Description  string
	ActorID      string
	IsIncome     bool
}

type pageData struct {
	Form         records.FormState
	FormIsIncome bool
	EditingID    string
	Status       string
	Records      []recordRow
	TotalIncome  string
	TotalExpense string
	Balance      string
	Dimensions   []string
	TaxonomyJSON template.JS
	SyncError    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	form := records.DefaultForm(time.Now())
	editingID := ""

	// ?edit=<id> preloads a record into the form.
	if id := strings.TrimSpace(r.URL.Query().Get("edit")); id != "" {
		for _, rec := range s.engine.Snapshot() {
			if rec.ID == id {
				form, editingID = records.LoadForEdit(rec)
				break
			}
		}
	}

	status := statusMessages[r.URL.Query().Get("status")]

	s.renderPage(w, r, http.StatusOK, form, editingID, status)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		http.Error(w, "Formato de solicitud no válido", http.StatusBadRequest)
		return
	}

	recType := core.Expense
	if core.RecordType(r.Form.Get("type")) == core.Income {
		recType = core.Income
	}

	form := records.FormState{
		Date:         strings.TrimSpace(r.Form.Get("date")),
		Amount:       strings.TrimSpace(r.Form.Get("amount")),
		Dimension:    sanitizeInput(r.Form.Get("dimension")),
		SubDimension: sanitizeInput(r.Form.Get("subDimension")),
		Description:  sanitizeInput(r.Form.Get("description")),
		Type:         recType,
	}
	editingID := strings.TrimSpace(r.Form.Get("editing_id"))

	outcome, err := s.service.Submit(r.Context(), form, editingID)
	if err != nil {
		var verr *core.ValidationError
		code := http.StatusInternalServerError
		if errors.As(err, &verr) {
			code = http.StatusUnprocessableEntity
		}
		s.renderPage(w, r, code, outcome.Form, outcome.EditingID, outcome.Status)
		return
	}

	key := "created"
	if outcome.Status == records.StatusUpdated {
		key = "updated"
	}
	http.Redirect(w, r, "/?status="+key, http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formato de solicitud no válido", http.StatusBadRequest)
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		http.Error(w, "Falta el identificador del registro", http.StatusBadRequest)
		return
	}

	status, err := s.service.Delete(r.Context(), id)
	if err != nil {
		s.renderPage(w, r, http.StatusInternalServerError, records.DefaultForm(time.Now()), "", status)
		return
	}
	http.Redirect(w, r, "/?status=deleted", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := export.CSV(s.engine.Snapshot())
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			http.Redirect(w, r, "/?status=nodata", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		http.Error(w, "Error generando la exportación", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, code int, form records.FormState, editingID, status string) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	snapshot := s.engine.Snapshot()
	totals := core.Aggregate(snapshot)

	data := pageData{
		Form:         form,
		FormIsIncome: form.Type == core.Income,
		EditingID:    editingID,
		Status:       status,
		TotalIncome:  formatAmount(totals.TotalIncome),
		TotalExpense: formatAmount(totals.TotalExpenses),
		Balance:      formatAmount(totals.Balance),
		Dimensions:   core.Dimensions(),
		TaxonomyJSON: taxonomyJSON(),
	}
	for _, rec := range snapshot {
		data.Records = append(data.Records, recordRow{
			ID:           rec.ID,
			Date:         rec.Date,
			Type:         string(rec.Type),
			Amount:       formatAmount(rec.Amount),
			Dimension:    rec.Dimension,
			SubDimension: rec.SubDimension,
			Description:  rec.Description,
			ActorID:      rec.ActorID,
			IsIncome:     rec.Type == core.Income,
		})
	}
	if err := s.engine.LastError(); err != nil {
		var serr *ledger.SyncError
		if errors.As(err, &serr) {
			data.SyncError = "Error de sincronización; mostrando la última vista conocida."
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func formatAmount(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}

func taxonomyJSON() template.JS {
	b, err := json.Marshal(core.Taxonomy)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
