// Package records shapes validated user input into financial records and
// issues the corresponding writes against the ledger store. It never touches
// the published ledger view; the authoritative confirmation of any write is
// the next store push, not the call's return.
package records

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"registro/internal/auth"
	"registro/internal/core"
	applog "registro/internal/log"
	"registro/internal/store"
)

// FormState mirrors the entry form: all user-editable fields, as strings
// where the form is free text.
type FormState struct {
	Date         string
	Amount       string
	Dimension    string
	SubDimension string
	Description  string
	Type         core.RecordType
}

// Outcome is what a submit or delete hands back to the UI: the form state to
// render, the edit mode to be in and a one-line status message.
type Outcome struct {
	Form      FormState
	EditingID string
	Status    string
}

// DefaultForm returns the reset form: today's date, empty fields, expense.
func DefaultForm(now time.Time) FormState {
	return FormState{
		Date: now.Format(core.DateLayout),
		Type: core.Expense,
	}
}

// Service is the record CRUD controller.
type Service struct {
	store  store.Store
	actors auth.Provider
	now    func() time.Time
}

func NewService(st store.Store, actors auth.Provider) *Service {
	return &Service{
		store:  st,
		actors: actors,
		now:    time.Now,
	}
}

// Submit validates the form and issues an insert (editingID empty) or a
// whole-document update. On success the returned outcome carries the reset
// form and leaves edit mode; on failure the submitted form and editingID are
// returned untouched so the user can retry.
func (s *Service) Submit(ctx context.Context, form FormState, editingID string) (Outcome, error) {
	keep := Outcome{Form: form, EditingID: editingID}

	if strings.TrimSpace(form.Amount) == "" ||
		strings.TrimSpace(form.Dimension) == "" ||
		strings.TrimSpace(form.SubDimension) == "" {
		keep.Status = StatusMissingFields
		return keep, &core.ValidationError{Field: "form", Message: StatusMissingFields}
	}

	amount, err := core.ParseAmount(form.Amount)
	if err != nil {
		verr := &core.ValidationError{Field: "amount", Message: "Monto inválido: " + form.Amount}
		keep.Status = verr.Message
		return keep, verr
	}

	date := strings.TrimSpace(form.Date)
	if date == "" {
		date = s.now().Format(core.DateLayout)
	}

	rec := core.FinancialRecord{
		Date:           date,
		Amount:         amount,
		Dimension:      strings.TrimSpace(form.Dimension),
		SubDimension:   strings.TrimSpace(form.SubDimension),
		Description:    form.Description,
		Type:           form.Type,
		ActorID:        s.actors.ActorID(),
		WriteTimestamp: s.now(),
	}
	if err := rec.Validate(); err != nil {
		if verr, ok := err.(*core.ValidationError); ok {
			keep.Status = verr.Message
		} else {
			keep.Status = StatusMissingFields
		}
		return keep, err
	}

	fields := fieldsFromRecord(rec)

	if editingID == "" {
		id, err := s.store.Insert(ctx, fields)
		if err != nil {
			keep.Status = StatusSaveFailed
			return keep, &PersistenceError{Op: "insert", Err: err}
		}
		slog.InfoContext(ctx, "Record created",
			applog.FieldRecordID, id,
			applog.FieldDate, rec.Date,
			applog.FieldAmount, rec.Amount,
			applog.FieldDimension, rec.Dimension,
			applog.FieldSubDimension, rec.SubDimension,
			applog.FieldType, rec.Type,
			applog.FieldActorID, rec.ActorID)
		return Outcome{Form: DefaultForm(s.now()), Status: StatusCreated}, nil
	}

	if err := s.store.Update(ctx, editingID, fields); err != nil {
		keep.Status = StatusSaveFailed
		return keep, &PersistenceError{Op: "update", Err: err}
	}
	slog.InfoContext(ctx, "Record updated",
		applog.FieldRecordID, editingID,
		applog.FieldDate, rec.Date,
		applog.FieldAmount, rec.Amount,
		applog.FieldActorID, rec.ActorID)
	return Outcome{Form: DefaultForm(s.now()), Status: StatusUpdated}, nil
}

// Delete removes a record. Confirmation is the caller's responsibility; this
// method trusts it was already obtained.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	if err := s.store.Delete(ctx, id); err != nil {
		return StatusDeleteFailed, &PersistenceError{Op: "delete", Err: err}
	}
	slog.InfoContext(ctx, "Record deleted", applog.FieldRecordID, id)
	return StatusDeleted, nil
}

// LoadForEdit projects a record into form state plus its editing id. Pure;
// no store interaction.
func LoadForEdit(rec core.FinancialRecord) (FormState, string) {
	return FormState{
		Date:         rec.Date,
		Amount:       strconv.FormatFloat(rec.Amount, 'f', -1, 64),
		Dimension:    rec.Dimension,
		SubDimension: rec.SubDimension,
		Description:  rec.Description,
		Type:         rec.Type,
	}, rec.ID
}

func fieldsFromRecord(rec core.FinancialRecord) map[string]any {
	return map[string]any{
		store.FieldDate:         rec.Date,
		store.FieldAmount:       rec.Amount,
		store.FieldDimension:    rec.Dimension,
		store.FieldSubDimension: rec.SubDimension,
		store.FieldDescription:  rec.Description,
		store.FieldType:         string(rec.Type),
		store.FieldUserID:       rec.ActorID,
		store.FieldTimestamp:    rec.WriteTimestamp.Format(time.RFC3339Nano),
	}
}
