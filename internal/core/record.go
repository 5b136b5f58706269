package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Expense and Income keep the wire values the household agreed on;
	// they are stored and exported as-is.
	Expense RecordType = "Gasto"
	Income  RecordType = "Ingreso"

	// DateLayout is the calendar-date format used everywhere: in documents,
	// in form input and in exports. Lexicographic order equals chronological
	// order for this layout.
	DateLayout = "2006-01-02"
)

type (
	// RecordType distinguishes expenses from income.
	RecordType string

	// FinancialRecord is the single entity of the ledger. ID is assigned by
	// the store on insert and never changes afterwards.
	FinancialRecord struct {
		ID             string
		Date           string // YYYY-MM-DD
		Amount         float64
		Dimension      string
		SubDimension   string
		Description    string
		Type           RecordType
		ActorID        string
		WriteTimestamp time.Time
	}
)

var (
	ErrEmptyAmount       = errors.New("empty amount")
	ErrEmptyDimension    = errors.New("empty dimension")
	ErrEmptySubDimension = errors.New("empty subdimension")
	ErrNegativeAmount    = errors.New("negative amount")
)

// ValidationError reports a rejected user input. It never reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// IsValid returns true for the two known record types.
func (t RecordType) IsValid() bool {
	return t == Expense || t == Income
}

// ParseAmount parses a user-supplied amount. Fractional cents are kept as-is.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if v < 0 {
		return 0, ErrNegativeAmount
	}
	return v, nil
}

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Validate enforces the invariants a record must satisfy before any write:
// amount, dimension and subdimension present, the pair known to the taxonomy,
// a parseable date and a known type.
func (r FinancialRecord) Validate() error {
	if strings.TrimSpace(r.Dimension) == "" {
		return &ValidationError{Field: "dimension", Message: "la dimensión es obligatoria"}
	}
	if strings.TrimSpace(r.SubDimension) == "" {
		return &ValidationError{Field: "subDimension", Message: "la subdimensión es obligatoria"}
	}
	if !ValidDimension(r.Dimension) {
		return &ValidationError{Field: "dimension", Message: "dimensión desconocida: " + r.Dimension}
	}
	if !ValidPair(r.Dimension, r.SubDimension) {
		return &ValidationError{Field: "subDimension", Message: "subdimensión inválida para " + r.Dimension}
	}
	if r.Amount < 0 {
		return &ValidationError{Field: "amount", Message: "el monto no puede ser negativo"}
	}
	if !ValidDate(r.Date) {
		return &ValidationError{Field: "date", Message: "fecha inválida: " + r.Date}
	}
	if !r.Type.IsValid() {
		return &ValidationError{Field: "type", Message: "tipo desconocido: " + string(r.Type)}
	}
	return nil
}
