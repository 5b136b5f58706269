package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"registro/internal/core"
	"registro/internal/store"
)

// RecordFromDocument converts a raw store document into a FinancialRecord.
// Optional fields fall back to defaults (empty description, empty actor id,
// zero write timestamp); a document missing any required field is rejected
// and the caller drops it from the view rather than publishing a partial
// record.
func RecordFromDocument(doc store.Document) (core.FinancialRecord, error) {
	rec := core.FinancialRecord{ID: doc.ID}

	date, ok := asString(doc.Fields[store.FieldDate])
	if !ok || date == "" {
		return rec, fmt.Errorf("document %s: missing date", doc.ID)
	}
	rec.Date = date

	amount, ok := asFloat(doc.Fields[store.FieldAmount])
	if !ok {
		return rec, fmt.Errorf("document %s: missing amount", doc.ID)
	}
	rec.Amount = amount

	dim, ok := asString(doc.Fields[store.FieldDimension])
	if !ok || dim == "" {
		return rec, fmt.Errorf("document %s: missing dimension", doc.ID)
	}
	rec.Dimension = dim

	sub, ok := asString(doc.Fields[store.FieldSubDimension])
	if !ok || sub == "" {
		return rec, fmt.Errorf("document %s: missing subDimension", doc.ID)
	}
	rec.SubDimension = sub

	typ, ok := asString(doc.Fields[store.FieldType])
	if !ok || typ == "" {
		return rec, fmt.Errorf("document %s: missing type", doc.ID)
	}
	rec.Type = core.RecordType(typ)

	if desc, ok := asString(doc.Fields[store.FieldDescription]); ok {
		rec.Description = desc
	}
	if actor, ok := asString(doc.Fields[store.FieldUserID]); ok {
		rec.ActorID = actor
	}
	rec.WriteTimestamp = asTime(doc.Fields[store.FieldTimestamp])

	return rec, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asFloat tolerates the numeric shapes a document may arrive with: float64
// from JSON decoding, integer types from in-process writers, json.Number and
// numeric strings from older clients.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}
