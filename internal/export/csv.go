// Package export serializes the ledger view into the CSV document the
// household downloads, and delivers it through a blob deliverer.
package export

import (
	"errors"
	"strconv"
	"strings"

	"registro/internal/core"
)

// DefaultFilename is the name the exported file is delivered under.
const DefaultFilename = "registros_financieros_familiares.csv"

// MIMEType is the content type of the exported document.
const MIMEType = "text/csv;charset=utf-8"

// ErrNoData is returned when an export is attempted on an empty ledger.
// Callers surface it as a notice, never as a silent empty file.
var ErrNoData = errors.New("no records to export")

// header is fixed: localized labels, fixed column order.
var header = []string{"Fecha", "Tipo", "Monto", "Dimensión", "Subdimensión", "Descripción", "Usuario ID"}

// CSV renders the ledger in its current order; it does not re-sort. The
// description is always double-quoted with internal quotes doubled, even
// when empty. Amounts pass through at their existing precision.
func CSV(ledger []core.FinancialRecord) ([]byte, error) {
	if len(ledger) == 0 {
		return nil, ErrNoData
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')

	for _, rec := range ledger {
		row := []string{
			rec.Date,
			string(rec.Type),
			strconv.FormatFloat(rec.Amount, 'f', -1, 64),
			rec.Dimension,
			rec.SubDimension,
			quote(rec.Description),
			rec.ActorID,
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}

	return []byte(b.String()), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
