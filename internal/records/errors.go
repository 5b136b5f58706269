package records

import "fmt"

// PersistenceError reports a failed store call. User input is preserved by
// the caller so the write can be retried; nothing is rolled back because
// nothing was applied locally.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// One-line user-facing statuses, in the household's language.
const (
	StatusCreated       = "Registro añadido exitosamente."
	StatusUpdated       = "Registro actualizado exitosamente."
	StatusDeleted       = "Registro eliminado exitosamente."
	StatusMissingFields = "Por favor, rellena todos los campos obligatorios (Monto, Dimensión, Subdimensión)."
	StatusSaveFailed    = "Error al guardar el registro. Por favor, inténtalo de nuevo."
	StatusDeleteFailed  = "Error al eliminar el registro. Por favor, inténtalo de nuevo."
)
