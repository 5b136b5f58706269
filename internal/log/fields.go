package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldRecordID     = "record_id"
	FieldCollection   = "collection"
	FieldActorID      = "actor_id"
	FieldDate         = "date"
	FieldAmount       = "amount"
	FieldType         = "type"
	FieldDimension    = "dimension"
	FieldSubDimension = "sub_dimension"
	FieldRecordCount  = "record_count"
	FieldDropped      = "dropped"
	FieldFilename     = "filename"
	FieldBackend      = "backend"
	FieldQueue        = "queue"
	FieldExchange     = "exchange"
	FieldSheetsRange  = "sheets_range"
	FieldDuration     = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentRecords = "records"
	ComponentStore   = "store"
	ComponentAMQP    = "amqp"
	ComponentExport  = "export"
	ComponentMirror  = "mirror"
	ComponentAuth    = "auth"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpInsert    = "insert"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpSnapshot  = "snapshot"
	OpSubscribe = "subscribe"
	OpExport    = "export"
	OpMirror    = "mirror"
	OpValidate  = "validate"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
