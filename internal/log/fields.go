package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSuccess    = "success"
	FieldKPIID      = "kpi_id"
	FieldKPIName    = "kpi_name"
	FieldValueID    = "value_id"
	FieldPeriod     = "period"
	FieldValueCents = "value_cents"
	FieldComment    = "comment"
	FieldFilename   = "filename"
	FieldSheetsRef  = "sheets_ref"
	FieldBackend    = "backend"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentKPI      = "kpi"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentReminder = "reminder"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpRecord   = "record"
	OpAttach   = "attach"
	OpReport   = "report"
	OpSync     = "sync"
	OpValidate = "validate"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
