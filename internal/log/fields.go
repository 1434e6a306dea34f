package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldOrganization  = "organization_id"
	FieldContact       = "contact_id"
	FieldCategory      = "category_id"
	FieldTransaction   = "transaction_id"
	FieldAmount        = "amount"
	FieldDirection     = "direction"
	FieldBalance       = "balance"
	FieldGranularity   = "granularity"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentReport  = "report"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentCache   = "cache"
	ComponentTrace   = "trace"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpReverse  = "reverse"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
