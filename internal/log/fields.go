package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldReferer       = "referer"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldDate          = "date"
	FieldItemID        = "item_id"
	FieldStep          = "step"
	FieldSheetsRef     = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentDraft    = "draft"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
	ComponentSecurity = "security"
	ComponentTrace    = "trace"
	ComponentBackend  = "backend"
	ComponentTemplate = "template"
)

// Operations defines standard operation names
const (
	OpOpen     = "open"
	OpSale     = "sale"
	OpLoss     = "loss"
	OpFavorite = "favorite"
	OpSubmit   = "submit"
	OpExport   = "export"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the date and, when set, the item of a record mutation.
func (f LogFields) WithRecord(date, itemID string) LogFields {
	f[FieldDate] = date
	if itemID != "" {
		f[FieldItemID] = itemID
	}
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
