package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldUsername  = "username"
	FieldKind      = "kind"
	FieldRecords   = "records"
	FieldPath      = "path"
	FieldCategory  = "category"
	FieldAmount    = "amount_base"
	FieldBackend   = "backend"
	FieldDuration  = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentAccounts = "accounts"
	ComponentStorage  = "storage"
	ComponentLedger   = "ledger"
	ComponentBudget   = "budget"
	ComponentAMQP     = "amqp"
	ComponentBackend  = "backend"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpRegister     = "register"
	OpAuthenticate = "authenticate"
	OpLoad         = "load"
	OpSave         = "save"
	OpCreate       = "create"
	OpUpdate       = "update"
	OpDelete       = "delete"
	OpPublish      = "publish"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUser adds the ledger owner
func (f LogFields) WithUser(username string) LogFields {
	f[FieldUsername] = username
	return f
}

// WithRecords adds the part of the ledger touched and how many records it holds
func (f LogFields) WithRecords(kind string, n int) LogFields {
	f[FieldKind] = kind
	f[FieldRecords] = n
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
