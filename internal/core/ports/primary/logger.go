package primary

// Logger is the structured logging contract consumed across the service.
// Args are alternating key/value pairs, sugared-logger style.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}
