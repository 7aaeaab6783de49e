package logging

// NoopLogger discards all log output. Used in tests and as a safe default
// when no logger is injected.
type NoopLogger struct{}

// NewNoop returns a logger that discards everything
func NewNoop() Logger {
	return &NoopLogger{}
}

func (n *NoopLogger) Debug(msg string, fields ...interface{}) {}
func (n *NoopLogger) Info(msg string, fields ...interface{})  {}
func (n *NoopLogger) Warn(msg string, fields ...interface{})  {}
func (n *NoopLogger) Error(msg string, fields ...interface{}) {}

func (n *NoopLogger) WithTraceID(traceID string) Logger     { return n }
func (n *NoopLogger) WithComponent(component string) Logger { return n }
