package slotdb

// Logger receives the database's lifecycle events: data file creation and
// open, cache evictions, failed flushes and close. Arguments are slog style
// key-value pairs, so *slog.Logger satisfies it as is. Package logger adapts
// zap and logrus.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// DiscardLogger drops every event. It is the default.
type DiscardLogger struct{}

func (DiscardLogger) Error(string, ...any) {}
func (DiscardLogger) Warn(string, ...any)  {}
func (DiscardLogger) Info(string, ...any)  {}
