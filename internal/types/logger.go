package types

// Logger defines the structured logging interface used throughout the
// service. It is a subset of *slog.Logger; the With method returns the
// interface type so call sites can chain contextual fields without binding
// to a concrete logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}
