package core

// Logger is any leveled logging service.
// Implementations may interpret extra args as structured context; an arg of a
// known user type may be used to attribute the log entry to that user.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
