package core

// Logger abstracts the app-wide logging service.
// expected args fmt: error, map[string]interface{}, admin.Admin
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
