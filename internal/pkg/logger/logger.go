package logger

// Logger is the logging surface shared by the key translation services.
// Both the console and the rotating file sink implement it.
type Logger interface {
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Panic(args ...interface{})
}
