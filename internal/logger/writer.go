package logger

// Writer is the interface implemented by entities that can write logs.
type Writer interface {
	Log(Level, string, ...interface{})
}
