package logger

import (
	"sync"
)

// Log levels understood by Get. The debug level is only reachable when the
// device config enables debug strings.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The first call fixes the level;
// later calls ignore it.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// With returns a child logger carrying the given key/value pairs, e.g. a
// component name. A nil receiver yields nil so optional loggers stay optional.
func (l *Logger) With(kv ...interface{}) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(kv...)}
}
