package logging

import "sync"

var (
	globalLogger *MultiLogger
	globalOnce   sync.Once
)

// Initialize sets up the global logger with the given level and format.
// Safe to call before config is loaded; later calls adjust the level only.
func Initialize(level, format string) Logger {
	logger := getGlobal()
	logger.SetLevel(ParseLogLevel(level))

	logger.mu.Lock()
	if _, ok := logger.adapters["stdout"]; !ok {
		logger.adapters["stdout"] = NewStdoutAdapter("stdout", format)
	}
	logger.mu.Unlock()

	return logger
}

// GetGlobalLogger returns the process-wide logger, creating a default
// json-to-stdout logger if Initialize has not been called yet.
func GetGlobalLogger() Logger {
	return getGlobal()
}

func getGlobal() *MultiLogger {
	globalOnce.Do(func() {
		globalLogger = NewMultiLogger()
		globalLogger.AddAdapter(NewStdoutAdapter("stdout", "json"))
	})
	return globalLogger
}
