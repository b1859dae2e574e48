package util

import (
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerMu     sync.RWMutex
)

// InitLogger installs the process-wide logger. Later calls replace it and
// close the previous one.
func InitLogger(logLevel, logFile string, debugToConsole bool) error {
	logger, err := NewLogger(logLevel, logFile, debugToConsole, FormatText)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger swaps the global logger. Passing nil silences logging.
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	loggerMu.Unlock()

	if previous != nil && previous != logger {
		_ = previous.Close()
	}
}

// GetLogger returns the global logger or nil when logging is not initialised.
func GetLogger() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// LogInfo convenience functions for logging
func LogInfo(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Info(msg, fields...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Debug(msg, fields...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Error(msg, fields...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Errorf(format, args...)
	}
}
