// Package log defines ModuleFast's logging interface. By default it logs to
// stderr via the standard library logger, but it can be replaced with a
// user-supplied implementation so the CLI and library callers can route
// output wherever they like.
package log

import "log"

// Logger is ModuleFast's logging interface.
type Logger interface {
	Errorf(format string, args ...any)
	Error(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Debugf(format string, args ...any)
	Debug(args ...any)
}

var logger Logger = &DefaultLogger{}

// SetLogger overwrites the default ModuleFast logger with a user-specified one.
func SetLogger(l Logger) { logger = l }

// Errorf is the static formatted error logging function.
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

// Warnf is the static formatted warning logging function.
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

// Infof is the static formatted info logging function.
func Infof(format string, args ...any) { logger.Infof(format, args...) }

// Debugf is the static formatted debug logging function.
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

// Error is the static error logging function.
func Error(args ...any) { logger.Error(args...) }

// Warn is the static warning logging function.
func Warn(args ...any) { logger.Warn(args...) }

// Info is the static info logging function.
func Info(args ...any) { logger.Info(args...) }

// Debug is the static debug logging function.
func Debug(args ...any) { logger.Debug(args...) }

// DefaultLogger is the Logger implementation used by default. It logs to
// stderr using the standard library logger.
type DefaultLogger struct {
	Verbose bool // Whether debug logs should be shown.
}

func (DefaultLogger) Errorf(format string, args ...any) { log.Printf(format, args...) }
func (DefaultLogger) Warnf(format string, args ...any)  { log.Printf(format, args...) }
func (DefaultLogger) Infof(format string, args ...any)  { log.Printf(format, args...) }
func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.Verbose {
		log.Printf(format, args...)
	}
}

func (DefaultLogger) Error(args ...any) { log.Println(args...) }
func (DefaultLogger) Warn(args ...any)  { log.Println(args...) }
func (DefaultLogger) Info(args ...any)  { log.Println(args...) }
func (l *DefaultLogger) Debug(args ...any) {
	if l.Verbose {
		log.Println(args...)
	}
}
