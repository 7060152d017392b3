// File: log/log.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Leveled logging for hioload-segpool. Applications can plug in their own
// Logger via SetLogger; otherwise a default logger writes to os.Stderr at
// info level.

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

func init() {
	setts := map[string]interface{}{
		"log.level": "info",
		"log.file":  "",
	}
	if _, err := SetLogger(nil, setts); err != nil {
		panic(err)
	}
}

// Logger interface for segpool logging.
type Logger interface {
	SetLogLevel(string)
	Fatalf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Verbosef(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Tracef(format string, v ...interface{})
	Printlf(loglevel LogLevel, format string, v ...interface{})
}

// LogLevel defines log level.
type LogLevel int

const (
	logLevelIgnore LogLevel = iota + 1
	logLevelFatal
	logLevelError
	logLevelWarn
	logLevelInfo
	logLevelVerbose
	logLevelDebug
	logLevelTrace
)

var (
	mu  sync.RWMutex
	log Logger
)

// SetLogger installs logger, or when logger is nil builds the default
// logger from setts ("log.level", "log.file").
func SetLogger(logger Logger, setts map[string]interface{}) (Logger, error) {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		log = logger
		return log, nil
	}

	levelname, _ := setts["log.level"].(string)
	level, err := string2logLevel(levelname)
	if err != nil {
		return nil, err
	}
	var output io.Writer = os.Stderr
	if logfile, _ := setts["log.file"].(string); logfile != "" {
		fd, err := os.OpenFile(logfile, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0660)
		if err != nil {
			return nil, errors.Wrapf(err, "log: opening %q", logfile)
		}
		output = fd
	}
	log = &defaultLogger{level: level, output: output}
	return log, nil
}

// NewLogger returns a default logger writing to w at level.
func NewLogger(w io.Writer, level string) (Logger, error) {
	l, err := string2logLevel(level)
	if err != nil {
		return nil, err
	}
	return &defaultLogger{level: l, output: w}, nil
}

func current() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// defaultLogger with default log-file as os.Stderr and default log-level
// as logLevelInfo.
type defaultLogger struct {
	mu     sync.Mutex
	level  LogLevel
	output io.Writer
}

func (l *defaultLogger) SetLogLevel(level string) {
	if lvl, err := string2logLevel(level); err == nil {
		l.mu.Lock()
		l.level = lvl
		l.mu.Unlock()
	}
}

func (l *defaultLogger) Fatalf(format string, v ...interface{}) {
	l.Printlf(logLevelFatal, format, v...)
}

func (l *defaultLogger) Errorf(format string, v ...interface{}) {
	l.Printlf(logLevelError, format, v...)
}

func (l *defaultLogger) Warnf(format string, v ...interface{}) {
	l.Printlf(logLevelWarn, format, v...)
}

func (l *defaultLogger) Infof(format string, v ...interface{}) {
	l.Printlf(logLevelInfo, format, v...)
}

func (l *defaultLogger) Verbosef(format string, v ...interface{}) {
	l.Printlf(logLevelVerbose, format, v...)
}

func (l *defaultLogger) Debugf(format string, v ...interface{}) {
	l.Printlf(logLevelDebug, format, v...)
}

func (l *defaultLogger) Tracef(format string, v ...interface{}) {
	l.Printlf(logLevelTrace, format, v...)
}

func (l *defaultLogger) Printlf(level LogLevel, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.canlog(level) {
		return
	}
	ts := time.Now().Format("2006-01-02T15:04:05.999Z-07:00")
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(l.output, ts+" ["+level.String()+"] "+format, v...)
}

func (l *defaultLogger) canlog(level LogLevel) bool {
	return level <= l.level
}

func (l LogLevel) String() string {
	switch l {
	case logLevelIgnore:
		return "Ignor"
	case logLevelFatal:
		return "Fatal"
	case logLevelError:
		return "Error"
	case logLevelWarn:
		return "Warng"
	case logLevelInfo:
		return "Infom"
	case logLevelVerbose:
		return "Verbs"
	case logLevelDebug:
		return "Debug"
	case logLevelTrace:
		return "Trace"
	}
	return "Unknw"
}

func string2logLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return logLevelIgnore, nil
	case "fatal":
		return logLevelFatal, nil
	case "error":
		return logLevelError, nil
	case "warn":
		return logLevelWarn, nil
	case "info":
		return logLevelInfo, nil
	case "verbose":
		return logLevelVerbose, nil
	case "debug":
		return logLevelDebug, nil
	case "trace":
		return logLevelTrace, nil
	}
	return 0, errors.Newf("log: unexpected log level %q", s)
}

func Fatalf(format string, v ...interface{}) {
	current().Printlf(logLevelFatal, format, v...)
}

func Errorf(format string, v ...interface{}) {
	current().Printlf(logLevelError, format, v...)
}

func Warnf(format string, v ...interface{}) {
	current().Printlf(logLevelWarn, format, v...)
}

func Infof(format string, v ...interface{}) {
	current().Printlf(logLevelInfo, format, v...)
}

func Verbosef(format string, v ...interface{}) {
	current().Printlf(logLevelVerbose, format, v...)
}

func Debugf(format string, v ...interface{}) {
	current().Printlf(logLevelDebug, format, v...)
}

func Tracef(format string, v ...interface{}) {
	current().Printlf(logLevelTrace, format, v...)
}
