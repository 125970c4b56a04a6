package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

// LevelOf maps a config string to a log level. Unknown values fall back to
// INFO.
func LevelOf(s string) int {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	case "silence":
		return SILENCE
	}

	return INFO
}

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
	inner *log.Logger
}

func NewLogger(level int) *defaultLogger {
	return &defaultLogger{
		level: level,
		inner: log.New(os.Stdout, "", log.LstdFlags|log.Lshortfile),
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	l.output(DEBUG, "DEBUG", msg, a...)
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	l.output(INFO, "INFO", msg, a...)
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	l.output(WARNING, "WARN", msg, a...)
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	l.output(ERROR, "ERROR", msg, a...)
}

func (l *defaultLogger) output(level int, prefix, msg string, a ...any) {
	if l.level > level {
		return
	}

	// Depth 3 points Lshortfile at the caller of Debugf/Infof/etc.
	l.inner.Output(3, prefix+" "+fmt.Sprintf(msg, a...))
}
