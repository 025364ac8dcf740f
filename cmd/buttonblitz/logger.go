package main

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

const logDate = `2006-01-02T15:04:05.000-07:00`

// cliLogger puts the server's runtime.Logger interface on the standard
// logger. Debug output needs --verbose.
type cliLogger struct {
	verbose bool
	fields  map[string]interface{}
}

func newLogger(cfg *Config) runtime.Logger {
	return &cliLogger{verbose: cfg.verbose}
}

func (l *cliLogger) logf(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
		}
		msg += b.String()
	}
	log.Printf("%s | %s: %s", time.Now().Format(logDate), level, msg)
}

func (l *cliLogger) Debug(format string, v ...interface{}) {
	if l.verbose {
		l.logf("DEBUG", format, v...)
	}
}

func (l *cliLogger) Info(format string, v ...interface{}) {
	if l.verbose {
		l.logf("INFO", format, v...)
	}
}

func (l *cliLogger) Warn(format string, v ...interface{})  { l.logf("WARN", format, v...) }
func (l *cliLogger) Error(format string, v ...interface{}) { l.logf("ERROR", format, v...) }

func (l *cliLogger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *cliLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &cliLogger{verbose: l.verbose, fields: merged}
}

func (l *cliLogger) Fields() map[string]interface{} {
	return l.fields
}
