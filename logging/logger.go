// Package logging prints compiler diagnostics to the console.
//
// Messages are filtered by a Level chosen at startup. A nil *Logger and the
// logger returned by Nop discard everything, so library code can log
// unconditionally.
package logging

import (
	"fmt"
	"strings"
)

// Level selects which messages are displayed.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarn
	LevelVerbose
)

// LevelNames lists the accepted level names, lowest first.
var LevelNames = []string{"silent", "error", "warn", "verbose"}

// ParseLevel converts a level name. Unknown names select verbose output.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "silent":
		return LevelSilent
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	// everything else (including invalid levels) should default to verbose
	default:
		return LevelVerbose
	}
}

func (l Level) String() string {
	if l >= 0 && int(l) < len(LevelNames) {
		return LevelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Logger displays messages at or below its level.
type Logger struct {
	level Level

	// ErrorCount counts every error reported, displayed or not.
	ErrorCount int
}

// New creates a logger displaying messages up to level.
func New(level Level) *Logger {
	return &Logger{level: level}
}

// Nop returns a logger that displays nothing.
func Nop() *Logger {
	return &Logger{level: LevelSilent}
}

// Level returns the logger's level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelSilent
	}
	return l.level
}

// Enabled reports whether messages of the given level are displayed.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level != LevelSilent && l.level >= level
}

// Error reports an error under a tag such as "Wrapper".
func (l *Logger) Error(tag string, err error) {
	if l == nil {
		return
	}
	l.ErrorCount++
	if l.Enabled(LevelError) {
		PrintErrorMessage(tag, err)
	}
}

// Warn reports a warning.
func (l *Logger) Warn(tag, msg string) {
	if l.Enabled(LevelWarn) {
		PrintWarningMessage(tag, msg)
	}
}

// Info reports progress. Only shown at verbose level.
func (l *Logger) Info(tag, msg string) {
	if l.Enabled(LevelVerbose) {
		PrintInfoMessage(tag, msg)
	}
}

// Debugf prints an untagged detail line at verbose level.
func (l *Logger) Debugf(format string, args ...any) {
	if l.Enabled(LevelVerbose) {
		printDetail(fmt.Sprintf(format, args...))
	}
}
