package console

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level represents the severity of a console entry.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// String returns the full name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Abbrev returns the three-letter form used in console text output.
func (l Level) Abbrev() string {
	switch l {
	case LevelTrace:
		return "TRC"
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarning:
		return "WRN"
	case LevelError:
		return "ERR"
	case LevelCritical:
		return "CRT"
	default:
		return "UNK"
	}
}

// ParseLevel converts a level name (full or abbreviated, any case) to a
// Level. Unknown names return an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE", "TRC":
		return LevelTrace, nil
	case "DEBUG", "DBG":
		return LevelDebug, nil
	case "INFO", "INF":
		return LevelInfo, nil
	case "WARNING", "WARN", "WRN":
		return LevelWarning, nil
	case "ERROR", "ERR":
		return LevelError, nil
	case "CRITICAL", "CRIT", "CRT", "FATAL":
		return LevelCritical, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// FromSlog maps a slog level onto the console scale. Levels below debug
// map to trace, levels above error map to critical.
func FromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelDebug:
		return LevelTrace
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarning
	case l == slog.LevelError:
		return LevelError
	default:
		return LevelCritical
	}
}

// ToSlog maps the console level onto the slog scale.
func (l Level) ToSlog() slog.Level {
	switch l {
	case LevelTrace:
		return slog.LevelDebug - 4
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}
