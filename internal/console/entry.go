package console

import (
	"fmt"
	"time"
)

// Entry is a single captured log record. Entries are immutable once
// created; the buffer owns them from AddEntry until eviction.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Category  string
	Message   string
	Failure   error
}

// Format renders the entry as console text:
//
//	[HH:MM:SS] [LEV] Category: Message
//
// with the failure detail, when present, on a following line.
func (e Entry) Format() string {
	line := fmt.Sprintf("[%s] [%s] %s: %s",
		e.Timestamp.Format("15:04:05"), e.Level.Abbrev(), e.Category, e.Message)

	if e.Failure != nil {
		line += "\n" + e.Failure.Error()
	}

	return line
}
