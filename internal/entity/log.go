package entity

import (
	"strconv"
	"time"
)

type LogEntry struct {
	Seq     int       `json:"seq"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Key - unique per entry even when two messages read the same.
func (that LogEntry) Key() string {
	return strconv.Itoa(that.Seq) + ":" + that.Message
}
