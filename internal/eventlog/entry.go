package eventlog

import (
	"encoding/json"
	"time"
)

const (
	// DateLayout is the layout of the date fields of an Entry.
	DateLayout = "2006-01-02"
	// TimeLayout is the layout of the time fields of an Entry.
	TimeLayout = "15:04:05"
)

// Stamp holds one value rendered in both local time and UTC.
type Stamp struct {
	Local string `json:"local"`
	UTC   string `json:"utc"`
}

// Entry is one line of a session log.
type Entry struct {
	Date      Stamp           `json:"date"`
	Time      Stamp           `json:"time"`
	SessionID string          `json:"sessionId"`
	Message   json.RawMessage `json:"message"`
}

// TextMessage is the payload written by Writer.WriteText.
type TextMessage struct {
	Message string `json:"message"`
}

// serializationFailure replaces a payload that could not be encoded.
type serializationFailure struct {
	Message      string `json:"message"`
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

func newEntry(now time.Time, sessionID string, message json.RawMessage) Entry {
	utc := now.UTC()
	local := now.Local()
	return Entry{
		Date:      Stamp{Local: local.Format(DateLayout), UTC: utc.Format(DateLayout)},
		Time:      Stamp{Local: local.Format(TimeLayout), UTC: utc.Format(TimeLayout)},
		SessionID: sessionID,
		Message:   message,
	}
}

// Text returns the "message" field of the payload, if it has one.
func (e Entry) Text() (string, bool) {
	var m struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(e.Message, &m); err != nil || m.Message == nil {
		return "", false
	}
	return *m.Message, true
}
