package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
)

// ParseEntry decodes one log line.
func ParseEntry(line string) (Entry, error) {
	var e Entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return Entry{}, err
	}
	if e.Date.Local == "" || e.Time.Local == "" || len(e.Message) == 0 {
		return Entry{}, errors.New("not a log entry")
	}
	return e, nil
}

// PlainText renders the entry as "<date> <time> : <message>".
func (e Entry) PlainText(useUTC bool) (string, bool) {
	text, ok := e.Text()
	if !ok {
		return "", false
	}
	date, clock := e.Date.Local, e.Time.Local
	if useUTC {
		date, clock = e.Date.UTC, e.Time.UTC
	}
	return date + " " + clock + " : " + text, true
}

// ProjectLine renders one log line for humans. Lines that are not log
// entries come back unchanged.
func ProjectLine(line string, useUTC bool) string {
	e, err := ParseEntry(line)
	if err != nil {
		return line
	}
	text, ok := e.PlainText(useUTC)
	if !ok {
		return line
	}
	return text
}

// ProjectLines projects every line of r.
func ProjectLines(r io.Reader, useUTC bool) ([]string, error) {
	var out []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			out = append(out, ProjectLine(strings.TrimRight(line, "\r\n"), useUTC))
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// ReadLinesAsPlainText reads a log file and projects every line. The
// projection is for reading only; it cannot be parsed back into entries.
func ReadLinesAsPlainText(path string, useUTC bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ProjectLines(f, useUTC)
}
