package supervisor

import "time"

// TimestampLayout is the hh:mm:ss prefix carried by protocol lines.
const TimestampLayout = "15:04:05"

// Stream identifies a redirected output stream.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// IsProtocolLine reports whether line starts with a zero-padded 24-hour
// hh:mm:ss timestamp, which marks output written by the worker itself.
func IsProtocolLine(line string) bool {
	if len(line) < len(TimestampLayout) || line[2] != ':' || line[5] != ':' {
		return false
	}
	h, ok := twoDigits(line[0:2])
	if !ok || h > 23 {
		return false
	}
	m, ok := twoDigits(line[3:5])
	if !ok || m > 59 {
		return false
	}
	s, ok := twoDigits(line[6:8])
	return ok && s <= 59
}

// DisplayLine returns line as it should be shown to the user. Protocol lines
// pass through; foreign output is stamped with now and labelled by stream so
// it is clearly not from the worker.
func DisplayLine(stream Stream, line string, now time.Time) string {
	if IsProtocolLine(line) {
		return line
	}
	marker := "[ HOST MESSAGE ]"
	if stream == Stderr {
		marker = "[ HOST ERROR ]"
	}
	return now.Format(TimestampLayout) + " : " + marker + " : " + line
}
