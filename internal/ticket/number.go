package ticket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ticket numbers are part of the persisted contract:
// <prefix><YYYYMMDD><zero-padded sequence>, e.g. TKN20251011007.
// The sequence resets every calendar day and starts at 1.

const numberDateLayout = "20060102"

var ErrBadNumber = errors.New("malformed ticket number")

// FormatNumber renders the canonical number for a day and sequence.
// Sequences are padded to three digits; a sequence past 999 simply widens.
func FormatNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%03d", prefix, day.Format(numberDateLayout), seq)
}

// ParseNumber recovers the issuance day and sequence from a ticket number.
// It is the exact inverse of FormatNumber for the same prefix.
func ParseNumber(prefix, number string) (day time.Time, seq int, err error) {
	if !strings.HasPrefix(number, prefix) {
		return time.Time{}, 0, fmt.Errorf("%w: missing prefix %q", ErrBadNumber, prefix)
	}
	rest := number[len(prefix):]
	if len(rest) < len(numberDateLayout)+3 {
		return time.Time{}, 0, fmt.Errorf("%w: %q too short", ErrBadNumber, number)
	}

	day, err = time.ParseInLocation(numberDateLayout, rest[:len(numberDateLayout)], time.UTC)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: bad date in %q", ErrBadNumber, number)
	}

	seq, err = strconv.Atoi(rest[len(numberDateLayout):])
	if err != nil || seq < 1 {
		return time.Time{}, 0, fmt.Errorf("%w: bad sequence in %q", ErrBadNumber, number)
	}
	return day, seq, nil
}

// DayKey normalizes a timestamp to its calendar day in UTC. Sequence
// allocation and number formatting always work on day keys so two tickets
// issued the same day agree on their date component.
func DayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
