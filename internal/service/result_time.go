package service

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseResultTime converts "MM:SS.mmm" or "HH:MM:SS.mmm" into milliseconds.
// Anything it cannot read counts as zero.
func ParseResultTime(s string) int64 {
	parts := strings.Split(strings.TrimSpace(s), ":")

	var hours, minutes int64
	var err error
	switch len(parts) {
	case 2:
		minutes, err = strconv.ParseInt(parts[0], 10, 64)
	case 3:
		hours, err = strconv.ParseInt(parts[0], 10, 64)
		if err == nil {
			minutes, err = strconv.ParseInt(parts[1], 10, 64)
		}
	default:
		return 0
	}
	if err != nil || hours < 0 || minutes < 0 {
		return 0
	}

	seconds, err := decimal.NewFromString(parts[len(parts)-1])
	if err != nil || seconds.IsNegative() {
		return 0
	}

	ms := seconds.Shift(3).IntPart()
	return ((hours*60)+minutes)*60_000 + ms
}
