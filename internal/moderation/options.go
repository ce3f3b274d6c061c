package moderation

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrDayRangeTooHigh = errors.New("delete message days above 7")
	ErrDayRangeTooLow  = errors.New("delete message days below 0")
)

// Options is the parsed per-invocation punishment configuration, derived from
// the free-text reason by splitting on "|".
type Options struct {
	Reason            string
	SkipConfirmation  bool
	Silent            bool
	DeleteMessageDays int
}

var dayUnits = []string{"days", "dias", "day", "dia"}

// ParseOptions scans the pipe-separated segments after the reason for flags.
// The split is speculative: the reason is only replaced by the first segment
// when at least one recognized flag matched, otherwise the raw text is kept
// verbatim. An out-of-range day count aborts the command.
func ParseOptions(rawReason string, quickPunishment bool, attachmentURL string) (Options, error) {
	reason := rawReason
	skipConfirmation := quickPunishment
	silent := false
	delDays := 0

	segments := strings.Split(rawReason, "|")
	if len(segments) > 1 {
		usingPipedArgs := false
		candidate := segments[0]

		for _, segment := range segments[1:] {
			arg := strings.TrimSpace(segment)
			if arg == "force" || arg == "f" {
				skipConfirmation = true
				usingPipedArgs = true
			}
			if arg == "s" || arg == "silent" {
				skipConfirmation = true
				silent = true
				usingPipedArgs = true
			}
			if hasDayUnit(arg) {
				delDays = leadingInt(arg)
				if delDays > 7 {
					return Options{}, ErrDayRangeTooHigh
				}
				if delDays < 0 {
					return Options{}, ErrDayRangeTooLow
				}
				usingPipedArgs = true
			}
		}

		if usingPipedArgs {
			reason = candidate
		}
	}

	reason = strings.TrimSpace(reason)
	if attachmentURL != "" {
		if reason != "" {
			reason += " "
		}
		reason += attachmentURL
	}

	return Options{
		Reason:            reason,
		SkipConfirmation:  skipConfirmation,
		Silent:            silent,
		DeleteMessageDays: delDays,
	}, nil
}

func hasDayUnit(arg string) bool {
	for _, unit := range dayUnits {
		if strings.HasSuffix(arg, unit) {
			return true
		}
	}
	return false
}

func leadingInt(arg string) int {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return 0
	}
	value, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return value
}

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ExtractDuration pulls a trailing duration token (like "30m", "2h" or "7d")
// out of a reason and returns the cleaned reason plus the duration. A zero
// duration means no token was found and the punishment is permanent.
func ExtractDuration(reason string) (string, time.Duration) {
	fields := strings.Fields(reason)
	if len(fields) == 0 {
		return reason, 0
	}

	last := fields[len(fields)-1]
	if len(last) < 2 {
		return reason, 0
	}
	unit, ok := durationUnits[strings.ToLower(last[len(last)-1:])]
	if !ok {
		return reason, 0
	}
	value, err := strconv.Atoi(last[:len(last)-1])
	if err != nil || value <= 0 {
		return reason, 0
	}

	return strings.Join(fields[:len(fields)-1], " "), time.Duration(value) * unit
}
