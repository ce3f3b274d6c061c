package moderation

import (
	"errors"
	"testing"
	"time"
)

func TestParseOptionsPlainReason(t *testing.T) {
	opts, err := ParseOptions("spamming invites", false, "")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if opts.Reason != "spamming invites" {
		t.Fatalf("unexpected reason %q", opts.Reason)
	}
	if opts.SkipConfirmation || opts.Silent || opts.DeleteMessageDays != 0 {
		t.Fatalf("unexpected flags: %+v", opts)
	}
}

func TestParseOptionsForce(t *testing.T) {
	opts, err := ParseOptions("ban this user | force", false, "")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if !opts.SkipConfirmation {
		t.Fatalf("expected skip confirmation")
	}
	if opts.Silent {
		t.Fatalf("silent should not be set by force")
	}
	if opts.Reason != "ban this user" {
		t.Fatalf("unexpected reason %q", opts.Reason)
	}
}

func TestParseOptionsSilentImpliesSkip(t *testing.T) {
	opts, err := ParseOptions("raiding | s", false, "")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if !opts.Silent || !opts.SkipConfirmation {
		t.Fatalf("expected silent and skip, got %+v", opts)
	}
	if opts.Reason != "raiding" {
		t.Fatalf("unexpected reason %q", opts.Reason)
	}
}

func TestParseOptionsDayRange(t *testing.T) {
	opts, err := ParseOptions("spam | 3 days", false, "")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if opts.DeleteMessageDays != 3 {
		t.Fatalf("expected 3 days, got %d", opts.DeleteMessageDays)
	}
	if opts.Reason != "spam" {
		t.Fatalf("unexpected reason %q", opts.Reason)
	}

	if _, err := ParseOptions("spam | 10 days", false, ""); !errors.Is(err, ErrDayRangeTooHigh) {
		t.Fatalf("expected day range too high, got %v", err)
	}
}

func TestParseOptionsUnrecognizedPipeKeepsRawReason(t *testing.T) {
	opts, err := ParseOptions("a | b | c", false, "")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if opts.Reason != "a | b | c" {
		t.Fatalf("speculative split should be discarded, got %q", opts.Reason)
	}
}

func TestParseOptionsQuickPunishment(t *testing.T) {
	opts, err := ParseOptions("reason", true, "")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if !opts.SkipConfirmation {
		t.Fatalf("quick punishment should skip confirmation")
	}
}

func TestParseOptionsAttachment(t *testing.T) {
	opts, err := ParseOptions("proof", false, "https://cdn.example/img.png")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if opts.Reason != "proof https://cdn.example/img.png" {
		t.Fatalf("unexpected reason %q", opts.Reason)
	}

	opts, err = ParseOptions("", false, "https://cdn.example/img.png")
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}
	if opts.Reason != "https://cdn.example/img.png" {
		t.Fatalf("unexpected reason %q", opts.Reason)
	}
}

func TestExtractDuration(t *testing.T) {
	reason, d := ExtractDuration("spamming 30m")
	if reason != "spamming" || d != 30*time.Minute {
		t.Fatalf("got %q %v", reason, d)
	}

	reason, d = ExtractDuration("raid 7d")
	if reason != "raid" || d != 7*24*time.Hour {
		t.Fatalf("got %q %v", reason, d)
	}

	reason, d = ExtractDuration("no duration here")
	if reason != "no duration here" || d != 0 {
		t.Fatalf("got %q %v", reason, d)
	}

	reason, d = ExtractDuration("")
	if reason != "" || d != 0 {
		t.Fatalf("got %q %v", reason, d)
	}
}
