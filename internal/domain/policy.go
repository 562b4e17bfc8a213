package domain

import (
	"strings"
	"time"
)

// ValidationPolicy is a configuration snapshot. Snapshots are replaced
// wholesale on refresh, never mutated in place.
type ValidationPolicy struct {
	QRCodeEnabled           bool
	ScannerEnabled          bool
	MultipleScansAllowed    bool
	ScanTimeWindowDays      int
	ValidationStartDays     int
	AllowValidationAnytime  bool
	RequireValidatorRole    bool
	AntiReplayEnabled       bool
	MaxValidationsPerTicket int
	ValidationTimeoutSecs   int
	GeoLocationRequired     bool
	AllowedLocations        []string
	LogValidations          bool
}

// DefaultPolicy is the conservative fallback served before the first
// successful settings load: single scan, anti-replay on, 30s timeout.
func DefaultPolicy() ValidationPolicy {
	return ValidationPolicy{
		QRCodeEnabled:           true,
		ScannerEnabled:          true,
		MultipleScansAllowed:    false,
		AllowValidationAnytime:  true,
		AntiReplayEnabled:       true,
		MaxValidationsPerTicket: 1,
		ValidationTimeoutSecs:   30,
		LogValidations:          true,
	}
}

// ValidationTimeout returns the per-request budget, defaulting to 30s
// when the snapshot carries no value.
func (p ValidationPolicy) ValidationTimeout() time.Duration {
	if p.ValidationTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.ValidationTimeoutSecs) * time.Second
}

// LocationAllowed reports whether loc matches the allow-list. Matching is
// exact on the trimmed, case-folded venue name; the settings store venue
// names, not coordinates.
func (p ValidationPolicy) LocationAllowed(loc string) bool {
	if loc == "" {
		return false
	}
	loc = strings.TrimSpace(loc)
	for _, allowed := range p.AllowedLocations {
		if strings.EqualFold(strings.TrimSpace(allowed), loc) {
			return true
		}
	}
	return false
}

// Validate rejects documents that would make every scan fail in
// confusing ways rather than by explicit policy.
func (p ValidationPolicy) Validate() error {
	if p.MaxValidationsPerTicket < 1 {
		return ErrInvalidPolicy
	}
	if p.ScanTimeWindowDays < 0 || p.ValidationStartDays < 0 {
		return ErrInvalidPolicy
	}
	if p.ValidationTimeoutSecs < 0 {
		return ErrInvalidPolicy
	}
	return nil
}
