// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

// Counter thresholds, in remaining runes.
const (
	NearLimitThreshold = 100
	CriticalThreshold  = 50
)

// Feedback is the read-only counter state derived from the draft length.
type Feedback struct {
	Remaining int
	// NearLimit means the counter should be shown.
	NearLimit bool
	// Critical means the counter should escalate its colour.
	Critical bool
}

// Severity buckets feedback for styling.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWarning
	SeverityCritical
)

func feedbackFor(limit, length int) Feedback {
	remaining := limit - length
	return Feedback{
		Remaining: remaining,
		NearLimit: remaining < NearLimitThreshold,
		Critical:  remaining < CriticalThreshold,
	}
}

// Severity returns the styling bucket for f.
func (f Feedback) Severity() Severity {
	switch {
	case f.Critical:
		return SeverityCritical
	case f.NearLimit:
		return SeverityWarning
	default:
		return SeverityNone
	}
}
