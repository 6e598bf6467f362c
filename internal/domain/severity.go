package domain

import "strings"

// MapFrequencyToSeverity derives a severity tier from the comparator's free-form
// frequency field. Anything unrecognized, including empty, is low.
func MapFrequencyToSeverity(frequency string) Severity {
	freq := strings.ToLower(frequency)
	if strings.Contains(freq, "multiple") || freq == "high" {
		return SeverityHigh
	}
	if freq == "2" || freq == "3" {
		return SeverityMedium
	}
	return SeverityLow
}

// NormalizeGap converts the comparator's wire shape into a PerformanceGap.
func NormalizeGap(raw RawPerformanceGap) PerformanceGap {
	issue := raw.Gap
	if issue == "" {
		issue = "Unknown issue"
	}
	suggestion := raw.SuggestedFix
	if suggestion == "" {
		suggestion = "No suggestion available"
	}
	return PerformanceGap{
		Issue:      issue,
		Severity:   MapFrequencyToSeverity(raw.Frequency),
		Suggestion: suggestion,
	}
}
