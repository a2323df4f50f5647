package types

import "time"

// dunningRetryDays is the fixed backoff schedule, indexed by attempt
// number (1-based): +2, +5, +9 days. It does not vary by decline reason.
var dunningRetryDays = []int{2, 5, 9}

// dunningFallbackDays covers an attempt number beyond the schedule,
// which the attempt<MaxInvoiceAttempts filter should make unreachable.
const dunningFallbackDays = 12

// NextRetryAt returns when a failed invoice becomes eligible for its
// next charge attempt, counted from the moment the failure is recorded.
func NextRetryAt(attempt int, from time.Time) time.Time {
	days := dunningFallbackDays
	if attempt >= 1 && attempt <= len(dunningRetryDays) {
		days = dunningRetryDays[attempt-1]
	}
	return from.AddDate(0, 0, days)
}
