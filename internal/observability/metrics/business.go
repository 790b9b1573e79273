package metrics

import (
	"time"
)

// RecordSummaryRequest records a completed summarization request.
// Tier should be "guest" or "account"; status "success" or "failure".
func RecordSummaryRequest(strategy, tier string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SummaryRequestsTotal.WithLabelValues(strategy, tier, status).Inc()
}

// RecordSummaryRequestDuration records the end-to-end pipeline duration of
// one request, validation through tone transformation.
func RecordSummaryRequestDuration(duration time.Duration) {
	SummaryRequestDuration.Observe(duration.Seconds())
}

// RecordQuotaRejection records a request rejected by the usage ledger,
// either a guest over the daily limit or an account out of credits.
func RecordQuotaRejection(tier string) {
	QuotaRejectionsTotal.WithLabelValues(tier).Inc()
}

// RecordCreditCharged records one credit charged against an account.
func RecordCreditCharged() {
	CreditsChargedTotal.Inc()
}

// RecordExtraction records a document extraction attempt.
// On success the extracted text size is also observed.
//
// Example:
//
//	start := time.Now()
//	result, err := ext.Extract(ctx, data, format)
//	metrics.RecordExtraction(string(format), time.Since(start), err == nil, len(result.Text))
func RecordExtraction(format string, duration time.Duration, success bool, textSize int) {
	status := "success"
	if !success {
		status = "failure"
	}
	ExtractionsTotal.WithLabelValues(format, status).Inc()
	ExtractionDuration.Observe(duration.Seconds())
	if success {
		ExtractedTextSize.Observe(float64(textSize))
	}
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "get_account", "charge_credits").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
