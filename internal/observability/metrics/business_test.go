package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordSummaryRequest(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		tier     string
		success  bool
	}{
		{name: "guest abstractive success", strategy: "abstractive", tier: "guest", success: true},
		{name: "account extractive success", strategy: "extractive", tier: "account", success: true},
		{name: "guest failure", strategy: "abstractive", tier: "guest", success: false},
		{name: "empty labels", strategy: "", tier: "", success: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordSummaryRequest(tt.strategy, tt.tier, tt.success)
			})
		})
	}
}

func TestRecordSummaryRequestDuration(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordSummaryRequestDuration(120 * time.Millisecond)
		RecordSummaryRequestDuration(0)
	})
}

func TestRecordQuotaRejection(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordQuotaRejection("guest")
		RecordQuotaRejection("account")
	})
}

func TestRecordCreditCharged(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordCreditCharged()
	})
}

func TestRecordExtraction(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		success  bool
		textSize int
	}{
		{name: "pdf success", format: "pdf", success: true, textSize: 4096},
		{name: "docx failure", format: "docx", success: false, textSize: 0},
		{name: "empty text", format: "txt", success: true, textSize: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordExtraction(tt.format, 50*time.Millisecond, tt.success, tt.textSize)
			})
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordDBQuery("charge_credits", 3*time.Millisecond)
	})
}

func TestUpdateDBConnectionStats(t *testing.T) {
	assert.NotPanics(t, func() {
		UpdateDBConnectionStats(5, 10)
		UpdateDBConnectionStats(0, 0)
	})
}

func TestRecordHTTPRequest(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordHTTPRequest("POST", "/summarize", "200", 80*time.Millisecond, 2048, 512)
		RecordHTTPRequest("GET", "/healthz", "200", time.Millisecond, 0, 0)
	})
}
