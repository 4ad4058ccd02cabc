package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

type reportEnvelope struct {
	TestID         string                `json:"test_id"`
	Result         domainexec.Result     `json:"result"`
	OutputMismatch []domainexec.Mismatch `json:"output_mismatch"`
	ErrorMessage   string                `json:"error_message,omitempty"`
	Outputs        []string              `json:"outputs"`
	DurationMs     int64                 `json:"duration_ms"`
	Timestamp      time.Time             `json:"timestamp"`
}

func encodeReport(report domainexec.TestReport) ([]byte, error) {
	payload, err := json.Marshal(makeReportEnvelope(report))
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return payload, nil
}

func makeReportEnvelope(report domainexec.TestReport) reportEnvelope {
	mismatches := report.Verdict.OutputMismatch
	if mismatches == nil {
		mismatches = []domainexec.Mismatch{}
	}
	outputs := report.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	return reportEnvelope{
		TestID:         report.TestID,
		Result:         report.Verdict.Result,
		OutputMismatch: mismatches,
		ErrorMessage:   report.Verdict.ErrorMessage,
		Outputs:        outputs,
		DurationMs:     report.Duration.Milliseconds(),
		Timestamp:      report.CompletedAt.UTC(),
	}
}
