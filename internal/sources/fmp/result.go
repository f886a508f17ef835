package fmp

import (
	"fmt"
)

// Status classifies a statement fetch.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Failure reasons reported in Result.Reason and QuoteResult.Error.
const (
	ReasonMissingAPIKey = "missing_api_key"
	ReasonNoSymbols     = "no_symbols"
)

// StatusReason formats the reason recorded for a non-2xx upstream response.
func StatusReason(code int) string {
	return fmt.Sprintf("fmp_error_%d", code)
}

// Result is the outcome of one statement fetch. Rows is only populated
// when Status is StatusOK.
type Result[T any] struct {
	Status Status
	Rows   []T
	Reason string
}

func ok[T any](rows []T) Result[T] {
	if len(rows) == 0 {
		return Result[T]{Status: StatusEmpty}
	}
	return Result[T]{Status: StatusOK, Rows: rows}
}

func failed[T any](reason string) Result[T] {
	return Result[T]{Status: StatusFailed, Reason: reason}
}

// Failed reports whether the upstream refused the request.
func (r Result[T]) Failed() bool {
	return r.Status == StatusFailed
}

// Outcome drops the rows, keeping what the audit trail needs.
func (r Result[T]) Outcome() Outcome {
	return Outcome{Status: r.Status, Rows: len(r.Rows), Reason: r.Reason}
}

// Outcome summarizes a Result for logs and API responses.
type Outcome struct {
	Status Status `json:"status"`
	Rows   int    `json:"rows"`
	Reason string `json:"reason,omitempty"`
}
