package market

import (
	"encoding/json"
	"fmt"
)

// Code is a stable, machine-readable failure identifier.
type Code string

const (
	CodeFXLatestFailed  Code = "fx_latest_failed"
	CodeFXHistoryFailed Code = "fx_history_failed"
	CodeFinnhubFailed   Code = "finnhub_failed"
	CodeYahooFailed     Code = "yahoo_failed"
	CodeStooqFailed     Code = "stooq_failed"
)

// Result is the success/failure envelope every adapter and façade operation returns.
// When OK is false, Payload is the zero value and ErrorCode is set.
// Cause is kept for logging and never serialized.
type Result[T any] struct {
	OK        bool
	Payload   T
	ErrorCode Code
	Cause     error
}

func Success[T any](payload T) Result[T] {
	return Result[T]{OK: true, Payload: payload}
}

func Failure[T any](code Code, cause error) Result[T] {
	return Result[T]{ErrorCode: code, Cause: cause}
}

// Err returns nil for successful results.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	if r.Cause != nil {
		return fmt.Errorf("%s: %w", r.ErrorCode, r.Cause)
	}
	return fmt.Errorf("%s", r.ErrorCode)
}

type envelope struct {
	OK        bool            `json:"ok"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ErrorCode Code            `json:"errorCode,omitempty"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return json.Marshal(envelope{OK: false, ErrorCode: r.ErrorCode})
	}
	b, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{OK: true, Payload: b})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	var out Result[T]
	out.OK = env.OK
	if env.OK {
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &out.Payload); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
		}
	} else {
		out.ErrorCode = env.ErrorCode
	}
	*r = out
	return nil
}
