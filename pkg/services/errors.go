package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload はdata-URIのカンマ区切りがない、またはbase64が不正な場合のエラーです。
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrParse はデコード後のバイト列が表形式データとして解析できない場合のエラーです。
	ErrParse = errors.New("parse error")
	// ErrInvalidRequest は未知のグラフ種類や存在しない列を指定した場合のエラーです。
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoDataset is returned by operations that cannot produce empty output, such as rendering by index.
	ErrNoDataset = errors.New("no dataset uploaded")
)

// PayloadError describes why an upload payload was rejected.
type PayloadError struct {
	Reason string
	Err    error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed payload: %s", e.Reason)
}

func (e *PayloadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedPayload, e.Err}
	}
	return []error{ErrMalformedPayload}
}

// ParseError represents errors parsing tabular content
type ParseError struct {
	Source string // "csv", "xlsx", "utf-8"
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error [%s] line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error [%s]: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// RequestError names the chart request field that could not be satisfied.
type RequestError struct {
	Field string
	Value string
	Err   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrInvalidRequest, e.Err}
}

// IsTooLarge reports whether err rejected a payload for exceeding the upload limit.
func IsTooLarge(err error) bool {
	var pe *PayloadError
	return errors.As(err, &pe) && errors.Is(pe.Err, errTooLarge)
}

var errTooLarge = errors.New("upload exceeds size limit")
