package marking

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the pipeline can produce.
type Kind string

const (
	KindConfiguration Kind = "configuration_error"
	KindValidation    Kind = "validation_error"
	KindTransport     Kind = "transport_error"
	KindService       Kind = "service_error"
	KindNoOutput      Kind = "no_output_error"
	KindSchema        Kind = "schema_error"
)

// Schema failure reasons.
const (
	ReasonUnparseable       = "unparseable"
	ReasonContractViolation = "contract-violation"
)

// Error is the single failure value passed between pipeline stages.
type Error struct {
	Kind    Kind
	Message string
	// Reason is set for KindSchema.
	Reason string
	// Fields names the offending input or output keys.
	Fields []string
	// Status is the upstream status for KindService.
	Status int
	// Raw is the extracted model text for KindSchema.
	Raw string
	// Envelope is the upstream body for KindService and KindNoOutput.
	Envelope []byte
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Reason != "" {
		b.WriteString("(" + e.Reason + ")")
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or "" when err is not a marking failure.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}

func configurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func validationError(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "generation service request failed (network/runtime)", Err: err}
}

func serviceError(status int, body []byte) *Error {
	return &Error{
		Kind:     KindService,
		Message:  fmt.Sprintf("generation service returned status %d", status),
		Status:   status,
		Envelope: body,
	}
}

func noOutputError(envelope []byte) *Error {
	return &Error{Kind: KindNoOutput, Message: "no text returned from model", Envelope: envelope}
}

func unparseableError(raw string, err error) *Error {
	return &Error{Kind: KindSchema, Reason: ReasonUnparseable, Message: "model output is not a JSON object", Raw: raw, Err: err}
}

func contractViolation(raw string, problems []string, fields []string) *Error {
	return &Error{
		Kind:    KindSchema,
		Reason:  ReasonContractViolation,
		Message: strings.Join(problems, "; "),
		Fields:  fields,
		Raw:     raw,
	}
}
