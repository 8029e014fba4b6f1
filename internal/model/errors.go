package model

import (
	"errors"
	"fmt"
)

// Error kinds, as reported to API clients
const (
	KindFormat      = "format"
	KindParse       = "parse"
	KindValidation  = "validation"
	KindLookup      = "lookup"
	KindExtraction  = "extraction"
	KindAggregation = "aggregation"
	KindUnknown     = "unknown"
)

// FormatError is returned when the input is not named like an XML invoice
type FormatError struct {
	Path    string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error [%s]: %s", e.Path, e.Message)
}

// NewFormatError creates a new format error
func NewFormatError(path, message string) *FormatError {
	return &FormatError{
		Path:    path,
		Message: message,
	}
}

// ParseError represents a document that is not well-formed XML
type ParseError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error [%s]: %s (%v)", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error [%s]: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(path, message string, cause error) *ParseError {
	return &ParseError{
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError represents well-formed XML with the wrong root element
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// LookupError represents a structurally required element that is missing
type LookupError struct {
	Element   string
	Namespace string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup failed: element {%s}%s not found", e.Namespace, e.Element)
}

// NewLookupError creates a new lookup error
func NewLookupError(namespace, element string) *LookupError {
	return &LookupError{
		Element:   element,
		Namespace: namespace,
	}
}

// ExtractionError represents a required field that cannot be used
type ExtractionError struct {
	Field   string
	Line    int // 1-based line item index, 0 for document-level fields
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	field := e.Field
	if e.Line > 0 {
		field = fmt.Sprintf("Concepto[%d].%s", e.Line, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed [%s]: %s (%v)", field, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed [%s]: %s", field, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a new extraction error
func NewExtractionError(field string, line int, message string, cause error) *ExtractionError {
	return &ExtractionError{
		Field:   field,
		Line:    line,
		Message: message,
		Cause:   cause,
	}
}

// Stage identifies an aggregation step
type Stage string

const (
	StageLoad     Stage = "load"
	StageGeneral  Stage = "general"
	StageReceptor Stage = "receptor"
	StageConcepts Stage = "concepts"
)

// AggregationError wraps a stage failure while building an InvoiceSummary
type AggregationError struct {
	Stage Stage
	Path  string
	Cause error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("reading invoice %s failed at %s stage: %v", e.Path, e.Stage, e.Cause)
}

func (e *AggregationError) Unwrap() error {
	return e.Cause
}

// NewAggregationError creates a new aggregation error
func NewAggregationError(stage Stage, path string, cause error) *AggregationError {
	return &AggregationError{
		Stage: stage,
		Path:  path,
		Cause: cause,
	}
}

// Kind returns the most specific error kind found in err's chain
func Kind(err error) string {
	var (
		formatErr     *FormatError
		parseErr      *ParseError
		validationErr *ValidationError
		lookupErr     *LookupError
		extractionErr *ExtractionError
		aggErr        *AggregationError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &formatErr):
		return KindFormat
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &lookupErr):
		return KindLookup
	case errors.As(err, &extractionErr):
		return KindExtraction
	case errors.As(err, &aggErr):
		return KindAggregation
	default:
		return KindUnknown
	}
}

// StageOf returns the failing stage if err is an AggregationError
func StageOf(err error) Stage {
	var aggErr *AggregationError
	if errors.As(err, &aggErr) {
		return aggErr.Stage
	}
	return ""
}
