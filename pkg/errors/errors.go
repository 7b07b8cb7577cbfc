// Package errors provides the error and warning taxonomy used across this module.
// It wraps github.com/cockroachdb/errors for stack traces and error chains, and
// routes warnings (non-fatal, recoverable conditions) through a small pluggable
// handler instead of panicking or silently dropping them.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling (fallback only — prefer a scoped WarningSink)
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("rvm-warning: %v\n", w)
	}
	zerologWarnFunc func(warning error)
)

// SetWarningHandler overrides the fallback, package-global warning handler.
// Callers that need per-instance warning routing should prefer a WarningSink
// instead; this function exists for backward-compatible, process-wide default
// behavior (e.g. CLI tools with no per-model warning consumer).
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning function, avoiding a
// direct import cycle between this package and pkg/log.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn reports a warning through the zerolog hook if installed, else the
// fallback handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// WarningSink is a scoped, per-instance alternative to the package-global
// warning handler above. A model owns one WarningSink rather than mutating
// shared global state; see rvm.Model.
type WarningSink struct {
	mu      sync.Mutex
	handle  func(w error)
	emitted map[string]bool
}

// NewWarningSink creates a WarningSink that forwards to Warn by default.
func NewWarningSink() *WarningSink {
	return &WarningSink{
		handle:  Warn,
		emitted: make(map[string]bool),
	}
}

// SetHandler overrides how this sink reports warnings.
func (s *WarningSink) SetHandler(handle func(w error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = handle
}

// Emit reports a warning.
func (s *WarningSink) Emit(w error) {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()
	if handle != nil {
		handle(w)
	}
}

// EmitOnce reports a warning identified by key at most once per WarningSink
// lifetime. Used for the Figueiredo trainer's ill-conditioned-Gram warning,
// which fires once even though the regularization loop may run many times.
// The emitted keys are never cleared, so a sink shared by several Train
// calls reports each key only for the first of them.
func (s *WarningSink) EmitOnce(key string, w error) {
	s.mu.Lock()
	if s.emitted[key] {
		s.mu.Unlock()
		return
	}
	s.emitted[key] = true
	handle := s.handle
	s.mu.Unlock()
	if handle != nil {
		handle(w)
	}
}

// ===========================================================================
//
//	scikit-learn-flavored warning types
//
// ===========================================================================

// ConvergenceWarning is raised when an iterative algorithm fails to converge
// within its iteration budget.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured fields for zerolog.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// IllConditionedGramWarning is raised when the Figueiredo trainer must
// regularize G = ΦᵀΦ because its reciprocal condition number is too small.
type IllConditionedGramWarning struct {
	Rcond        float64
	Regularizer  float64
	NAttempts    int
}

func (w *IllConditionedGramWarning) Error() string {
	return fmt.Sprintf("ill-conditioned Gram matrix (rcond=%.3g); applied diagonal regularization %.3g after %d attempts",
		w.Rcond, w.Regularizer, w.NAttempts)
}

// MarshalZerologObject adds structured fields for zerolog.
func (w *IllConditionedGramWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("rcond", w.Rcond).
		Float64("regularizer", w.Regularizer).
		Int("attempts", w.NAttempts).
		Str("type", "IllConditionedGramWarning")
}

// NewIllConditionedGramWarning creates an IllConditionedGramWarning.
func NewIllConditionedGramWarning(rcond, regularizer float64, attempts int) *IllConditionedGramWarning {
	return &IllConditionedGramWarning{Rcond: rcond, Regularizer: regularizer, NAttempts: attempts}
}

// NoRelevantFeaturesWarning is raised when training ends with an empty
// active set: no basis function survived pruning/selection.
type NoRelevantFeaturesWarning struct {
	Algorithm string
}

func (w *NoRelevantFeaturesWarning) Error() string {
	return fmt.Sprintf("%s: no relevant features survived training; predictions will be NaN", w.Algorithm)
}

// MarshalZerologObject adds structured fields for zerolog.
func (w *NoRelevantFeaturesWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).Str("type", "NoRelevantFeaturesWarning")
}

// NewNoRelevantFeaturesWarning creates a NoRelevantFeaturesWarning.
func NewNoRelevantFeaturesWarning(algorithm string) *NoRelevantFeaturesWarning {
	return &NoRelevantFeaturesWarning{Algorithm: algorithm}
}

// ===========================================================================
//
//	structured error types
//
// ===========================================================================

// NotFittedError is returned when Predict/Transform is called before Fit/Train.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("rvm: %s: this model is not fitted yet. Call Train() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured fields for zerolog.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when an input's dimensions don't match
// expectations.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("rvm: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured fields for zerolog.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when an input parameter fails validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rvm: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured fields for zerolog.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument's value is invalid.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("rvm: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a generic model-related error with an operation and kind tag.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rvm: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("rvm: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// InvalidAlgorithmError is returned by configuration-time algorithm
// validation when the requested algorithm name is not one of the supported
// training strategies.
type InvalidAlgorithmError struct {
	Got      string
	Expected []string
}

func (e *InvalidAlgorithmError) Error() string {
	return fmt.Sprintf("rvm: invalid algorithm %q, expected one of %v", e.Got, e.Expected)
}

// MarshalZerologObject adds structured fields for zerolog.
func (e *InvalidAlgorithmError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("got", e.Got).Strs("expected", e.Expected).Str("type", "InvalidAlgorithmError")
}

// NewInvalidAlgorithmError creates an InvalidAlgorithmError.
func NewInvalidAlgorithmError(got string, expected []string) error {
	err := &InvalidAlgorithmError{Got: got, Expected: expected}
	return errors.WithStack(err)
}

// NonBinaryInputError is returned when Train is called on a dataset whose
// labels are not two-class.
type NonBinaryInputError struct {
	NClasses int
}

func (e *NonBinaryInputError) Error() string {
	return fmt.Sprintf("rvm: dataset is not binary (found %d classes)", e.NClasses)
}

// MarshalZerologObject adds structured fields for zerolog.
func (e *NonBinaryInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("n_classes", e.NClasses).Str("type", "NonBinaryInputError")
}

// NewNonBinaryInputError creates a NonBinaryInputError.
func NewNonBinaryInputError(nClasses int) error {
	err := &NonBinaryInputError{NClasses: nClasses}
	return errors.WithStack(err)
}

// NumericalBreakdownError is returned when a Cholesky factorization keeps
// failing even after the jitter-and-retry ceiling is reached.
type NumericalBreakdownError struct {
	Op        string
	Attempts  int
	LastJitter float64
}

func (e *NumericalBreakdownError) Error() string {
	return fmt.Sprintf("rvm: %s: numerical breakdown after %d jitter attempts (last jitter=%.3g)", e.Op, e.Attempts, e.LastJitter)
}

// MarshalZerologObject adds structured fields for zerolog.
func (e *NumericalBreakdownError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("op", e.Op).Int("attempts", e.Attempts).Float64("last_jitter", e.LastJitter).Str("type", "NumericalBreakdownError")
}

// NewNumericalBreakdownError creates a NumericalBreakdownError.
func NewNumericalBreakdownError(op string, attempts int, lastJitter float64) error {
	err := &NumericalBreakdownError{Op: op, Attempts: attempts, LastJitter: lastJitter}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrapper functions
//
// ===========================================================================

// Is reports whether err matches target anywhere in its chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	common sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty dataset or vector is supplied.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a matrix expected to be invertible
	// turns out to be singular.
	ErrSingularMatrix = New("singular matrix")
)
