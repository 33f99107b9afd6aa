// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credit

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind
// when determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific RuleError.
const (
	// ErrInvalidAmount indicates a credit amount is zero, negative, or
	// otherwise not representable.
	ErrInvalidAmount = ErrorKind("ErrInvalidAmount")

	// ErrInsufficientBalance indicates an address attempted to transfer
	// or retire more credits than its recorded balance, or holds no
	// balance in the batch at all.
	ErrInsufficientBalance = ErrorKind("ErrInsufficientBalance")

	// ErrBatchRetired indicates an operation was attempted on a batch
	// whose entire issued amount has already been permanently retired.
	ErrBatchRetired = ErrorKind("ErrBatchRetired")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// RuleError identifies a violation of the batch accounting rules.  It has
// full support for errors.Is and errors.As, so the caller can ascertain
// the specific reason for the error by checking the underlying error.
type RuleError struct {
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Err: kind, Description: desc}
}
