package core

import "fmt"

// ValidationError reports malformed input to a create operation.
// The operation is rejected before any store mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ReferenceError reports a transaction whose category does not match any
// existing category id at creation time.
type ReferenceError struct {
	Category string
}

func (e *ReferenceError) Error() string {
	return "invalid or missing category"
}

// SecurityError reports an ad-hoc query rejected by the read-only check.
// Query carries the offending text for diagnostics.
type SecurityError struct {
	Query string
}

func (e *SecurityError) Error() string {
	return "only read queries are allowed"
}

// StorageError reports a failure of the persistence substrate.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
