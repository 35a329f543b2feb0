package storage

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Sentinels matched by errors.Is against *Error.
var (
	ErrUploadFailed = errors.New("storage: upload failed")
	ErrDeleteFailed = errors.New("storage: delete failed")
	ErrEmptyObject  = errors.New("storage: empty object")
)

const (
	opPut    = "put"
	opDelete = "delete"
	opHead   = "head"
)

// Error describes a failed object store call.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func newObjectError(op, bucket, key string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}

func (e *Error) Error() string {
	cause := e.Err
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		cause = fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	if e.Key == "" {
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, cause)
	}
	return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, cause)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps the operation onto ErrUploadFailed or ErrDeleteFailed.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUploadFailed:
		return e.Op == opPut
	case ErrDeleteFailed:
		return e.Op == opDelete
	}
	return false
}

// Code returns the remote error code, or "" when the failure was local.
func (e *Error) Code() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
