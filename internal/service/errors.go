package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error kinds. Every error returned by a service either is one of these or
// wraps one, so handlers can map it with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream service failed")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	// ErrEmptyClassCode indicates a join request without a code.
	ErrEmptyClassCode = newKindError(ErrValidation, "class code is required")
	// ErrClassNotFound indicates no class carries the given code or id.
	ErrClassNotFound = newKindError(ErrNotFound, "class not found")
	// ErrTeacherCodeRole indicates a non-teacher used a teacher join code.
	ErrTeacherCodeRole = newKindError(ErrForbidden, "teacher code can only be used by teachers")
	// ErrStudentCodeRole indicates a non-student used a student join code under the strict policy.
	ErrStudentCodeRole = newKindError(ErrForbidden, "student code can only be used by students")
	// ErrAlreadyEnrolled indicates the user already joined the class.
	ErrAlreadyEnrolled = newKindError(ErrConflict, "user already joined this class")
	// ErrNoClasses indicates the user has not joined any class.
	ErrNoClasses = newKindError(ErrNotFound, "user has not joined any class")
	// ErrNotEnrolled indicates the user is not a member of the class.
	ErrNotEnrolled = newKindError(ErrForbidden, "user is not enrolled in this class")
	// ErrClassCreateRole indicates a non-teacher attempted to create a class.
	ErrClassCreateRole = newKindError(ErrForbidden, "only teachers can create classes")
	// ErrClassCodeExhausted indicates unique join codes could not be generated.
	ErrClassCodeExhausted = newKindError(ErrConflict, "could not generate unique class codes")

	// ErrRoleNotAllowed indicates the role has no task policy.
	ErrRoleNotAllowed = newKindError(ErrForbidden, "role is not allowed to manage tasks")
	// ErrTaskNotFound indicates the task does not exist or is outside the requested class.
	ErrTaskNotFound = newKindError(ErrNotFound, "task not found")
	// ErrNoTasks indicates a class has no visible tasks.
	ErrNoTasks = newKindError(ErrNotFound, "no tasks found for this class")

	// ErrInvalidProgress indicates a progress value outside 0, 1 and 2.
	ErrInvalidProgress = newKindError(ErrValidation, "progress must be one of 0, 1 or 2")
	// ErrEndBeforeStart indicates an end time earlier than the start time.
	ErrEndBeforeStart = newKindError(ErrValidation, "end_time must not be before start_time")

	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = newKindError(ErrNotFound, "user not found")
	// ErrUserExists indicates the username or email is already taken.
	ErrUserExists = newKindError(ErrConflict, "username or email already in use")
	// ErrInvalidCredentials indicates a wrong password.
	ErrInvalidCredentials = newKindError(ErrUnauthorized, "invalid email or password")
	// ErrProfileForbidden indicates an attempt to modify another user's profile.
	ErrProfileForbidden = newKindError(ErrForbidden, "cannot modify another user's profile")
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// validationError tags err as a validation failure, keeping its message.
func validationError(err error) error {
	if err == nil || errors.Is(err, ErrValidation) {
		return err
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := fieldErrs[0]
		msg := fmt.Sprintf("%s failed on '%s'", field.Field(), field.Tag())
		if field.Param() != "" {
			msg = fmt.Sprintf("%s failed on '%s=%s'", field.Field(), field.Tag(), field.Param())
		}
		return &kindError{kind: ErrValidation, msg: msg, cause: err}
	}

	return newKindError(ErrValidation, err.Error())
}

func upstreamError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, operation, err)
}
