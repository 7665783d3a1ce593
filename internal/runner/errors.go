package runner

import (
	"errors"
	"fmt"
)

// ErrAborted reports that the operator chose to stop at the resume
// prompt. Nothing was modified beyond what earlier runs already wrote.
var ErrAborted = errors.New("configuration aborted")

// KeyCollisionError reports two steps settling the same configuration
// key. Keys are global across steps; overwriting would silently discard
// one step's answer.
type KeyCollisionError struct {
	Key        string
	FirstStep  string
	SecondStep string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("config key %q is set by both step %q and step %q", e.Key, e.FirstStep, e.SecondStep)
}

// SecretCollisionError reports two steps producing a secret file with
// the same name. Secret names must be unique across steps because they
// all land in one directory.
type SecretCollisionError struct {
	Name       string
	FirstStep  string
	SecondStep string
}

func (e *SecretCollisionError) Error() string {
	return fmt.Sprintf("secret file %q is produced by both step %q and step %q", e.Name, e.FirstStep, e.SecondStep)
}

// SecretWriteError reports a secret file that could not be written.
// The value is never part of the message.
type SecretWriteError struct {
	Name string
	Err  error
}

func (e *SecretWriteError) Error() string {
	return fmt.Sprintf("writing secret file %q: %v", e.Name, e.Err)
}

func (e *SecretWriteError) Unwrap() error { return e.Err }
