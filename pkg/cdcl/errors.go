/*
Copyright 2024 Simon Murray

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cdcl

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpected marks an internal invariant violation.
	ErrUnexpected = errors.New("unexpected error")

	// ErrResourceExhausted is returned from Check when a Checkpoint fires.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrGiveUp is returned from Check when an Extension's final_check
	// reports give_up.
	ErrGiveUp = errors.New("giveup")
)

// SolverError wraps a sentinel error kind with a human-readable reason.
type SolverError struct {
	Reason string
	Err    error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Reason)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

func resourceExhausted(reason string) error {
	return &SolverError{Reason: reason, Err: ErrResourceExhausted}
}

func giveUp(reason string) error {
	return &SolverError{Reason: reason, Err: ErrGiveUp}
}
