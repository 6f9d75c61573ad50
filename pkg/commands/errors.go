// Copyright 2023 Meta Platforms, Inc. and affiliates.
//
// Redistribution and use in source and binary forms, with or without modification, are permitted provided that the following conditions are met:
//
// 1. Redistributions of source code must retain the above copyright notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright notice, this list of conditions and the following disclaimer in the documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its contributors may be used to endorse or promote products derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package commands

import (
	"fmt"
)

// ExitCoder is an error signature used to override the exitcode in the end
// of main.main.
type ExitCoder interface {
	ExitCode() int
}

// ErrArgs means the command was called with invalid arguments, the usage
// is printed.
type ErrArgs struct {
	Err error
}

func (err ErrArgs) Error() string {
	return fmt.Sprintf("invalid arguments: %v", err.Err)
}

func (err ErrArgs) Unwrap() error {
	return err.Err
}

// SilentError is an error which is already reported to the user, so
// main.main should not print it again.
type SilentError struct {
	Err error
}

func (err SilentError) Error() string {
	return fmt.Sprintf("%v", err.Err)
}

func (err SilentError) Unwrap() error {
	return err.Err
}

// Descriptioner is the interface for error-s which requires method Description,
// which in turn is used to provide verbose explanation of how to interpret the
// error.
type Descriptioner interface {
	Description() string
}

// ErrInvalidSubmission means the submission document cannot be processed.
type ErrInvalidSubmission struct {
	Err error
}

func (err ErrInvalidSubmission) Error() string {
	return fmt.Sprintf("invalid submission: %v", err.Err)
}

func (err ErrInvalidSubmission) Unwrap() error {
	return err.Err
}

// ExitCode implements ExitCoder.
func (err ErrInvalidSubmission) ExitCode() int {
	return 4
}

// Description implements Descriptioner.
func (err ErrInvalidSubmission) Description() string {
	return "the batch processing would mark this submission as INVALID without storing any of its devices"
}
