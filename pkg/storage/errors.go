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
package storage

import (
	"fmt"
)

// ErrInitDB implements "error", for the description see Error.
type ErrInitDB struct {
	Err error
	DSN string
}

func (err ErrInitDB) Error() string {
	return fmt.Sprintf("unable to initialize a database client (DSN: '%s'): %v", err.DSN, err.Err)
}

func (err ErrInitDB) Unwrap() error {
	return err.Err
}

// ErrPing implements "error", for the description see Error.
type ErrPing struct {
	Err error
}

func (err ErrPing) Error() string {
	return fmt.Sprintf("unable to ping the database server: %v", err.Err)
}

func (err ErrPing) Unwrap() error {
	return err.Err
}

// ErrMigrate implements "error", for the description see Error.
type ErrMigrate struct {
	Migration string
	Err       error
}

func (err ErrMigrate) Error() string {
	return fmt.Sprintf("unable to apply migration '%s': %v", err.Migration, err.Err)
}

func (err ErrMigrate) Unwrap() error {
	return err.Err
}

// ErrUnableToUpload implements "error", for the description see Error.
type ErrUnableToUpload struct {
	Key fmt.Stringer
	Err error
}

func (err ErrUnableToUpload) Error() string {
	return fmt.Sprintf("unable to upload blob '%s': %v", err.Key, err.Err)
}

func (err ErrUnableToUpload) Unwrap() error {
	return err.Err
}

// ErrUnableToInsert implements "error", for the description see Error.
type ErrUnableToInsert struct {
	Table string
	Err   error
}

func (err ErrUnableToInsert) Error() string {
	return fmt.Sprintf("unable to insert a row to table '%s': %v",
		err.Table, err.Err)
}

func (err ErrUnableToInsert) Unwrap() error {
	return err.Err
}

// ErrAlreadyExists implements "error", for the description see Error.
type ErrAlreadyExists struct {
	Table string
	Err   error
}

func (err ErrAlreadyExists) Error() string {
	return fmt.Sprintf("the row is already inserted to table '%s': %v",
		err.Table, err.Err)
}

func (err ErrAlreadyExists) Unwrap() error {
	return err.Err
}

// ErrUnableToUpdate implements "error", for the description see Error.
type ErrUnableToUpdate struct {
	Table string
	Err   error
}

func (err ErrUnableToUpdate) Error() string {
	return fmt.Sprintf("unable to update table '%s': %v", err.Table, err.Err)
}

func (err ErrUnableToUpdate) Unwrap() error {
	return err.Err
}

// ErrGetData implements "error", for the description see Error.
type ErrGetData struct {
	Err error
}

func (err ErrGetData) Error() string {
	return fmt.Sprintf("unable to get the data: %v", err.Err)
}

func (err ErrGetData) Unwrap() error {
	return err.Err
}

// ErrSelect implements "error", for the description see Error.
type ErrSelect struct {
	Err error
}

func (err ErrSelect) Error() string {
	return fmt.Sprintf("unable to select rows: %v", err.Err)
}

func (err ErrSelect) Unwrap() error {
	return err.Err
}

// ErrNotFound implements "error", for the description see Error.
type ErrNotFound struct {
	Query string
}

func (err ErrNotFound) Error() string {
	return fmt.Sprintf("not found (query: %s)", err.Query)
}

// ErrTxClosed is returned when a transaction is used after Commit or Rollback.
type ErrTxClosed struct{}

func (err ErrTxClosed) Error() string {
	return "the transaction is already closed"
}
