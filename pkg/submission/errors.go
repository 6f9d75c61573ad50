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
package submission

import (
	"fmt"
)

// ErrDecompress implements "error", for the description see Error.
type ErrDecompress struct {
	Format string
	Err    error
}

func (err ErrDecompress) Error() string {
	return fmt.Sprintf("unable to decompress %s data: %v", err.Format, err.Err)
}

func (err ErrDecompress) Unwrap() error {
	return err.Err
}

// ErrParseXML implements "error", for the description see Error.
type ErrParseXML struct {
	Err error
}

func (err ErrParseXML) Error() string {
	return fmt.Sprintf("unable to parse the XML document: %v", err.Err)
}

func (err ErrParseXML) Unwrap() error {
	return err.Err
}

// ErrSchemaViolation is a single mismatch between a document and
// the submission grammar.
type ErrSchemaViolation struct {
	// Path is the slash-separated path of the element, for example
	// "/system/summary/live_cd". It is empty for document-level violations.
	Path string
	Msg  string
}

func (err ErrSchemaViolation) Error() string {
	if err.Path == "" {
		return err.Msg
	}
	return fmt.Sprintf("%s: %s", err.Path, err.Msg)
}

// ErrValidation means the document does not conform to the submission
// grammar. Err is usually a *multierror.Error of ErrSchemaViolation-s.
type ErrValidation struct {
	Err error
}

func (err ErrValidation) Error() string {
	return fmt.Sprintf("invalid submission: %v", err.Err)
}

func (err ErrValidation) Unwrap() error {
	return err.Err
}

// ErrConsistency means the document is structurally valid, but the device
// data are internally inconsistent, so no device tree could be built.
type ErrConsistency struct {
	Reason fmt.Stringer
}

func (err ErrConsistency) Error() string {
	return err.Reason.String()
}

// NoRootDevice is an ErrConsistency reason.
type NoRootDevice struct {
	Schema string
}

func (r NoRootDevice) String() string {
	return fmt.Sprintf("No %s root device defined", r.Schema)
}

// InvalidDevicePath is an ErrConsistency reason.
type InvalidDevicePath struct {
	Path string
}

func (r InvalidDevicePath) String() string {
	return fmt.Sprintf("Invalid device path name: '%s'", r.Path)
}

// UnresolvedParent is an ErrConsistency reason.
type UnresolvedParent struct {
	DeviceID string
	ParentID string
}

func (r UnresolvedParent) String() string {
	if r.ParentID == "" {
		return fmt.Sprintf("Device %s has no parent device", r.DeviceID)
	}
	return fmt.Sprintf("Device %s references non-existing parent %s", r.DeviceID, r.ParentID)
}

// DuplicateDeviceID is an ErrConsistency reason.
type DuplicateDeviceID struct {
	DeviceID string
}

func (r DuplicateDeviceID) String() string {
	return fmt.Sprintf("Duplicate device ID: %s", r.DeviceID)
}

// ParentCycle is an ErrConsistency reason.
type ParentCycle struct {
	DeviceID string
}

func (r ParentCycle) String() string {
	return fmt.Sprintf("The parent chain of device %s does not end at the root device", r.DeviceID)
}

// ErrPersist implements "error", for the description see Error.
//
// It wraps errors returned by Persister, thus it is an operational error
// rather than a problem of the submission.
type ErrPersist struct {
	DeviceID string
	Err      error
}

func (err ErrPersist) Error() string {
	return fmt.Sprintf("unable to store device %s: %v", err.DeviceID, err.Err)
}

func (err ErrPersist) Unwrap() error {
	return err.Err
}
