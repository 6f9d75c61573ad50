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
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

const kernelPackagePrefix = "linux-image-"

// Persister stores the device data of a submission. It is implemented
// by storage.Tx.
//
// All methods except CreateSubmissionDevice are idempotent.
type Persister interface {
	GetOrCreateDevice(ctx context.Context, bus models.HWBus, vendorID, productID, name string) (*models.HWDevice, error)
	EnsureVendorName(ctx context.Context, bus models.HWBus, vendorID, vendorName string) error
	EnsureDeviceClass(ctx context.Context, deviceID int64, mainClass, subClass *int) error
	GetOrCreateDriver(ctx context.Context, packageName, name string) (*models.HWDriver, error)
	GetOrCreateDeviceDriverLink(ctx context.Context, deviceID int64, driverID *int64) (*models.HWDeviceDriverLink, error)
	CreateSubmissionDevice(ctx context.Context, submissionDevice *models.HWSubmissionDevice) error
}

// Parser processes one submission. It is not reusable: a new Parser
// should be created for each submission.
type Parser struct {
	SubmissionKey string
	Config        Config

	logger   logger.Logger
	warnings map[string]struct{}

	parsed  *ParsedSubmission
	devices map[string]DeviceNode
	root    DeviceNode

	kernelPackageName         *string
	isKernelPackageNameCached bool
}

// NewParser returns a new Parser of the submission. The logger is taken
// from the context.
func NewParser(ctx context.Context, submissionKey string, opts ...Option) *Parser {
	return &Parser{
		SubmissionKey: submissionKey,
		Config:        Options(opts).Config(),
		logger:        logger.FromCtx(ctx),
		warnings:      map[string]struct{}{},
	}
}

// logWarning logs a soft inconsistency of the submission. A warning
// is logged only once; warnings with the same ID (the message by default)
// are considered the same.
func (p *Parser) logWarning(msg string, warningID ...string) {
	if p.Config.DisableWarnings {
		return
	}
	id := msg
	if len(warningID) > 0 {
		id = warningID[0]
	}
	if _, ok := p.warnings[id]; ok {
		return
	}
	p.warnings[id] = struct{}{}
	p.logger.Warnf("Parsing submission %s: %s", p.SubmissionKey, msg)
}

func (p *Parser) logError(err error) {
	p.logger.Errorf("Parsing submission %s: %v", p.SubmissionKey, err)
}

// Load decompresses, validates and parses the submission and builds
// its device tree. Nothing is stored.
//
// The returned errors are problems of the submission itself, see
// ErrDecompress, ErrParseXML, ErrValidation and ErrConsistency.
func (p *Parser) Load(raw []byte) error {
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	devices, root, err := BuildDeviceTree(parsed, p)
	if err != nil {
		return err
	}
	p.parsed, p.devices, p.root = parsed, devices, root
	return nil
}

// Parsed returns the parsed document, nil if Load did not succeed.
func (p *Parser) Parsed() *ParsedSubmission {
	return p.parsed
}

// Devices returns all the device nodes by DeviceID.
func (p *Parser) Devices() map[string]DeviceNode {
	return p.devices
}

// Root returns the root device, nil if Load did not succeed.
func (p *Parser) Root() DeviceNode {
	return p.root
}

// KernelPackageName returns the name of the package of the running kernel,
// or nil if it is unknown or inconsistent with the installed packages.
// The result is computed only once.
func (p *Parser) KernelPackageName() *string {
	if !p.isKernelPackageNameCached {
		p.kernelPackageName = p.resolveKernelPackageName()
		p.isKernelPackageNameCached = true
	}
	return p.kernelPackageName
}

func (p *Parser) resolveKernelPackageName() *string {
	if p.parsed == nil || p.root == nil {
		return nil
	}

	var version, source string
	switch root := p.root.(type) {
	case *HALDevice:
		version, _ = root.KernelVersion()
		source = "HAL"
	default:
		version = p.parsed.Summary.KernelRelease
		source = "the summary"
	}
	if version == "" {
		return nil
	}

	packageName := kernelPackagePrefix + version
	packages := p.parsed.Software.Packages
	if len(packages) == 0 {
		// Nothing to check against.
		return &packageName
	}
	if _, ok := packages[packageName]; !ok {
		p.logWarning(fmt.Sprintf(
			"Inconsistent kernel version data: According to %s the kernel is %s, but the submission does not know about a kernel package %s",
			source, version, packageName,
		), "kernel-package-name")
		return nil
	}
	return &packageName
}

// ProcessSubmission parses the submission and stores its device tree.
//
// It returns false if the submission is invalid (the reason is logged),
// errors are returned only for problems of the Persister.
func (p *Parser) ProcessSubmission(
	ctx context.Context,
	raw []byte,
	submissionID int64,
	persister Persister,
) (bool, error) {
	if err := p.Load(raw); err != nil {
		p.logError(err)
		return false, nil
	}

	p.KernelPackageName()

	if err := p.createDBData(ctx, persister, submissionID, p.root, nil); err != nil {
		return false, err
	}
	return true, nil
}
