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
package observability

import (
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"

	"github.com/immune-gmbh/hwdb/pkg/observability/hooks/logentryfingerprint"
	"github.com/immune-gmbh/hwdb/pkg/observability/tool/logger/logrus/formatter"
)

// LoggerConfig is the settings of NewLogger.
type LoggerConfig struct {
	// Output is where the log is written to, stderr if nil.
	Output io.Writer

	// OmitTimestamp removes the time from the log lines, which is
	// convenient for interactive tools.
	OmitTimestamp bool

	// FieldAllowList limits the printed structured fields, all fields
	// are printed if nil.
	FieldAllowList []string
}

// NewLogger returns the Logger of HWDB tools: compact text lines
// through logrus, each entry is marked with a fingerprint of the place
// it was issued from.
func NewLogger(cfg LoggerConfig) logger.Logger {
	l := logrus.DefaultLogrusLogger()
	if cfg.Output != nil {
		l.Out = cfg.Output
	}
	l.Formatter = &formatter.CompactText{
		OmitTimestamp:  cfg.OmitTimestamp,
		FieldAllowList: cfg.FieldAllowList,
	}

	result := logrus.New(l)
	result = result.WithPreHooks(logentryfingerprint.PreHook{})
	result = result.WithLevel(logger.LevelTrace)
	return result
}
