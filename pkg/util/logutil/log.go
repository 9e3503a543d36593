// Copyright 2024 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package logutil holds the process-wide background logger. Components
// that have no request-scoped logger of their own log through BgLogger.
package logutil

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger atomic.Value // *zap.Logger

func init() {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	globalLogger.Store(logger)
}

// BgLogger returns the background logger. It is never nil.
func BgLogger() *zap.Logger {
	return globalLogger.Load().(*zap.Logger)
}

// ReplaceLogger swaps the background logger and returns the previous
// one. Tests use it to capture or silence output.
func ReplaceLogger(logger *zap.Logger) *zap.Logger {
	old := BgLogger()
	globalLogger.Store(logger)
	return old
}

// SetLevel rebuilds the background logger at the given level, keeping
// the production encoder.
func SetLevel(level zapcore.Level) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	globalLogger.Store(logger)
	return nil
}
