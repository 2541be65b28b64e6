// Copyright 2024 The terminos Authors
// This file is part of the terminos library.
//
// The terminos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The terminos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the terminos library. If not, see <http://www.gnu.org/licenses/>.

// Package tlog is the contextual, module-scoped logging facade used
// across terminos. Call sites obtain a Logger with NewModuleLogger and
// never touch the backend directly, matching the teacher's
// log.NewModuleLogger(log.<Module>) convention.
package tlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module names, mirroring the teacher's log.Common / log.StorageDatabase
// style module constants.
const (
	Energy     = "energy"
	Storage    = "storage"
	Difficulty = "difficulty"
	HardFork   = "hardfork"
	Verifier   = "verifier"
	Contract   = "contract"
	P2P        = "p2p"
	RPC        = "rpc"
	Crypto     = "crypto"
)

var backend *zap.Logger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	backend = l
}

// Logger is a contextual logger carrying a fixed set of key/value
// fields, appended to on every call the way klaytn's logger.New /
// NewWith chain contextual fields.
type Logger struct {
	module string
	fields []zap.Field
}

// NewModuleLogger creates the root logger for a module.
func NewModuleLogger(module string) Logger {
	return Logger{module: module}
}

// New returns a derived logger with additional context, replacing the
// whole chain (matches klaytn's one-shot logger.New(ctx...) usage).
func (l Logger) New(ctx ...interface{}) Logger {
	return Logger{module: l.module, fields: ctxFields(ctx)}
}

// NewWith appends context to the existing chain.
func (l Logger) NewWith(ctx ...interface{}) Logger {
	fields := make([]zap.Field, 0, len(l.fields)+len(ctx)/2)
	fields = append(fields, l.fields...)
	fields = append(fields, ctxFields(ctx)...)
	return Logger{module: l.module, fields: fields}
}

func ctxFields(ctx []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, _ := ctx[i].(string)
		fields = append(fields, zap.Any(key, ctx[i+1]))
	}
	return fields
}

func (l Logger) with(ctx []interface{}) []zap.Field {
	if len(ctx) == 0 {
		return append(l.fields, zap.String("module", l.module))
	}
	fields := make([]zap.Field, 0, len(l.fields)+len(ctx)/2+1)
	fields = append(fields, l.fields...)
	fields = append(fields, ctxFields(ctx)...)
	fields = append(fields, zap.String("module", l.module))
	return fields
}

func (l Logger) Trace(msg string, ctx ...interface{}) { backend.Debug(msg, l.with(ctx)...) }
func (l Logger) Debug(msg string, ctx ...interface{}) { backend.Debug(msg, l.with(ctx)...) }
func (l Logger) Info(msg string, ctx ...interface{})  { backend.Info(msg, l.with(ctx)...) }
func (l Logger) Warn(msg string, ctx ...interface{})  { backend.Warn(msg, l.with(ctx)...) }
func (l Logger) Error(msg string, ctx ...interface{}) { backend.Error(msg, l.with(ctx)...) }

// Crit logs at error severity and panics, mirroring klaytn's
// logger.CritWithStack used for invariant violations that should never
// be reachable in practice (e.g. TxSignatures.ChainId on an empty slice).
func (l Logger) Crit(msg string, ctx ...interface{}) {
	backend.Error(msg, l.with(ctx)...)
	panic(msg)
}
