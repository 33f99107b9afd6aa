// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import "github.com/decred/slog"

// log is a logger that is initialized with no output filters.  This
// means the package will not perform any logging by default until the
// caller requests it.
var log = slog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}

// logClosure is used to provide a closure over expensive logging
// operations so they don't have to be performed when the logging level
// doesn't warrant it.
type logClosure func() string

// String invokes the underlying function and returns the result.
func (c logClosure) String() string {
	return c()
}

// newLogClosure returns a new closure over a function that returns a
// string which itself provides a Stringer interface so that it can be
// used with the logging system.
func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}
