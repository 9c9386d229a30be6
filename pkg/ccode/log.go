package ccode

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// pkgLogger is swapped atomically so dispatch paths can read it without a
// lock. Defaults to a nop logger.
var pkgLogger atomic.Pointer[zap.Logger]

func init() {
	pkgLogger.Store(zap.NewNop())
}

// SetLogger installs the logger used for warnings and invariant
// diagnostics. Pass zap.NewNop() to silence the package.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l)
}

func logger() *zap.Logger { return pkgLogger.Load() }

// bug reports a structural invariant violation and aborts the process.
// These are programming errors, not runtime conditions.
func bug(msg string, fields ...zap.Field) {
	logger().Fatal("internal invariant violated: "+msg, fields...)
}
