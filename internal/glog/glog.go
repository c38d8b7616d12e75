// Package glog provides the engine's structured session/statement
// logging, built on go.uber.org/zap (spec SPEC_FULL.md AMBIENT STACK:
// "promoted from an indirect dependency of the teacher... to a direct
// one, the way a production fork of smf would adopt structured logging
// once it needed to observe a long-running engine session rather than a
// one-shot CLI invocation"). Grounded on the teacher's own reliance on
// zap transitively through testcontainers-go — this package is the first
// place in the repo to import it by name.
package glog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	current *zap.Logger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	current = l
}

// Set replaces the package-level logger, letting a Glue façade caller
// inject a development logger, a nop logger for tests, or a custom zap
// core (e.g. writing to a rotating file).
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SlowScan warns when a full table scan (no primary-key or secondary
// index directive) has returned more rows than the caller's threshold
// (executor/select.go's slowScanThreshold); SlowScan itself logs
// unconditionally (spec
// §4.5's "important for SELECT ... LIMIT 1 over huge tables" concern
// made observable).
func SlowScan(table string, rows int) {
	L().Warn("full table scan", zap.String("table", table), zap.Int("rows", rows))
}

// AutocommitWrap traces the execute-atomic wrapping spec §4.5 describes:
// a statement outside any user BEGIN implicitly wrapped in its own
// begin/commit-or-rollback.
func AutocommitWrap(stmt string) {
	L().Debug("autocommit wrap", zap.String("statement", stmt))
}

// SyntheticRewrite notes the fallback path executor/ddl.go takes when a
// back-end lacks the AlterTable capability: read all rows, transform,
// re-insert under the new schema.
func SyntheticRewrite(table, op string) {
	L().Info("synthetic ALTER TABLE rewrite", zap.String("table", table), zap.String("op", op))
}
