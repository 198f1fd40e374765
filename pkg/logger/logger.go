package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop() // usable before Init so early callers never nil-check
)

// Init builds the global production logger at the given level. Unparseable
// levels fall back to info.
func Init(level string) error {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = built
	mu.Unlock()
	return nil
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return global.Sync()
}

// WithModule returns a child of the global logger annotated with the module
// name. Every subsystem logs through one of these.
func WithModule(module string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global.With(zap.String("module", module))
}
