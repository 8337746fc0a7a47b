package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// testModeEnv skips runtime side effects (listeners, redis, workers) when "1".
const testModeEnv = "SCORECARD_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

// InTestMode reports whether the binaries should exit before starting servers.
func InTestMode() bool {
	testModeOnce.Do(RefreshTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads the flag after environment changes.
func RefreshTestMode() {
	testMode.Store(os.Getenv(testModeEnv) == "1")
}
