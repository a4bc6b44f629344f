package app

import (
	"os"
	"testing"

	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/testutil"
)

// SetupAppTest creates a new app instance with debug logging captured in a
// buffer. The log is printed when the test fails or SPACECOMM_TEST_LOGS=true.
func SetupAppTest(t *testing.T, appConfig *Config, loader config.Loader) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(logBuffer, appConfig, loader)

	t.Cleanup(func() {
		if t.Failed() || os.Getenv("SPACECOMM_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
