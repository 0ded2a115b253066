package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"buildbump/internal/action"
	"buildbump/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const appConfig = `export default {
  ios: { buildNumber: "10" },
  android: { versionCode: 20 },
};
`

// setupGlobals installs a quiet logger and a reporter that reads env instead
// of the process environment. It returns the reporter's stdout.
func setupGlobals(t *testing.T, env map[string]string) *bytes.Buffer {
	t.Helper()
	var out, errOut bytes.Buffer
	logger = zap.NewNop()
	reporter = action.New(
		action.WithGetenv(func(k string) string { return env[k] }),
		action.WithWriters(&out, &errOut),
	)
	cfg = config.DefaultConfig()
	t.Cleanup(func() {
		logger, reporter, cfg = nil, nil, nil
		settingsPath, configPath = "", ""
		updateIOS, updateAndroid, dryRun, strictNumbers = false, false, false, true
		inspectJSON = false
	})
	return &out
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunBump_UpdatesFile(t *testing.T) {
	outputs := setupGlobals(t, nil)
	path := writeFile(t, t.TempDir(), "app.config.js", appConfig)
	cfg.UpdateIOS = true
	cfg.UpdateAndroid = true

	cmd, stdout, stderr := newTestCommand()
	require.NoError(t, runBump(cmd, []string{path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `buildNumber: "11"`)
	assert.Contains(t, string(data), "versionCode: 21")

	assert.Equal(t, "newIosBuildNumber=11\nnewAndroidVersionCode=21\n", outputs.String())
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "ios.buildNumber")
	assert.Contains(t, stderr.String(), "Updated "+path)
}

func TestRunBump_DryRunPrintsDiff(t *testing.T) {
	setupGlobals(t, nil)
	path := writeFile(t, t.TempDir(), "app.config.js", appConfig)
	cfg.UpdateIOS = true
	cfg.DryRun = true

	cmd, stdout, stderr := newTestCommand()
	require.NoError(t, runBump(cmd, []string{path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, appConfig, string(data))

	assert.Contains(t, stdout.String(), `-  ios: { buildNumber: "10" },`)
	assert.Contains(t, stdout.String(), `+  ios: { buildNumber: "11" },`)
	assert.Contains(t, stderr.String(), "Dry run")
}

func TestRunBump_NoPlatformSelected(t *testing.T) {
	outputs := setupGlobals(t, nil)
	cfg.ConfigPath = filepath.Join(t.TempDir(), "missing.js")

	cmd, _, _ := newTestCommand()
	err := runBump(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, "At least one platform must be selected", err.Error())
	assert.Empty(t, outputs.String())
}

func TestRunBump_NoMatch(t *testing.T) {
	setupGlobals(t, nil)
	path := writeFile(t, t.TempDir(), "app.config.js", "export default { name: \"demo\" };\n")
	cfg.UpdateIOS = true

	cmd, _, stderr := newTestCommand()
	require.NoError(t, runBump(cmd, []string{path}))
	assert.Contains(t, stderr.String(), "No target fields found")
}

func TestResolveConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	settings := writeFile(t, dir, ".buildbump.yaml", `config_path: settings.js
update_ios: true
update_android: true
logging:
  level: warn
`)
	t.Setenv("BUILDBUMP_CONFIG_PATH", "env.js")
	t.Setenv("BUILDBUMP_LOG_LEVEL", "error")

	setupGlobals(t, map[string]string{
		"INPUT_CONFIGPATH": "input.js",
		"INPUT_UPDATEIOS":  "yes",
	})
	settingsPath = settings

	cmd := &cobra.Command{}
	cmd.Flags().StringVarP(&configPath, "config-path", "c", "", "")
	cmd.Flags().BoolVar(&updateAndroid, "update-android", false, "")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "")

	t.Run("inputs over env", func(t *testing.T) {
		got, err := resolveConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, "input.js", got.ConfigPath)
		assert.False(t, got.UpdateIOS, "only the literal true enables a toggle")
		assert.True(t, got.UpdateAndroid)
		assert.Equal(t, "error", got.Logging.Level)
	})

	t.Run("flags over inputs", func(t *testing.T) {
		require.NoError(t, cmd.Flags().Parse([]string{"-c", "flag.js", "--update-android=false"}))
		got, err := resolveConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, "flag.js", got.ConfigPath)
		assert.False(t, got.UpdateAndroid)
		assert.Equal(t, "error", got.Logging.Level, "unchanged flags keep lower layers")
	})
}

func TestRunInspect(t *testing.T) {
	setupGlobals(t, nil)
	path := writeFile(t, t.TempDir(), "app.config.ts", `export default {
  ios: { buildNumber: "10" },
  tvos: { buildNumber: "3" },
  android: { versionCode: 20 },
};
`)
	cfg.Targets = []config.TargetConfig{{Name: "tvos", Path: "tvos.buildNumber", Output: "newTvosBuildNumber"}}

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runInspect(cmd, []string{path}))

	out := stdout.String()
	for _, want := range []string{"TARGET", "ios.buildNumber", "android.versionCode", "tvos.buildNumber", `"10"`, "20"} {
		assert.Contains(t, out, want)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `buildNumber: "10"`)
}

func TestRunInspect_JSON(t *testing.T) {
	setupGlobals(t, nil)
	path := writeFile(t, t.TempDir(), "app.config.js", appConfig)
	inspectJSON = true

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runInspect(cmd, []string{path}))

	var got []fieldMatch
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, []fieldMatch{
		{Target: "ios", Field: "ios.buildNumber", Line: 2, Column: 10, Value: `"10"`},
		{Target: "android", Field: "android.versionCode", Line: 3, Column: 14, Value: "20"},
	}, got)
}

func TestRunInspect_NoMatches(t *testing.T) {
	setupGlobals(t, nil)
	path := writeFile(t, t.TempDir(), "app.config.js", "module.exports = {};\n")

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runInspect(cmd, []string{path}))
	assert.True(t, strings.HasPrefix(stdout.String(), "No target fields found"))
}

func TestVersionCmd(t *testing.T) {
	cmd, stdout, _ := newTestCommand()
	versionCmd.Run(cmd, nil)
	assert.True(t, strings.HasPrefix(stdout.String(), "buildbump "+config.Version))
}
