package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocrud/cmsconfig"
	"github.com/gocrud/cmsconfig/core"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolve_YAMLRedactsSecrets(t *testing.T) {
	path := writeEnvFile(t, "SENDGRID_API_KEY=SG.secret\nDATABASE_FILENAME=/var/data/app.db\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-prefix", "CMSCONFIG_TEST_NONE_", "--config", path, "resolve"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "filename: /var/data/app.db")
	assert.Contains(t, out, "provider: sendgrid")
	assert.Contains(t, out, "******")
	assert.Contains(t, out, "defaultFrom: null")
	assert.NotContains(t, out, "SG.secret")
}

func TestResolve_JSONShowSecrets(t *testing.T) {
	path := writeEnvFile(t, "SENDGRID_API_KEY=SG.secret\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-prefix", "CMSCONFIG_TEST_NONE_", "--config", path, "resolve", "--format", "json", "--show-secrets"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var tree map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &tree))

	plugins := tree["plugins"].(map[string]any)
	email := plugins["email"].(map[string]any)["config"].(map[string]any)
	assert.Equal(t, "SG.secret", email["providerOptions"].(map[string]any)["apiKey"])
	assert.Nil(t, email["settings"].(map[string]any)["defaultFrom"])

	database := tree["database"].(map[string]any)["connection"].(map[string]any)
	assert.Equal(t, ".tmp/data.db", database["connection"].(map[string]any)["filename"])
	assert.Equal(t, true, database["useNullAsDefault"])
}

func TestCheck(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-prefix", "CMSCONFIG_TEST_NONE_", "check"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "SENDGRID_API_KEY")
	assert.Contains(t, stderr.String(), "SMTP_FROM_EMAIL")

	path := writeEnvFile(t, "SENDGRID_API_KEY=k\nSMTP_FROM_EMAIL=a@b.c\n")
	stdout.Reset()
	stderr.Reset()
	code = run([]string{"--env-prefix", "CMSCONFIG_TEST_NONE_", "--config", path, "check"}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "configuration OK")
}

func TestStart_StrictFailsOnAbsentValues(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-prefix", "CMSCONFIG_TEST_NONE_", "start", "--strict"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid configuration")
	assert.Contains(t, stderr.String(), "SENDGRID_API_KEY")
}

func TestStart_UsesCommandLineSources(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli", "data.db")
	path := writeEnvFile(t, "DATABASE_FILENAME="+dbPath+"\n")

	var filename, phase string
	stopWhenBootstrapped := cmsconfig.WithHooks(nil, func(rt *core.Runtime) {
		filename = rt.Configuration.Database.Connection.Connection.Filename.String()
		phase = rt.Lifecycle.Phase().String()
		rt.Shutdown()
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-prefix", "CMSCONFIG_TEST_NONE_", "--config", path, "--log-format", "json", "start"},
		&stdout, &stderr, stopWhenBootstrapped)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, dbPath, filename)
	assert.Equal(t, "initialized", phase)
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	logs := stderr.String()
	assert.Contains(t, logs, `"msg":"Configuration incomplete"`)
	assert.Contains(t, logs, `"msg":"Application bootstrapped"`)
	assert.Contains(t, logs, `"msg":"Closing database connections"`)
}

func TestStart_InvalidLogLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level", "loud", "start"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "unknown log level")
}

func TestEnvPrefix(t *testing.T) {
	t.Setenv("CMSCONFIG_TEST_DATABASE_FILENAME", "/prefixed.db")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--env-prefix", "CMSCONFIG_TEST_", "resolve"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "filename: /prefixed.db")
}

func TestMissingConfigFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "resolve"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "YamlFile")
}

func TestParseError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"bogus"}, &stdout, &stderr))
}
