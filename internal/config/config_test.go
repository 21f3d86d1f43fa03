package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "famcoord.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	d, err := cfg.InterpreterDefaults()
	require.NoError(t, err)
	assert.Equal(t, domain.TypePickUp, d.Type)
	assert.Equal(t, domain.AssigneeMom, d.Assignee)
	assert.Equal(t, "12:00", d.Time)
	assert.True(t, cfg.Features.NaturalLanguage)
	assert.Equal(t, 30, cfg.Calendar.Days)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
[app]
db_path = "/tmp/family.db"
log_level = "debug"

[defaults]
assignee = "dad"
time = "4pm"

[features]
recommendations = false

[calendar]
days = 14

[llm]
provider = "ollama"
model = "llama3.2"
`)
	t.Setenv(PathEnv, path)
	t.Setenv("FAMCOORD_LLM_MODEL", "qwen2.5")
	t.Setenv("FAMCOORD_SERVER_ADDR", ":9090")
	t.Setenv("FAMCOORD_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/family.db", cfg.App.DBPath)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 14, cfg.Calendar.Days)
	assert.False(t, cfg.Features.Recommendations)
	assert.True(t, cfg.Features.PrepTasks, "keys absent from the file keep defaults")
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "qwen2.5", cfg.LLM.Model, "env overrides file")
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 8000, cfg.LLM.TaskTimeout(llm.TaskClassify), "task table survives file load")

	d, err := cfg.InterpreterDefaults()
	require.NoError(t, err)
	assert.Equal(t, domain.AssigneeDad, d.Assignee)
	assert.Equal(t, "16:00", d.Time)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "nope.toml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Setenv(PathEnv, writeConfig(t, "[app\ndb_path = "))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.App.LogLevel = "chatty"
	cfg.App.Timezone = "Mars/Olympus"
	cfg.Defaults.Type = "Carpool"
	cfg.Calendar.Days = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.log_level")
	assert.Contains(t, err.Error(), "app.timezone")
	assert.Contains(t, err.Error(), "defaults.type")
	assert.Contains(t, err.Error(), "calendar.days")
}

func TestApplyEnv_FeatureFlags(t *testing.T) {
	t.Setenv("FAMCOORD_FEATURE_NATURAL_LANGUAGE", "false")
	t.Setenv("FAMCOORD_AUTO_APPLY", "true")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.False(t, cfg.Features.NaturalLanguage)
	assert.True(t, cfg.Features.AutoApply)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("FAMCOORD_CALENDAR_DAYS", "a month")
	cfg := Default()
	assert.Error(t, cfg.ApplyEnv())
}

func TestLocation(t *testing.T) {
	cfg := Default()
	cfg.App.Timezone = "UTC"
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	cfg := Default()
	cfg.App.LogLevel = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "k=v")
}
