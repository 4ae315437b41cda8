package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithInitialConfig(DefaultConfigWithRoot(dir)))
	require.NoError(t, err)

	path := filepath.Join(dir, "config.json")
	_, err = os.Stat(path)
	require.NoError(t, err, "config file not created")
	assert.Equal(t, path, mgr.Path())

	cfg := mgr.Get()
	cfg.ResultsDir = filepath.Join(dir, "reports")
	cfg.NewsAPIKey = "news-key"

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, mgr.UpdateFromJSON(string(data)))

	updated := mgr.Get()
	assert.Equal(t, cfg.ResultsDir, updated.ResultsDir)
	assert.Equal(t, "news-key", updated.NewsAPIKey)

	// a fresh manager reads what was persisted
	again, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)
	assert.Equal(t, cfg.ResultsDir, again.Get().ResultsDir)
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithInitialConfig(DefaultConfigWithRoot(dir)))
	require.NoError(t, err)

	cfg := mgr.Get()
	cfg.LLMProvider = "carrier-pigeon"
	assert.Error(t, mgr.Update(cfg))
	assert.Equal(t, ProviderGroq, mgr.Get().LLMProvider)
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithInitialConfig(DefaultConfigWithRoot(dir)), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 1)
	require.NoError(t, mgr.Watch(ctx, func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}))

	cfg := mgr.Get()
	cfg.NewsPageSize = 5
	require.NoError(t, WriteFile(mgr.Path(), cfg))

	select {
	case got := <-reloaded:
		assert.Equal(t, 5, got.NewsPageSize)
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}

func TestManagerProviderSwitchResetsModelAndEndpoint(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithInitialConfig(DefaultConfigWithRoot(dir)))
	require.NoError(t, err)
	require.Equal(t, "https://api.groq.com/openai/v1", mgr.Get().LLMBaseURL)

	require.NoError(t, mgr.UpdateFromJSON(`{"llm_provider":"openai"}`))

	check := func(cfg Config) {
		assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
		assert.Empty(t, cfg.LLMBaseURL)
		assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
		assert.Equal(t, "openai-key", cfg.LLMAPIKey)
	}
	check(mgr.Get())

	persisted, err := ReadFile(mgr.Path())
	require.NoError(t, err)
	check(persisted)
}

func TestManagerProviderSwitchKeepsExplicitModel(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithInitialConfig(DefaultConfigWithRoot(dir)))
	require.NoError(t, err)

	require.NoError(t, mgr.UpdateFromJSON(`{"llm_provider":"deepseek","llm_model":"deepseek-reasoner"}`))
	cfg := mgr.Get()
	assert.Equal(t, "deepseek-reasoner", cfg.LLMModel)
	assert.Empty(t, cfg.LLMBaseURL)
}

func TestReadFileResolvesProviderDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm_provider":"deepseek","llm_api_key":"ds-key"}`), 0o600))

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", cfg.LLMModel)
	assert.Empty(t, cfg.LLMBaseURL)
	assert.Equal(t, "ds-key", cfg.LLMAPIKey)
}
