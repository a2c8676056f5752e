package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Signature.Lookahead)
	assert.Equal(t, 5*time.Minute, cfg.Activation.ValidityBeforeActive.Duration)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.toml"))
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Same(t, cfg, loader.Config())
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "server.toml",
			content: `
[signature]
lookahead = 7

[activation]
validity_before_active = "2m"
`,
		},
		{
			name: "yaml",
			file: "server.yaml",
			content: `
signature:
  lookahead: 7
activation:
  validity_before_active: 2m
`,
		},
		{
			name:    "json",
			file:    "server.json",
			content: `{"signature": {"lookahead": 7}, "activation": {"validity_before_active": "2m"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(writeFile(t, tt.file, tt.content))
			defer loader.Close()

			cfg, err := loader.Load()
			require.NoError(t, err)
			assert.Equal(t, 7, cfg.Signature.Lookahead)
			assert.Equal(t, 2*time.Minute, cfg.Activation.ValidityBeforeActive.Duration)
			// 파일에 없는 값은 기본값 유지
			assert.Equal(t, 8, cfg.Signature.OfflineLength)
		})
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	loader := NewLoader(writeFile(t, "server.ini", "x=1"))
	defer loader.Close()

	_, err := loader.Load()
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POWERAUTH_DB_DRIVER", "mysql")
	t.Setenv("POWERAUTH_DB_DSN", "user:pw@tcp(localhost:3306)/pa")
	t.Setenv("POWERAUTH_SIGNATURE_LOOKAHEAD", "3")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "user:pw@tcp(localhost:3306)/pa", cfg.Database.DSN)
	assert.Equal(t, 3, cfg.Signature.Lookahead)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"zero lookahead", func(c *Config) { c.Signature.Lookahead = 0 }},
		{"offline length", func(c *Config) { c.Signature.OfflineLength = 12 }},
		{"puk count", func(c *Config) { c.Recovery.MaxPostcardPukCount = 101 }},
		{"db key", func(c *Config) { c.Crypto.MasterDBEncryptionKey = "c2hvcnQ=" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMasterDBEncryptionKeyBytes(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.MasterDBEncryptionKeyBytes())

	cfg.Crypto.MasterDBEncryptionKey = "AAECAwQFBgcICQoLDA0ODw=="
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.MasterDBEncryptionKeyBytes(), 16)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "server.toml", "[signature]\nlookahead = 5\n")
	loader := NewLoader(path)
	defer loader.Close()

	_, err := loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	loader.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	require.NoError(t, loader.Watch())

	require.NoError(t, os.WriteFile(path, []byte("[signature]\nlookahead = 9\n"), 0600))

	select {
	case cfg := <-changed:
		assert.Equal(t, 9, cfg.Signature.Lookahead)
		assert.Equal(t, 9, loader.Config().Signature.Lookahead)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
