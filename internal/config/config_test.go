package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.RAGTopK != 20 {
		t.Fatalf("RAGTopK = %d, want 20", cfg.RAGTopK)
	}
	if cfg.ChunkSize != 900 || cfg.ChunkOverlap != 150 {
		t.Fatalf("chunk geometry = %d/%d, want 900/150", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.QdrantCollection != "schemes" {
		t.Fatalf("QdrantCollection = %q, want schemes", cfg.QdrantCollection)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RAG_TOP_K", "7")
	t.Setenv("API_PORT", "9999")

	cfg := Load()
	if cfg.RAGTopK != 7 {
		t.Fatalf("RAGTopK = %d, want 7", cfg.RAGTopK)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("APIPort = %q, want 9999", cfg.APIPort)
	}
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	cfg := Load()
	if cfg.ChunkSize != 900 {
		t.Fatalf("ChunkSize = %d, want fallback 900", cfg.ChunkSize)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.RAGTopK = 0 },
		func(c *Config) { c.RAGTopK = -1 },
		func(c *Config) { c.ChunkSize = 0 },
		func(c *Config) { c.ChunkOverlap = -1 },
		func(c *Config) { c.ChunkOverlap = c.ChunkSize },
		func(c *Config) { c.APIRateLimitRPS = 0 },
	}
	for i, mutate := range cases {
		cfg := Load()
		mutate(&cfg)
		err := cfg.Validate()
		if !domain.IsKind(err, domain.ErrConfiguration) {
			t.Fatalf("case %d: expected ErrConfiguration, got %v", i, err)
		}
	}

	if err := Load().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadSchemeTableDefaultsWithoutPath(t *testing.T) {
	table, err := LoadSchemeTable("")
	if err != nil {
		t.Fatalf("LoadSchemeTable() error = %v", err)
	}
	if key, ok := table.Detect("pmjdy account"); !ok || key != "pmjdy" {
		t.Fatalf("built-in table missing pmjdy")
	}
}

func TestLoadSchemeTableFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.yaml")
	body := `schemes:
  - key: testscheme
    display_name: Test Scheme
    keywords: [testscheme, "test scheme"]
    enrichment: test scheme eligibility benefits
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadSchemeTable(path)
	if err != nil {
		t.Fatalf("LoadSchemeTable() error = %v", err)
	}
	if key, ok := table.Detect("is testscheme still open"); !ok || key != "testscheme" {
		t.Fatalf("yaml table not used, got %q (%v)", key, ok)
	}
	if _, ok := table.Detect("pmjdy account"); ok {
		t.Fatalf("yaml table should replace the built-in one")
	}
}

func TestLoadSchemeTableRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.yaml")
	if err := os.WriteFile(path, []byte("schemes:\n  - key: broken\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := LoadSchemeTable(path)
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadSchemeTableMissingFile(t *testing.T) {
	_, err := LoadSchemeTable("/nonexistent/schemes.yaml")
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
