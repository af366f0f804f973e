package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bunchhieng/docsearch/internal/app"
	"github.com/bunchhieng/docsearch/internal/config"
	"github.com/bunchhieng/docsearch/internal/storage"
)

func runApp(t *testing.T, args ...string) {
	t.Helper()
	dir := t.TempDir()
	base := []string{"docsearch", "--log-file", filepath.Join(dir, "docsearch.log")}
	if err := newApp(&runtimeEnv{}).Run(append(base, args...)); err != nil {
		t.Fatalf("run %v failed: %v", args, err)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	runApp(t, "--config", path, "--db-path", "/tmp/docs.db", "config", "--init")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.DBPath != "/tmp/docs.db" {
		t.Errorf("Expected db path from flag, got %q", cfg.DBPath)
	}
}

func TestAddCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "docs.db")
	cfgPath := filepath.Join(dir, "config.yaml")

	runApp(t, "--config", cfgPath, "--db-path", db, "add", "--title", "Go", "--tags", "lang", "https://go.dev")

	s, err := app.NewStorage(db)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	defer s.Close()

	docs, err := s.List(context.Background(), storage.ListOptions{Tag: "lang"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Go" {
		t.Errorf("Expected added document, got %v", docs)
	}
}
