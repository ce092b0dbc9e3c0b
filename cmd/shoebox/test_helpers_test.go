package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"shoebox/internal/config"
	"shoebox/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	source     string
	target     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SHOEBOX_SOURCE_DIR", "")
	t.Setenv("SHOEBOX_TARGET_DIR", "")
	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "shoebox", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		source:     cfg.Paths.SourceDir,
		target:     cfg.TargetRoot(),
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, data)
}

// seedPhotos writes three summer 2023 photos: one dated by EXIF, one by file
// name, and one by modification time only.
func seedPhotos(t *testing.T, source string) {
	t.Helper()
	mtime := time.Date(2023, 8, 20, 9, 0, 0, 0, time.Local)
	testsupport.WriteJPEG(t, filepath.Join(source, "camera", "DSC_0001.jpg"),
		testsupport.ExifDates{DateTimeOriginal: "2023:07:04 10:15:00"}, mtime)
	testsupport.WritePhoto(t, filepath.Join(source, "IMG_20230615_120000.jpg"), testsupport.PlainJPEG(), mtime)
	testsupport.WritePhoto(t, filepath.Join(source, "scan.png"), []byte("not really a png"), mtime)
	testsupport.WriteFile(t, filepath.Join(source, "notes.txt"), []byte("ignored"))
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
