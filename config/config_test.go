package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DADBSLabs/DADBS-TESTNET/config"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if _, err := uuid.Parse(cfg.NodeID); err != nil {
		t.Errorf("NodeID %q is not a UUID: %v", cfg.NodeID, err)
	}
	if cfg.NodeID == config.Default().NodeID {
		t.Error("two defaults share a node ID")
	}
	if cfg.Host != "127.0.0.1" || cfg.Port != 8000 {
		t.Errorf("listen defaults = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.StoragePath != "./data" || cfg.MaxConnections != 50 {
		t.Errorf("storage %q max_connections %d", cfg.StoragePath, cfg.MaxConnections)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout())
	}
	want := []string{"testnet.dadbs.io:8000", "testnet2.dadbs.io:8000"}
	if len(cfg.BootstrapNodes) != len(want) {
		t.Fatalf("bootstrap nodes = %v", cfg.BootstrapNodes)
	}
	for i, node := range want {
		if cfg.BootstrapNodes[i] != node {
			t.Errorf("bootstrap[%d] = %q, want %q", i, cfg.BootstrapNodes[i], node)
		}
	}
	if cfg.LLM != nil {
		t.Error("LLM section should default to absent")
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "etc", "config.toml")

	cfg := config.Default()
	cfg.Port = 9000
	cfg.StoragePath = filepath.Join(dir, "data")
	cfg.BootstrapNodes = []string{"127.0.0.1:9001"}
	cfg.LLM = &config.LLMConfig{ModelPath: "/m", TokenizerPath: "/t", MaxBatchSize: 4}

	if err := cfg.Save(path, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.NodeID != cfg.NodeID || got.Port != 9000 || got.StoragePath != cfg.StoragePath {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.LLM == nil || got.LLM.Enabled || got.LLM.MaxBatchSize != 4 {
		t.Errorf("LLM section = %+v", got.LLM)
	}

	info, err := os.Stat(cfg.StoragePath)
	if err != nil || !info.IsDir() {
		t.Errorf("Load did not create the storage directory: %v", err)
	}
}

func TestLoadOrCreate(t *testing.T) {
	// The defaults carry a relative storage path; keep it inside
	// the test directory.
	t.Chdir(t.TempDir())
	path := "config.toml"

	created, err := config.LoadOrCreate(path, nil)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not written: %v", err)
	}

	loaded, err := config.LoadOrCreate(path, nil)
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if loaded.NodeID != created.NodeID {
		t.Errorf("NodeID changed across loads: %q then %q", created.NodeID, loaded.NodeID)
	}
}

func writeConfig(t *testing.T, cfg config.NodeConfig) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encoding config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Invalid(t *testing.T) {
	base := config.Default()
	base.StoragePath = filepath.Join(t.TempDir(), "data")

	t.Run("empty host", func(t *testing.T) {
		cfg := base
		cfg.Host = ""
		_, err := config.Load(writeConfig(t, cfg), nil)
		if !errors.Is(err, config.ErrInvalidAddress) {
			t.Fatalf("error = %v, want ErrInvalidAddress", err)
		}
	})

	t.Run("bootstrap without port", func(t *testing.T) {
		cfg := base
		cfg.BootstrapNodes = []string{"testnet.dadbs.io"}
		_, err := config.Load(writeConfig(t, cfg), nil)
		if !errors.Is(err, config.ErrInvalidBootstrapNode) {
			t.Fatalf("error = %v, want ErrInvalidBootstrapNode", err)
		}
	})

	t.Run("storage path is a file", func(t *testing.T) {
		cfg := base
		cfg.StoragePath = filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(cfg.StoragePath, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := config.Load(writeConfig(t, cfg), nil)
		if !errors.Is(err, config.ErrStoragePath) {
			t.Fatalf("error = %v, want ErrStoragePath", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"), nil)
		if err == nil {
			t.Fatal("Load of a missing file succeeded")
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("port = ["), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := config.Load(path, nil); err == nil {
			t.Fatal("Load of malformed TOML succeeded")
		}
	})
}

func TestLoad_LLMFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.StoragePath = filepath.Join(dir, "data")
	cfg.LLM = &config.LLMConfig{
		Enabled:       true,
		ModelPath:     filepath.Join(dir, "model.bin"),
		TokenizerPath: filepath.Join(dir, "tokenizer.json"),
	}

	_, err := config.Load(writeConfig(t, cfg), nil)
	if !errors.Is(err, config.ErrModelFiles) {
		t.Fatalf("error = %v, want ErrModelFiles", err)
	}

	for _, p := range []string{cfg.LLM.ModelPath, cfg.LLM.TokenizerPath} {
		if err := os.WriteFile(p, []byte("weights"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := config.Load(writeConfig(t, cfg), nil); err != nil {
		t.Fatalf("Load with model files in place failed: %v", err)
	}
}

func TestEnvOverlay(t *testing.T) {
	cfg := config.Default()
	cfg.StoragePath = filepath.Join(t.TempDir(), "data")
	path := writeConfig(t, cfg)

	t.Setenv("DADBS_NODE_ID", "env-node")
	t.Setenv("DADBS_PORT", "9100")
	t.Setenv("DADBS_BOOTSTRAP_NODES", "10.0.0.1:7000, 10.0.0.2:7000")

	got, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.NodeID != "env-node" || got.Port != 9100 {
		t.Errorf("overlay missed: NodeID %q Port %d", got.NodeID, got.Port)
	}
	if len(got.BootstrapNodes) != 2 || got.BootstrapNodes[1] != "10.0.0.2:7000" {
		t.Errorf("bootstrap overlay = %v", got.BootstrapNodes)
	}
	if got.ListenAddress() != "127.0.0.1:9100" {
		t.Errorf("ListenAddress = %q", got.ListenAddress())
	}

	t.Setenv("DADBS_PORT", "not-a-port")
	if _, err := config.Load(path, nil); err == nil {
		t.Fatal("bad DADBS_PORT accepted")
	}
}
