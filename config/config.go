// Package config loads and persists node configuration: identity,
// listen address, storage location, consensus timing, bootstrap
// peers, and the optional text-generation section.
//
// Configuration lives in a TOML file. Environment variables with a
// DADBS_ prefix override file values, and a .env file in the working
// directory is honored when present, so deployments can keep
// overrides next to the binary.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

var (
	// ErrInvalidAddress reports a listen host/port that does not
	// form a dialable address.
	ErrInvalidAddress = errors.New("config: invalid listen address")
	// ErrInvalidBootstrapNode reports a bootstrap entry that is not
	// host:port.
	ErrInvalidBootstrapNode = errors.New("config: invalid bootstrap node address")
	// ErrStoragePath reports an unusable storage location.
	ErrStoragePath = errors.New("config: storage path is not usable")
	// ErrModelFiles reports missing model or tokenizer files for an
	// enabled [llm] section.
	ErrModelFiles = errors.New("config: model files missing")
)

// NodeConfig is the full configuration of a validator process.
type NodeConfig struct {
	NodeID      string `toml:"node_id"`
	Host        string `toml:"host"`
	Port        uint16 `toml:"port"`
	StoragePath string `toml:"storage_path"`

	// MaxConnections caps concurrent inbound connections.
	MaxConnections uint32 `toml:"max_connections"`

	// ConsensusTimeout is the per-round timeout in milliseconds.
	ConsensusTimeout uint64 `toml:"consensus_timeout"`

	// BootstrapNodes are host:port addresses contacted on startup.
	BootstrapNodes []string `toml:"bootstrap_nodes"`

	// LLM enables the text-generation capability when present.
	LLM *LLMConfig `toml:"llm,omitempty"`
}

// LLMConfig configures the local language model.
type LLMConfig struct {
	Enabled       bool   `toml:"enabled"`
	ModelPath     string `toml:"model_path"`
	TokenizerPath string `toml:"tokenizer_path"`
	MaxBatchSize  int    `toml:"max_batch_size"`
	UseGPU        bool   `toml:"use_gpu"`
}

// Default returns a configuration for a fresh node: a new random
// node ID, loopback listen address on port 8000, ./data storage, and
// the public testnet bootstrap endpoints.
func Default() NodeConfig {
	return NodeConfig{
		NodeID:           uuid.NewString(),
		Host:             "127.0.0.1",
		Port:             8000,
		StoragePath:      "./data",
		MaxConnections:   50,
		ConsensusTimeout: 5000,
		BootstrapNodes: []string{
			"testnet.dadbs.io:8000",
			"testnet2.dadbs.io:8000",
		},
	}
}

// Load reads the TOML file at path, overlays DADBS_* environment
// variables, validates the result, and prepares the storage
// directory. When the [llm] section is enabled, the model and
// tokenizer files must exist.
func Load(path string, logger *zap.Logger) (NodeConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	_ = godotenv.Load() // a .env file is optional

	data, err := os.ReadFile(path)
	if err != nil {
		return NodeConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg NodeConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return NodeConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return NodeConfig{}, err
	}
	if err := cfg.validate(logger); err != nil {
		return NodeConfig{}, err
	}

	if _, err := os.Stat(cfg.StoragePath); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
			return NodeConfig{}, fmt.Errorf("%w: create %s: %v", ErrStoragePath, cfg.StoragePath, err)
		}
	}

	if cfg.LLM != nil && cfg.LLM.Enabled {
		if _, err := os.Stat(cfg.LLM.ModelPath); err != nil {
			return NodeConfig{}, fmt.Errorf("%w: model file %s", ErrModelFiles, cfg.LLM.ModelPath)
		}
		if _, err := os.Stat(cfg.LLM.TokenizerPath); err != nil {
			return NodeConfig{}, fmt.Errorf("%w: tokenizer file %s", ErrModelFiles, cfg.LLM.TokenizerPath)
		}
	}

	return cfg, nil
}

// LoadOrCreate loads the configuration at path, writing and
// returning the defaults when the file does not exist yet.
func LoadOrCreate(path string, logger *zap.Logger) (NodeConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path, logger); err != nil {
			return NodeConfig{}, err
		}
		return cfg, nil
	}
	return Load(path, logger)
}

// Save validates the configuration and writes it as TOML to path,
// creating parent directories as needed.
func (c NodeConfig) Save(path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := c.validate(logger); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ListenAddress returns the host:port the node should listen on.
func (c NodeConfig) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.FormatUint(uint64(c.Port), 10))
}

// Timeout returns the consensus timeout as a duration.
func (c NodeConfig) Timeout() time.Duration {
	return time.Duration(c.ConsensusTimeout) * time.Millisecond
}

// validate checks address shapes and the storage path, and warns
// about values that work but rarely mean what the operator wanted.
// Name resolution is left to dial time; only shape errors are caught
// here.
func (c NodeConfig) validate(log *zap.Logger) error {
	if err := checkHostPort(c.ListenAddress()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAddress, c.ListenAddress(), err)
	}
	for _, node := range c.BootstrapNodes {
		if err := checkHostPort(node); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidBootstrapNode, node, err)
		}
	}

	if c.Port < 1024 && c.Port != 0 {
		log.Warn("using privileged port, this may require elevated privileges",
			zap.Uint16("port", c.Port))
	}
	if c.MaxConnections > 1000 {
		log.Warn("high max_connections value, this may consume significant resources",
			zap.Uint32("max_connections", c.MaxConnections))
	}
	if c.ConsensusTimeout < 1000 {
		log.Warn("very low consensus_timeout, rounds may abandon before votes arrive",
			zap.Uint64("consensus_timeout_ms", c.ConsensusTimeout))
	}

	if info, err := os.Stat(c.StoragePath); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s exists but is not a directory", ErrStoragePath, c.StoragePath)
	}
	return nil
}

// applyEnv overrides fields from DADBS_* environment variables.
func (c *NodeConfig) applyEnv() error {
	if v := os.Getenv("DADBS_NODE_ID"); v != "" {
		c.NodeID = v
	}
	if v := os.Getenv("DADBS_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("DADBS_PORT"); v != "" {
		p, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("config: DADBS_PORT %q: %w", v, err)
		}
		c.Port = uint16(p)
	}
	if v := os.Getenv("DADBS_STORAGE_PATH"); v != "" {
		c.StoragePath = v
	}
	if v := os.Getenv("DADBS_MAX_CONNECTIONS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("config: DADBS_MAX_CONNECTIONS %q: %w", v, err)
		}
		c.MaxConnections = uint32(n)
	}
	if v := os.Getenv("DADBS_CONSENSUS_TIMEOUT"); v != "" {
		ms, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: DADBS_CONSENSUS_TIMEOUT %q: %w", v, err)
		}
		c.ConsensusTimeout = ms
	}
	if v := os.Getenv("DADBS_BOOTSTRAP_NODES"); v != "" {
		nodes := strings.Split(v, ",")
		for i := range nodes {
			nodes[i] = strings.TrimSpace(nodes[i])
		}
		c.BootstrapNodes = nodes
	}
	return nil
}

func checkHostPort(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if host == "" {
		return errors.New("empty host")
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("port %q not numeric", port)
	}
	return nil
}
