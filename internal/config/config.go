// Package config loads the YAML device profile that parameterizes an
// emulated NTAG21x/UltramanZ tag: which variant to present, its initial
// UID/password material, and where its persisted card image lives.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root document.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// DeviceConfig describes the tag identity and initial secret material.
type DeviceConfig struct {
	Variant   string `yaml:"variant"`             // ntag213, ntag215, ntag216, ultramanz
	UIDHex    string `yaml:"uid_hex"`              // 7 bytes, hex
	PWDHex    string `yaml:"pwd_hex,omitempty"`     // 4 bytes, hex; defaults to FFFFFFFF
	PACKHex   string `yaml:"pack_hex,omitempty"`    // 2 bytes, hex; defaults to 0000
	AUTH0     *int   `yaml:"auth0,omitempty"`       // first password-protected page; defaults to PageCount (disabled)
	ReadProt  bool   `yaml:"read_protect,omitempty"`
}

// RuntimeConfig describes how the core is hosted.
type RuntimeConfig struct {
	ImageFile string `yaml:"image_file"`
	ReadOnly  bool   `yaml:"read_only,omitempty"`
}

// Load reads and validates the YAML document at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.resolvePaths(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and normalizes hex defaults.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Device.Variant)) {
	case "ntag213", "ntag215", "ntag216", "ultramanz":
	default:
		return fmt.Errorf("config.device.variant must be one of ntag213, ntag215, ntag216, ultramanz, got %q", c.Device.Variant)
	}

	if strings.TrimSpace(c.Device.UIDHex) == "" {
		return fmt.Errorf("config.device.uid_hex is required")
	}
	if _, err := decodeHex(c.Device.UIDHex, 7, "config.device.uid_hex"); err != nil {
		return err
	}

	if c.Device.PWDHex == "" {
		c.Device.PWDHex = "ffffffff"
	}
	if _, err := decodeHex(c.Device.PWDHex, 4, "config.device.pwd_hex"); err != nil {
		return err
	}

	if c.Device.PACKHex == "" {
		c.Device.PACKHex = "0000"
	}
	if _, err := decodeHex(c.Device.PACKHex, 2, "config.device.pack_hex"); err != nil {
		return err
	}

	if strings.TrimSpace(c.Runtime.ImageFile) == "" {
		return fmt.Errorf("config.runtime.image_file is required")
	}

	return nil
}

func (c *Config) resolvePaths(configPath string) {
	configDir := filepath.Dir(configPath)
	c.Runtime.ImageFile = resolvePath(configDir, c.Runtime.ImageFile)
}

func resolvePath(baseDir, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Clean(filepath.Join(baseDir, trimmed))
}

func decodeHex(s string, wantLen int, field string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) != wantLen*2 {
		return nil, fmt.Errorf("%s: want %d hex bytes, got %d characters", field, wantLen, len(s))
	}
	out := make([]byte, wantLen)
	for i := 0; i < wantLen; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid hex byte %q: %w", field, s[i*2:i*2+2], err)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// UID returns the decoded 7-byte UID. Call only after Validate succeeds.
func (c *Config) UID() [7]byte {
	b, _ := decodeHex(c.Device.UIDHex, 7, "uid")
	var u [7]byte
	copy(u[:], b)
	return u
}

// PWD returns the decoded 4-byte password.
func (c *Config) PWD() [4]byte {
	b, _ := decodeHex(c.Device.PWDHex, 4, "pwd")
	var p [4]byte
	copy(p[:], b)
	return p
}

// PACK returns the decoded 2-byte password ack.
func (c *Config) PACK() [2]byte {
	b, _ := decodeHex(c.Device.PACKHex, 2, "pack")
	var p [2]byte
	copy(p[:], b)
	return p
}
