package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	DefaultLevel string `yaml:"default_level"`

	MaxSessions       int `yaml:"max_sessions"`
	HandshakeTimeoutS int `yaml:"handshake_timeout_s"`
	ReadTimeoutS      int `yaml:"read_timeout_s"`
	WriteTimeoutS     int `yaml:"write_timeout_s"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t.withDefaults(), nil
}

func Defaults() Tuning {
	return Tuning{}.withDefaults()
}

func (t Tuning) withDefaults() Tuning {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "1.0"
	}
	if t.MaxSessions <= 0 {
		t.MaxSessions = 256
	}
	if t.HandshakeTimeoutS <= 0 {
		t.HandshakeTimeoutS = 5
	}
	if t.ReadTimeoutS <= 0 {
		t.ReadTimeoutS = 300
	}
	if t.WriteTimeoutS <= 0 {
		t.WriteTimeoutS = 5
	}
	return t
}
