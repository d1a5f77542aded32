package environment_test

import (
	"testing"
	"time"

	"github.com/jrazmi/taskhub/sdk/environment"
)

type testConfig struct {
	Port         string        `env:"PORT" default:":8080"`
	MaxConns     int           `env:"MAX_CONNS" default:"25"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" default:"5s"`
	EnableDebug  bool          `env:"ENABLE_DEBUG" default:"false"`
	Origins      []string      `env:"ORIGINS" default:"a,b" separator:","`
	SigningKey   string        `env:"SIGNING_KEY"`
	internalOnly string
}

func TestParseEnvTags_Defaults(t *testing.T) {
	var cfg testConfig
	if err := environment.ParseEnvTags("TAGTEST", &cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Port)
	}
	if cfg.MaxConns != 25 {
		t.Errorf("MaxConns = %d, want 25", cfg.MaxConns)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.EnableDebug {
		t.Error("EnableDebug = true, want false")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[0] != "a" || cfg.Origins[1] != "b" {
		t.Errorf("Origins = %v, want [a b]", cfg.Origins)
	}
}

func TestParseEnvTags_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TAGTEST_PORT", ":9999")
	t.Setenv("TAGTEST_ORIGINS", "x | y")

	var cfg struct {
		Port    string   `env:"PORT" default:":8080"`
		Origins []string `env:"ORIGINS" separator:"|"`
	}
	if err := environment.ParseEnvTags("TAGTEST", &cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Port != ":9999" {
		t.Errorf("Port = %q, want :9999", cfg.Port)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[0] != "x" || cfg.Origins[1] != "y" {
		t.Errorf("Origins = %v, want trimmed [x y]", cfg.Origins)
	}
}

func TestParseEnvTags_Required(t *testing.T) {
	var cfg struct {
		Key string `env:"MISSING_KEY" required:"true"`
	}
	if err := environment.ParseEnvTags("TAGTEST", &cfg); err == nil {
		t.Fatal("expected error for missing required variable")
	}
}

func TestParseEnvTags_NotAPointer(t *testing.T) {
	var cfg testConfig
	if err := environment.ParseEnvTags("TAGTEST", cfg); err == nil {
		t.Fatal("expected error for non-pointer cfg")
	}
}
