package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestPasswordSourceResolve(t *testing.T) {
	input := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(input, []byte("typed-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	openInput := func(t *testing.T) *os.File {
		f, err := os.Open(input)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { f.Close() })
		return f
	}

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{"flag wins", "from-flag", "from-env", "from-flag"},
		{"environment", "", "from-env", "from-env"},
		{"prompt", "", "", "typed-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(PasswordEnv, tt.env)
			src := PasswordSource{In: openInput(t), Out: io.Discard}
			got, err := src.Resolve(tt.flag, "Password: ")
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("LOG_FORMAT", "json")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %s", cfg.LogFormat)
	}

	t.Setenv("DATA_BACKEND", "sheets")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("LoadAndValidateConfig() expected error for unknown backend")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LEDGER_TEST_ONLY=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEDGER_TEST_ONLY", "")
	os.Unsetenv("LEDGER_TEST_ONLY")

	LoadEnvFile(path)
	if got := os.Getenv("LEDGER_TEST_ONLY"); got != "from-dotenv" {
		t.Errorf("LEDGER_TEST_ONLY = %q", got)
	}
}
