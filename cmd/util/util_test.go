package util

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/lib/common"
	"github.com/ValentinKolb/eKV/lib/value"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line exceeds %d characters: %q", Wrap, line)
		}
	}
	if WrapString("short text") != "short text" {
		t.Errorf("short text must not be wrapped")
	}
}

func TestOpenStore(t *testing.T) {
	conf := common.DefaultStoreConfig()
	conf.File = filepath.Join(t.TempDir(), "cli.db")
	conf.LogLevel = "error"

	s, err := OpenStore(&conf)
	if err != nil {
		t.Fatalf("OpenStore on a missing file failed: %v", err)
	}
	if err := s.Insert("k", value.Int(1), 0); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Save(conf.File); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = s.Close()

	// the existing snapshot wins over the configured backend
	conf.Backend = "unordered"
	s, err = OpenStore(&conf)
	if err != nil {
		t.Fatalf("OpenStore on an existing file failed: %v", err)
	}
	defer s.Close()
	if v, ok, _ := s.Get("k"); !ok || !v.Equal(value.Int(1)) {
		t.Errorf("reopened store lost its data")
	}
	if s.Info().Backend != "ordered" {
		t.Errorf("snapshot backend should be kept, got %s", s.Info().Backend)
	}

	conf.LogLevel = "loud"
	if _, err := OpenStore(&conf); err == nil {
		t.Errorf("invalid log level should fail")
	}
}

func TestGetStoreConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	SetupStoreFlags(cmd)
	if err := cmd.ParseFlags([]string{"--sweep-interval", "5s", "--backend", "unordered"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if err := BindCommandFlags(cmd); err != nil {
		t.Fatalf("BindCommandFlags failed: %v", err)
	}

	conf := GetStoreConfig()
	if conf.SweepInterval != 5*time.Second {
		t.Errorf("SweepInterval = %s, want 5s", conf.SweepInterval)
	}
	if conf.Backend != "unordered" {
		t.Errorf("Backend = %s, want unordered", conf.Backend)
	}
	if !strings.Contains(conf.String(), "5s") {
		t.Errorf("configuration output should show the sweep interval:\n%s", conf.String())
	}

	opts, err := conf.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.SweepInterval != 5*time.Second {
		t.Errorf("store options lost the sweep interval: %s", opts.SweepInterval)
	}
}
