package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_NormalizesAliases(t *testing.T) {
	v := viper.New()

	dir := t.TempDir()
	cfg := []byte("SAVE_DATA_OPTION: \"excel\"\nSTORE_BACKEND: \"SQLite\"\nMODE: \"SEARCH\"\nIDENTITY: \"channel\"\nEDGE_WEIGHT_COLUMN: \"\"\nMIN_SIM: 3\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), cfg, 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadInto(v, dir); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}

	if AppConfig.SaveDataOption != "xlsx" {
		t.Fatalf("SaveDataOption = %q, want %q", AppConfig.SaveDataOption, "xlsx")
	}
	if AppConfig.StoreBackend != "sqlite" {
		t.Fatalf("StoreBackend = %q, want %q", AppConfig.StoreBackend, "sqlite")
	}
	if AppConfig.Mode != "search" {
		t.Fatalf("Mode = %q, want %q", AppConfig.Mode, "search")
	}
	if AppConfig.Identity != "channel_id" {
		t.Fatalf("Identity = %q, want %q", AppConfig.Identity, "channel_id")
	}
	if AppConfig.EdgeWeightColumn != "peso" {
		t.Fatalf("EdgeWeightColumn = %q, want %q", AppConfig.EdgeWeightColumn, "peso")
	}
	if AppConfig.MinSim != 1 {
		t.Fatalf("MinSim = %v, want 1", AppConfig.MinSim)
	}
	if AppConfig.TopK != 5 {
		t.Fatalf("TopK default = %d, want 5", AppConfig.TopK)
	}
}

func TestAPIKeysList(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "k3")
	t.Setenv("YT_API_KEY", "k1")

	cfg := Config{APIKeys: "k1, k2,,"}
	got := cfg.APIKeysList()
	want := []string{"k1", "k2", "k3"}
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}

	cfg.APIKeyOverride = []string{"x,y", "x"}
	got = cfg.APIKeysList()
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("override keys = %v", got)
	}
}

func TestVideoIDList(t *testing.T) {
	cfg := Config{VideoIDs: []string{"a,b", " c ", "a"}}
	got := cfg.VideoIDList()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("ids = %v", got)
	}
}
