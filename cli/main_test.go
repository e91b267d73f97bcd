package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestResolveChannels(t *testing.T) {
	file := filepath.Join(t.TempDir(), "channels.txt")
	if err := os.WriteFile(file, []byte("UCfile1\n\nUCfile2\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name   string
		flag   string
		file   string
		config []string
		want   []string
	}{
		{"flag wins", "UC1,UC2", file, []string{"UCcfg"}, []string{"UC1", "UC2"}},
		{"file next", "", file, []string{"UCcfg"}, []string{"UCfile1", "UCfile2"}},
		{"config last", "", "", []string{"UCcfg"}, []string{"UCcfg"}},
		{"nothing", "", "", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveChannels(tt.flag, tt.file, tt.config)
			if err != nil {
				t.Fatalf("resolveChannels() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveChannels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveChannelsMissingFile(t *testing.T) {
	if _, err := resolveChannels("", filepath.Join(t.TempDir(), "missing.txt"), nil); err == nil {
		t.Error("expected error for missing channels file")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty() = %q, want b", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}
