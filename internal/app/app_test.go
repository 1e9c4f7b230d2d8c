package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/sharemd/internal/codec"
	"github.com/five82/sharemd/internal/config"
	"github.com/five82/sharemd/internal/logging"
)

func TestRun_InvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("base_url = ["), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := Run(context.Background(), Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Run error = %v, want load config error", err)
	}
}

func TestOpenLinkFile_SeedsGivenLink(t *testing.T) {
	cfg := config.Default()
	cfg.LinkFile = filepath.Join(t.TempDir(), "state", "link.url")

	link := "https://sharemd.app/?mode=preview&content=" + string(codec.Encode("hello"))
	res, err := openLinkFile(cfg, link, logging.Discard())
	if err != nil {
		t.Fatalf("openLinkFile returned error: %v", err)
	}

	got, err := res.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.String() != link {
		t.Fatalf("link file = %q, want %q", got.String(), link)
	}
}

func TestOpenLinkFile_KeepsExistingLink(t *testing.T) {
	cfg := config.Default()
	cfg.LinkFile = filepath.Join(t.TempDir(), "link.url")
	existing := "https://sharemd.app/?mode=edit&content=b1.aGk"
	if err := os.WriteFile(cfg.LinkFile, []byte(existing+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := openLinkFile(cfg, "", logging.Discard())
	if err != nil {
		t.Fatalf("openLinkFile returned error: %v", err)
	}
	got, err := res.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.String() != existing {
		t.Fatalf("link file = %q, want %q", got.String(), existing)
	}
}
