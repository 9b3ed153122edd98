package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zedseven/stegtext"
)

func TestRun_HideThenDig(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "in.png")
	outPath := filepath.Join(dir, "out.png")
	payloadPath := filepath.Join(dir, "payload.txt")

	carrier := &stegtext.PixelBuffer{Width: 20, Height: 20, ChannelsPerPixel: 3, Pix: make([]uint8, 1200)}
	if err := stegtext.WriteImage(carrier, imgPath); err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}

	if code := run([]string{"-q", "--img", imgPath, "--text", "from the cli", "--out", outPath}); code != 0 {
		t.Fatalf("hide exited with %d", code)
	}
	if code := run([]string{"-q", "--dig", "--img", outPath, "--out", payloadPath}); code != 0 {
		t.Fatalf("dig exited with %d", code)
	}

	got, err := os.ReadFile(payloadPath)
	if err != nil {
		t.Fatalf("reading payload: %v", err)
	}
	if string(got) != "from the cli" {
		t.Errorf("expected %q, got %q", "from the cli", got)
	}
}

func TestRun_Usage(t *testing.T) {
	if code := run([]string{"-q"}); code != 2 {
		t.Errorf("expected exit 2 without --img, got %d", code)
	}
	if code := run([]string{"--no-such-flag"}); code != 2 {
		t.Errorf("expected exit 2 for an unknown flag, got %d", code)
	}
	if code := run([]string{"--version"}); code != 0 {
		t.Errorf("expected exit 0 for --version, got %d", code)
	}
}

func TestRun_HideFailure(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{"-q", "--img", filepath.Join(dir, "missing.png"), "--text", "x", "--out", filepath.Join(dir, "out.png")})
	if code != 1 {
		t.Errorf("expected exit 1 for a missing image, got %d", code)
	}
}
