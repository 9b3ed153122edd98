package stegtext

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestImage(t *testing.T, dir string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, "carrier.png")
	if err := WriteImage(newBuffer(w, h, 3, 8), path); err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}
	return path
}

func TestHideDig_Text(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, 100, 100)
	outPath := filepath.Join(dir, "out.png")
	payloadPath := filepath.Join(dir, "payload.txt")

	logger := NewLogger(io.Discard, OutputDebug)
	if err := Hide(&HideConfig{ImagePath: imgPath, Text: "test string", OutPath: outPath}, logger); err != nil {
		t.Fatalf("Hide failed: %v", err)
	}

	got, err := Dig(DigConfig{ImagePath: outPath, OutPath: payloadPath}, logger)
	if err != nil {
		t.Fatalf("Dig failed: %v", err)
	}
	if string(got) != "test string" {
		t.Errorf("expected %q, got %q", "test string", got)
	}

	written, err := os.ReadFile(payloadPath)
	if err != nil {
		t.Fatalf("reading payload file: %v", err)
	}
	if string(written) != "test string" {
		t.Errorf("payload file holds %q", written)
	}
}

func TestHideDig_File(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, 40, 40)
	outPath := filepath.Join(dir, "out.png")
	filePath := filepath.Join(dir, "secret.bin")

	secret := []byte{0x00, 0x01, 0xfe, 0xff, 'h', 'i'}
	if err := os.WriteFile(filePath, secret, 0644); err != nil {
		t.Fatalf("failed to write secret: %v", err)
	}

	if err := Hide(&HideConfig{ImagePath: imgPath, FilePath: filePath, OutPath: outPath}, nil); err != nil {
		t.Fatalf("Hide failed: %v", err)
	}
	got, err := Dig(DigConfig{ImagePath: outPath}, nil)
	if err != nil {
		t.Fatalf("Dig failed: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("got %v, want %v", got, secret)
	}
}

func TestHide_TooLarge(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, 10, 10)
	outPath := filepath.Join(dir, "out.png")

	err := Hide(&HideConfig{ImagePath: imgPath, Text: string(bytes.Repeat([]byte("x"), 34)), OutPath: outPath}, nil)
	var exceeded *CapacityExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected *CapacityExceededError, got %v", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Error("expected no output image after a failed hide")
	}
}

func TestHide_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config HideConfig
	}{
		{"no image", HideConfig{Text: "x", OutPath: "out.png"}},
		{"no out", HideConfig{ImagePath: "in.png", Text: "x"}},
		{"no payload", HideConfig{ImagePath: "in.png", OutPath: "out.png"}},
		{"both payloads", HideConfig{ImagePath: "in.png", Text: "x", FilePath: "f", OutPath: "out.png"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var invalid *InvalidFormatError
			if err := Hide(&test.config, nil); !errors.As(err, &invalid) {
				t.Errorf("expected *InvalidFormatError, got %v", err)
			}
		})
	}
}

func TestDig_InvalidConfig(t *testing.T) {
	var invalid *InvalidFormatError
	if _, err := Dig(DigConfig{}, nil); !errors.As(err, &invalid) {
		t.Errorf("expected *InvalidFormatError, got %v", err)
	}
	if _, err := Dig(DigConfig{ImagePath: filepath.Join(t.TempDir(), "missing.png")}, nil); err == nil {
		t.Error("expected an error for a missing image")
	}
}

func TestOutputLevel(t *testing.T) {
	var b bytes.Buffer
	logLvl(NewLogger(&b, OutputSteps), OutputInfo, "hidden detail")
	logLvl(NewLogger(&b, OutputSteps), OutputSteps, "visible step")
	logLvl(NewLogger(&b, OutputNone), OutputSteps, "silenced step")

	out := b.String()
	if !strings.Contains(out, "visible step") {
		t.Errorf("expected step output, got %q", out)
	}
	if strings.Contains(out, "hidden detail") || strings.Contains(out, "silenced step") {
		t.Errorf("unexpected output %q", out)
	}
	if OutputDebug.String() != "debug" {
		t.Errorf("unexpected name %q", OutputDebug.String())
	}
}
