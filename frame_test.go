package stegtext

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame_HeaderLayout(t *testing.T) {
	bits, err := Frame([]byte("A"))
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(bits) != 40 {
		t.Fatalf("expected 40 bits, got %d", len(bits))
	}

	// 32-bit big-endian length 1, then 'A' = 0x41, MSB first.
	want := make(BitStream, 0, 40)
	want = append(want, make(BitStream, 31)...)
	want = append(want, 1)
	want = append(want, 0, 1, 0, 0, 0, 0, 0, 1)
	if !bytes.Equal(bits, want) {
		t.Errorf("unexpected frame bits:\n got %v\nwant %v", bits, want)
	}
}

func TestFrame_Empty(t *testing.T) {
	bits, err := Frame(nil)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(bits) != headerBits {
		t.Fatalf("expected %d bits, got %d", headerBits, len(bits))
	}
	for i, b := range bits {
		if b != 0 {
			t.Fatalf("bit %d: expected 0, got %d", i, b)
		}
	}
}

func TestUnframe_RoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		[]byte("test string"),
		[]byte("こんにちは"),
		{0x00, 0xff, 0x80, 0x01},
		bytes.Repeat([]byte("a"), 4096),
	}

	for _, payload := range tests {
		bits, err := Frame(payload)
		if err != nil {
			t.Fatalf("Frame failed: %v", err)
		}
		if int64(len(bits)) != FramedBits(len(payload)) {
			t.Errorf("FramedBits(%d) = %d, but Frame produced %d bits", len(payload), FramedBits(len(payload)), len(bits))
		}

		// Trailing bits past the frame are ignored.
		bits = append(bits, 1, 0, 1, 1, 0)

		got, err := Unframe(bits)
		if err != nil {
			t.Fatalf("Unframe failed: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("round trip mismatch: %q != %q", got, payload)
		}
	}
}

func TestUnframe_Malformed(t *testing.T) {
	full, err := Frame([]byte("hello"))
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	tests := []struct {
		name string
		bits BitStream
	}{
		{"nil", nil},
		{"short header", full[:31]},
		{"truncated payload", full[:len(full)-1]},
		{"header only", full[:headerBits]},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Unframe(test.bits)
			var malformed *MalformedStreamError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedStreamError, got %v", err)
			}
		})
	}
}

func TestUnframe_HugeLength(t *testing.T) {
	bits := make(BitStream, headerBits+64)
	for i := 0; i < headerBits; i++ {
		bits[i] = 1
	}

	_, err := Unframe(bits)
	var malformed *MalformedStreamError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedStreamError for a 0xffffffff header, got %v", err)
	}
}

func TestUnframe_KnownBits(t *testing.T) {
	// Length 2, then 0x41 0xff, then trailing noise.
	bits := make(BitStream, 30, 64)
	bits = append(bits, 1, 0)
	bits = append(bits, 0, 1, 0, 0, 0, 0, 0, 1)
	bits = append(bits, 1, 1, 1, 1, 1, 1, 1, 1)
	bits = append(bits, 1, 0, 1)

	got, err := Unframe(bits)
	if err != nil {
		t.Fatalf("Unframe failed: %v", err)
	}
	if want := []byte{0x41, 0xff}; !bytes.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// A zero-length header yields an empty, non-nil payload.
	got, err = Unframe(make(BitStream, headerBits))
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("expected an empty payload, got %v, %v", got, err)
	}
}
