// Package stegtext hides short payloads in the least-significant bits of an
// image's colour channels, and recovers them again.
//
// The wire contract is fixed: pixels are walked row by row, left to right,
// visiting the R, G and B channel bytes of each pixel in that order (alpha is
// never touched). The carried bit stream is a 32-bit big-endian length header
// followed by that many bytes of payload, most-significant bit first.
package stegtext

import (
	"fmt"
)

const (
	bitsPerByte uint8 = 8
	headerBits        = 32
	headerBytes       = headerBits / 8
	rgbChannels       = 3
	VersionMax  uint8 = 1
	VersionMid  uint8 = 0
	VersionMin  uint8 = 0
)

// Shared types

// PixelBuffer is a decoded image: Width*Height pixels in row-major order,
// each holding ChannelsPerPixel interleaved channel bytes.
type PixelBuffer struct {
	Width, Height    int
	ChannelsPerPixel int
	Pix              []uint8
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, ChannelsPerPixel: b.ChannelsPerPixel, Pix: pix}
}

// CapacityBits returns the number of bits the buffer can carry, one per traversed channel byte.
func (b *PixelBuffer) CapacityBits() int64 {
	return CapacityBits(b.Width, b.Height, rgbChannels)
}

func (b *PixelBuffer) validate() error {
	if b == nil {
		return &UnsupportedPixelFormatError{Reason: "The pixel buffer is nil."}
	}
	if b.ChannelsPerPixel < rgbChannels {
		return &UnsupportedPixelFormatError{ChannelsPerPixel: b.ChannelsPerPixel}
	}
	if b.Width < 0 || b.Height < 0 {
		return &UnsupportedPixelFormatError{ChannelsPerPixel: b.ChannelsPerPixel,
			Reason: fmt.Sprintf("The dimensions %dx%d are invalid.", b.Width, b.Height)}
	}
	if want := b.Width * b.Height * b.ChannelsPerPixel; len(b.Pix) != want {
		return &UnsupportedPixelFormatError{ChannelsPerPixel: b.ChannelsPerPixel,
			Reason: fmt.Sprintf("The buffer holds %d channel bytes but %dx%dx%d requires %d.",
				len(b.Pix), b.Width, b.Height, b.ChannelsPerPixel, want)}
	}
	return nil
}

// BitStream is an ordered sequence of bits, one per element, each 0 or 1.
type BitStream []uint8

// Error types

// CapacityExceededError is returned when a framed payload needs more bits than the image can hold.
type CapacityExceededError struct {
	RequiredBits int64
	CapacityBits int64
	InnerError   error
}

func (e *CapacityExceededError) Error() string {
	ret := "There is not enough space available to store the provided payload within the provided image."
	if e.RequiredBits > 0 || e.CapacityBits > 0 {
		ret = fmt.Sprintf("%v Required bits: %d, available bits: %d.", ret, e.RequiredBits, e.CapacityBits)
	}
	if e.InnerError != nil {
		return fmt.Sprintf("%v Inner error: %v", ret, e.InnerError.Error())
	}
	return ret
}

func (e *CapacityExceededError) Unwrap() error {
	return e.InnerError
}

// MalformedStreamError is returned when an extracted bit stream does not hold a complete frame.
// Likely caused by an image that never had a payload embedded, or one that was re-encoded lossily.
type MalformedStreamError struct {
	Reason string
}

func (e *MalformedStreamError) Error() string {
	ret := "The image does not contain a valid embedded payload."
	if len(e.Reason) > 0 {
		return fmt.Sprintf("%v %v", ret, e.Reason)
	}
	return ret
}

// UnsupportedPixelFormatError is returned before traversal when a buffer lacks the R, G and B channels.
type UnsupportedPixelFormatError struct {
	ChannelsPerPixel int
	Reason           string
}

func (e *UnsupportedPixelFormatError) Error() string {
	if len(e.Reason) > 0 {
		return e.Reason
	}
	return fmt.Sprintf("The pixel buffer has %d channels per pixel, but at least %d (R, G, B) are required.",
		e.ChannelsPerPixel, rgbChannels)
}

// ImageTooLargeError is returned when an image declares more pixels than the caller allows.
// It is detected from the image header, before any pixel data is decoded.
type ImageTooLargeError struct {
	Width, Height int
	MaxPixels     int64
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("The image is %dx%d (%d pixels), which exceeds the limit of %d pixels.",
		e.Width, e.Height, int64(e.Width)*int64(e.Height), e.MaxPixels)
}

// InvalidFormatError is returned when a Hide or Dig configuration is unusable.
type InvalidFormatError struct {
	ErrorDesc string
}

func (e *InvalidFormatError) Error() string {
	if len(e.ErrorDesc) > 0 {
		return e.ErrorDesc
	}
	return "The provided data is of an invalid format."
}

// Library methods

// Version returns the library version as "MM.mm.pp".
func Version() string {
	return fmt.Sprintf("%02d.%02d.%02d", VersionMax, VersionMid, VersionMin)
}

// Shared methods

// PC = Pixel, Channel
func addrToPC(addr int64) (pix int64, channel int) {
	pix = addr / rgbChannels
	channel = int(addr % rgbChannels)
	return
}
