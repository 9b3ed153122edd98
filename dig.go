package stegtext

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/zedseven/binmani"
	"github.com/zedseven/stegtext/internal/addressor"
)

// DigConfig stores the configuration options for the Dig operation.
type DigConfig struct {
	ImagePath string // The path on disk to an image produced by Hide.
	OutPath   string // Where to write the recovered payload. Optional.
}

// Extract recovers a payload previously hidden by Embed.
//
// An image that never carried a payload usually fails with *MalformedStreamError.
// One whose first 32 carrier bits are all zero decodes as an empty payload.
func Extract(buf *PixelBuffer) ([]byte, error) {
	bits, err := ExtractBits(buf)
	if err != nil {
		return nil, err
	}
	return Unframe(bits)
}

// ExtractBits reads the least-significant bit of every R, G and B channel byte
// in buf, in the same order EmbedBits writes them. It always returns buf.CapacityBits() bits.
func ExtractBits(buf *PixelBuffer) (BitStream, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}

	capacity := buf.CapacityBits()
	bits := make(BitStream, 0, capacity)
	next := addressor.Sequential(capacity)
	stride := int64(buf.ChannelsPerPixel)

	for {
		addr, err := next()
		if err != nil {
			var empty *addressor.EmptyPoolError
			if errors.As(err, &empty) {
				break
			}
			return nil, err
		}
		p, c := addrToPC(addr)
		bits = append(bits, uint8(binmani.ReadFrom(uint16(buf.Pix[p*stride+int64(c)]), 0, 1)))
	}

	return bits, nil
}

// Dig recovers the payload hidden in the image at config.ImagePath. If config.OutPath
// is set the payload is also written there. A nil logger uses slog.Default().
func Dig(config DigConfig, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Input validation
	if len(config.ImagePath) <= 0 {
		return nil, &InvalidFormatError{"ImagePath is empty."}
	}

	logLvl(logger, OutputSteps, "loading image", "path", config.ImagePath)
	pixels, format, err := LoadImage(config.ImagePath)
	if err != nil {
		return nil, err
	}
	logLvl(logger, OutputInfo, "image info",
		"format", format, "width", pixels.Width, "height", pixels.Height, "capacity_bits", pixels.CapacityBits())

	logLvl(logger, OutputSteps, "extracting payload")
	payload, err := Extract(pixels)
	if err != nil {
		return nil, err
	}
	logLvl(logger, OutputInfo, "payload info", "bytes", len(payload))

	if len(config.OutPath) > 0 {
		logLvl(logger, OutputSteps, "writing payload", "path", config.OutPath)
		if err = os.WriteFile(config.OutPath, payload, 0644); err != nil {
			return nil, fmt.Errorf("writing payload: %w", err)
		}
	}

	logLvl(logger, OutputSteps, "done")
	return payload, nil
}
