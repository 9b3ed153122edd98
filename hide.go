package stegtext

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zedseven/binmani"
	"github.com/zedseven/stegtext/internal/addressor"
)

// HideConfig stores the configuration options for the Hide operation.
type HideConfig struct {
	// ImagePath is the path on disk to a supported image.
	ImagePath string
	// Text is the payload to hide. Mutually exclusive with FilePath.
	Text string
	// FilePath is the path on disk to a file whose contents are hidden instead of Text.
	FilePath string
	// OutPath is the path on disk to write the output PNG.
	OutPath string
}

// Embed hides payload in a copy of buf and returns the copy. buf itself is never modified.
// Nothing is written unless the whole frame fits.
func Embed(buf *PixelBuffer, payload []byte) (*PixelBuffer, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}
	if err := CheckCapacity(buf.CapacityBits(), FramedBits(len(payload))); err != nil {
		return nil, err
	}

	bits, err := Frame(payload)
	if err != nil {
		return nil, err
	}

	return EmbedBits(buf, bits)
}

// EmbedBits writes bits, in order, into the least-significant bits of a copy of buf's
// R, G and B channel bytes, walking pixels row by row. Channel bytes past the last bit are left as they were.
func EmbedBits(buf *PixelBuffer, bits BitStream) (*PixelBuffer, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}

	out := buf.Clone()
	next := addressor.Sequential(out.CapacityBits())
	stride := int64(out.ChannelsPerPixel)

	for _, bit := range bits {
		addr, err := next()
		if err != nil {
			return nil, &CapacityExceededError{RequiredBits: int64(len(bits)), CapacityBits: out.CapacityBits(), InnerError: err}
		}
		p, c := addrToPC(addr)
		i := p*stride + int64(c)
		out.Pix[i] = uint8(binmani.WriteTo(uint16(out.Pix[i]), 0, 1, uint16(bit&1)))
	}

	return out, nil
}

// Hide hides the text (or file contents) described by config in the image at config.ImagePath,
// and saves the result as a PNG at config.OutPath. A nil logger uses slog.Default().
func Hide(config *HideConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	// Input validation
	if len(config.ImagePath) <= 0 {
		return &InvalidFormatError{"ImagePath is empty."}
	}
	if len(config.OutPath) <= 0 {
		return &InvalidFormatError{"OutPath is empty."}
	}
	if len(config.Text) > 0 && len(config.FilePath) > 0 {
		return &InvalidFormatError{"Text and FilePath are mutually exclusive."}
	}
	if len(config.Text) <= 0 && len(config.FilePath) <= 0 {
		return &InvalidFormatError{"One of Text or FilePath must be set."}
	}

	logLvl(logger, OutputSteps, "loading image", "path", config.ImagePath)
	pixels, format, err := LoadImage(config.ImagePath)
	if err != nil {
		return err
	}
	logLvl(logger, OutputInfo, "image info",
		"format", format, "width", pixels.Width, "height", pixels.Height, "capacity_bits", pixels.CapacityBits())

	payload := []byte(config.Text)
	if len(config.FilePath) > 0 {
		logLvl(logger, OutputSteps, "reading payload file", "path", config.FilePath)
		if payload, err = os.ReadFile(config.FilePath); err != nil {
			return fmt.Errorf("reading payload file: %w", err)
		}
	}
	logLvl(logger, OutputInfo, "payload info", "bytes", len(payload), "framed_bits", FramedBits(len(payload)))
	logLvl(logger, OutputDebug, "frame header", "length", len(payload))

	logLvl(logger, OutputSteps, "embedding payload")
	encoded, err := Embed(pixels, payload)
	if err != nil {
		return err
	}

	logLvl(logger, OutputSteps, "writing image", "path", config.OutPath)
	if err = WriteImage(encoded, config.OutPath); err != nil {
		return err
	}

	logLvl(logger, OutputSteps, "done")
	return nil
}
