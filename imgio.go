package stegtext

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Primary methods

// LoadImage decodes the image at imgPath into a 3-channel RGB buffer.
// It also returns the name of the format the file was decoded as.
func LoadImage(imgPath string) (pixels *PixelBuffer, format string, err error) {
	imgFile, err := os.Open(imgPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening image: %w", err)
	}

	defer func() {
		if cerr := imgFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return DecodeImage(imgFile)
}

// DecodeImage decodes a PNG, JPEG, GIF, BMP or WebP stream into a 3-channel RGB buffer.
func DecodeImage(r io.Reader) (*PixelBuffer, string, error) {
	return DecodeImageLimit(r, 0)
}

// DecodeImageLimit is DecodeImage with a cap on the pixel count declared by the image header.
// An image over maxPixels fails with *ImageTooLargeError before its pixel data is decoded.
// A non-positive maxPixels disables the check.
func DecodeImageLimit(r io.Reader, maxPixels int64) (*PixelBuffer, string, error) {
	if maxPixels > 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, "", fmt.Errorf("reading image: %w", err)
		}

		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding image: %w", err)
		}
		if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
			return nil, "", &ImageTooLargeError{Width: cfg.Width, Height: cfg.Height, MaxPixels: maxPixels}
		}
		r = bytes.NewReader(data)
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return ImageToPixels(img), format, nil
}

// WriteImage encodes pixels losslessly as a PNG at outPath.
func WriteImage(pixels *PixelBuffer, outPath string) (err error) {
	var b bytes.Buffer
	if err = EncodePNG(&b, pixels); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", outPath, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = b.WriteTo(f)
	return err
}

// EncodePNG writes pixels to w as a PNG. Lossless formats are the only ones that keep the hidden bits.
func EncodePNG(w io.Writer, pixels *PixelBuffer) error {
	img, err := PixelsToImage(pixels)
	if err != nil {
		return err
	}

	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err = encoder.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// ImageToPixels converts img to a 3-channel RGB buffer, dropping alpha without
// premultiplying it into the colour channels.
func ImageToPixels(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := &PixelBuffer{Width: w, Height: h, ChannelsPerPixel: rgbChannels, Pix: make([]uint8, w*h*rgbChannels)}

	// Each colour model with a direct byte layout is copied as-is
	switch simg := img.(type) {
	case *image.NRGBA:
		copyRGB(pixels, simg.Pix, simg.Stride, simg.PixOffset(bounds.Min.X, bounds.Min.Y), 4)
		return pixels
	case *image.RGBA:
		if simg.Opaque() {
			copyRGB(pixels, simg.Pix, simg.Stride, simg.PixOffset(bounds.Min.X, bounds.Min.Y), 4)
			return pixels
		}
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pixels.Pix[i], pixels.Pix[i+1], pixels.Pix[i+2] = c.R, c.G, c.B
			i += rgbChannels
		}
	}
	return pixels
}

// PixelsToImage builds an NRGBA image from pixels. A fourth channel, if present, is kept as alpha;
// otherwise every pixel is opaque.
func PixelsToImage(pixels *PixelBuffer) (*image.NRGBA, error) {
	if err := pixels.validate(); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, pixels.Width, pixels.Height))
	for p := 0; p < pixels.Width*pixels.Height; p++ {
		src := pixels.Pix[p*pixels.ChannelsPerPixel:]
		dst := img.Pix[p*4 : p*4+4]
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 0xff
		if pixels.ChannelsPerPixel > rgbChannels {
			dst[3] = src[rgbChannels]
		}
	}
	return img, nil
}

// Helper functions

func copyRGB(pixels *PixelBuffer, pix []uint8, stride, offset, srcChannels int) {
	i := 0
	for y := 0; y < pixels.Height; y++ {
		row := pix[offset+y*stride:]
		for x := 0; x < pixels.Width; x++ {
			copy(pixels.Pix[i:i+rgbChannels], row[x*srcChannels:x*srcChannels+rgbChannels])
			i += rgbChannels
		}
	}
}
