package bmp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
)

const (
	// Magic is the two-byte signature at the start of every BMP file.
	Magic = "BM"

	fileHeaderSize = 14
	infoHeaderSize = 40

	// PixelDataOffset is where pixel rows start: file header + info header.
	PixelDataOffset = fileHeaderSize + infoHeaderSize

	bitsPerPixel = 24
	colorPlanes  = 1

	// pixelsPerMeter is the horizontal and vertical resolution written into
	// the info header. 2835 pixels/meter is approximately 72 DPI.
	pixelsPerMeter = 2835
)

// FileHeader is the 14-byte BMP file header, encoded little-endian.
type FileHeader struct {
	Magic      [2]byte
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32
}

// InfoHeader is the 40-byte BITMAPINFOHEADER variant, encoded little-endian.
type InfoHeader struct {
	HeaderSize      uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// RowSize returns the byte length of one pixel row: width*3 bytes of BGR
// triples, padded up to the next multiple of 4.
func RowSize(width int) int {
	return (width*3 + 3) &^ 3
}

// FileSize returns the total encoded byte length of an image of the given
// dimensions, headers included.
func FileSize(width, height int) int {
	return PixelDataOffset + RowSize(width)*height
}

// Image is an uncompressed 24-bit bitmap held in memory. Pixels are stored
// the way the file format stores them: bottom-up, row-major, 3 bytes per
// pixel in blue-green-red order, each row padded to a 4-byte boundary with
// zero bytes.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// New returns a zero-filled (black) image of the given dimensions.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]byte, RowSize(width)*height),
	}
}

// NewNoise returns an image whose color channels are filled with uniform
// random bytes drawn from rng. Row padding bytes stay zero.
func NewNoise(width, height int, rng *rand.Rand) *Image {
	img := New(width, height)
	rowSize := RowSize(width)
	for y := 0; y < height; y++ {
		row := img.Pixels[y*rowSize : y*rowSize+width*3]
		rng.Read(row)
	}
	return img
}

// SetPixel sets the pixel at (x, y) in file coordinates (row 0 is the bottom
// row) to the given blue, green, and red channel values.
func (m *Image) SetPixel(x, y int, b, g, r byte) {
	offset := y*RowSize(m.Width) + x*3
	m.Pixels[offset] = b
	m.Pixels[offset+1] = g
	m.Pixels[offset+2] = r
}

// Encode writes the image to w as a complete BMP file. The declared file size
// field always matches the number of bytes written.
func (m *Image) Encode(w io.Writer) error {
	rowSize := RowSize(m.Width)
	if len(m.Pixels) != rowSize*m.Height {
		return fmt.Errorf("pixel buffer is %d bytes, want %d for %dx%d", len(m.Pixels), rowSize*m.Height, m.Width, m.Height)
	}

	fileHeader := FileHeader{
		FileSize:   uint32(FileSize(m.Width, m.Height)),
		DataOffset: PixelDataOffset,
	}
	copy(fileHeader.Magic[:], Magic)

	infoHeader := InfoHeader{
		HeaderSize:      infoHeaderSize,
		Width:           int32(m.Width),
		Height:          int32(m.Height),
		Planes:          colorPlanes,
		BitsPerPixel:    bitsPerPixel,
		Compression:     0,
		ImageSize:       uint32(rowSize * m.Height),
		XPixelsPerMeter: pixelsPerMeter,
		YPixelsPerMeter: pixelsPerMeter,
	}

	if err := binary.Write(w, binary.LittleEndian, &fileHeader); err != nil {
		return fmt.Errorf("failed to write file header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &infoHeader); err != nil {
		return fmt.Errorf("failed to write info header: %w", err)
	}
	if _, err := w.Write(m.Pixels); err != nil {
		return fmt.Errorf("failed to write pixel data: %w", err)
	}
	return nil
}

// WriteFile encodes the image to path, creating or truncating the file.
func (m *Image) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
