package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ============================================================
// Container layout
// ============================================================

const (
	headerSize     = 6
	entrySize      = 16
	infoHeaderSize = 40

	// MaxSize is the largest side an entry can describe.
	MaxSize = 256
)

type header struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type entry struct {
	Width      uint8
	Height     uint8
	Colors     uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	BytesInRes uint32
	Offset     uint32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// dimension encodes a side length in one byte; 256 is written as 0.
func dimension(size int) uint8 {
	if size >= MaxSize {
		return 0
	}
	return uint8(size)
}

// ============================================================
// Build
// ============================================================

// Build assembles an icon container from raw RGBA buffers, images[i] holding
// sizes[i]*sizes[i] top-down pixels. Every entry is a 32bpp bitmap.
//
// Build panics if the slices disagree in length or a buffer is too short.
func Build(images [][]byte, sizes []int) []byte {
	if len(images) != len(sizes) {
		panic(fmt.Sprintf("ico: %d images for %d sizes", len(images), len(sizes)))
	}

	payloads := make([][]byte, len(images))
	for i, pix := range images {
		payloads[i] = bitmap(pix, sizes[i])
	}

	buf := new(bytes.Buffer)
	write(buf, header{Type: 1, Count: uint16(len(images))})

	offset := uint32(headerSize + entrySize*len(images))
	for i, payload := range payloads {
		write(buf, entry{
			Width:      dimension(sizes[i]),
			Height:     dimension(sizes[i]),
			Planes:     1,
			BitCount:   32,
			BytesInRes: uint32(len(payload)),
			Offset:     offset,
		})
		offset += uint32(len(payload))
	}

	for _, payload := range payloads {
		buf.Write(payload)
	}
	return buf.Bytes()
}

// bitmap returns the info header followed by bottom-up BGRA rows. The height
// field covers the XOR and AND masks, hence twice the image height.
func bitmap(pix []byte, size int) []byte {
	if size <= 0 || size > MaxSize {
		panic(fmt.Sprintf("ico: size %d out of range", size))
	}
	stride := size * 4
	if len(pix) < stride*size {
		panic(fmt.Sprintf("ico: %d bytes of pixels for a %dx%d image", len(pix), size, size))
	}

	buf := bytes.NewBuffer(make([]byte, 0, infoHeaderSize+stride*size))
	write(buf, bitmapInfoHeader{
		Size:      infoHeaderSize,
		Width:     int32(size),
		Height:    int32(size * 2),
		Planes:    1,
		BitCount:  32,
		SizeImage: uint32(stride * size),
	})

	row := make([]byte, stride)
	for y := size - 1; y >= 0; y-- {
		src := pix[y*stride : (y+1)*stride]
		for x := 0; x < stride; x += 4 {
			row[x+0] = src[x+2]
			row[x+1] = src[x+1]
			row[x+2] = src[x+0]
			row[x+3] = src[x+3]
		}
		buf.Write(row)
	}
	return buf.Bytes()
}

// write cannot fail on a bytes.Buffer with fixed-size data.
func write(buf *bytes.Buffer, data any) {
	if err := binary.Write(buf, binary.LittleEndian, data); err != nil {
		panic(err)
	}
}

// ============================================================
// Image helpers
// ============================================================

// Encode builds a container from square RGBA images.
func Encode(images []*image.RGBA) ([]byte, error) {
	pix := make([][]byte, len(images))
	sizes := make([]int, len(images))
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return nil, fmt.Errorf("image %d is %dx%d, not square", i, b.Dx(), b.Dy())
		}
		if b.Dx() < 1 || b.Dx() > MaxSize {
			return nil, fmt.Errorf("image %d size %d outside 1..%d", i, b.Dx(), MaxSize)
		}
		pix[i] = packed(img)
		sizes[i] = b.Dx()
	}
	return Build(pix, sizes), nil
}

// FromImage scales src to every requested size and encodes the results.
func FromImage(src image.Image, sizes []int) ([]byte, error) {
	images := make([]*image.RGBA, 0, len(sizes))
	for _, size := range sizes {
		if size < 1 || size > MaxSize {
			return nil, fmt.Errorf("icon size %d outside 1..%d", size, MaxSize)
		}
		images = append(images, Scale(src, size))
	}
	return Encode(images)
}

// Scale resamples src to a size x size RGBA image.
func Scale(src image.Image, size int) *image.RGBA {
	rect := image.Rect(0, 0, size, size)
	dst := image.NewRGBA(rect)
	draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Over, nil)
	return dst
}

// packed returns the pixels without stride padding or offset.
func packed(img *image.RGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && b.Min == (image.Point{}) {
		return img.Pix[:rowLen*b.Dy()]
	}
	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[start:start+rowLen]...)
	}
	return out
}
