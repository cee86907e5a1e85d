package imagepkg

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	minQRSize     = 64
	maxQRSize     = 1024
	DefaultQRSize = 320
)

// ShareQR returns a PNG QR code encoding link, so a stored export can be opened
// on another device. size is clamped to a sane range.
func ShareQR(link string, size int) ([]byte, error) {
	if link == "" {
		return nil, fmt.Errorf("qr: empty link")
	}
	switch {
	case size <= 0:
		size = DefaultQRSize
	case size < minQRSize:
		size = minQRSize
	case size > maxQRSize:
		size = maxQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	return png, nil
}
