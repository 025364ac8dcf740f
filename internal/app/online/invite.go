package online

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// InviteScheme prefixes deep links that open the join screen.
const InviteScheme = "buttonblitz://join/"

// DefaultQRSize is the edge length in pixels of invite QR images.
const DefaultQRSize = 256

// InviteLink returns the deep link for a room code.
func InviteLink(code string) (string, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return "", err
	}
	return InviteScheme + code, nil
}

// InviteQR renders the invite link for code as a PNG.
func InviteQR(code string, size int) (string, []byte, error) {
	link, err := InviteLink(code)
	if err != nil {
		return "", nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode invite qr: %w", err)
	}
	return link, png, nil
}
