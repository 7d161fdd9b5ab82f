// Package qr renders obfuscated merchant tokens as QR images. The QR is
// the channel a merchant shares its token on; only the token ever leaves
// the bank, never the MID.
package qr

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"upi/pkg/errors"
)

const defaultSize = 256

// Service renders square QR PNGs of a fixed pixel size.
type Service struct {
	size int
}

func NewService(size int) *Service {
	if size <= 0 {
		size = defaultSize
	}
	return &Service{size: size}
}

// RenderToken encodes a token into a PNG image.
func (s *Service) RenderToken(token string) ([]byte, error) {
	code, err := qr.Encode(token, qr.M, qr.Auto)
	if err != nil {
		return nil, errors.Wrap(err, "encode token")
	}

	scaled, err := barcode.Scale(code, s.size, s.size)
	if err != nil {
		return nil, errors.Wrap(err, "scale barcode")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, errors.Wrap(err, "render png")
	}
	return buf.Bytes(), nil
}
