package services

import (
	"context"
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// CertificateEncoder turns certificate text into a shareable image reference
type CertificateEncoder interface {
	// Method Encode renders "text" and returns a URL that can be stored and shown to the user.
	//
	// If rendering fails, the error will be returned together with an empty string.
	Encode(ctx context.Context, text string) (string, error)
}

const qrCodeSize = 256

type qrCertificateEncoder struct{}

// NewQRCertificateEncoder creates an encoder that renders certificates as PNG QR code data URLs
func NewQRCertificateEncoder() *qrCertificateEncoder {
	return &qrCertificateEncoder{}
}

// Encode renders text as a QR code and returns it as a data:image/png;base64 URL
func (e *qrCertificateEncoder) Encode(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	png, err := qrcode.Encode(text, qrcode.Medium, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode certificate qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
