package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// The QR payload carries the QR code id plus an HMAC so a scanned payload
// can be rejected before touching the database when it was not produced by
// this server.

func signQRCodeID(qrCodeID uuid.UUID) string {
	mac := hmac.New(sha256.New, []byte(os.Getenv("JWT_SECRET")))
	mac.Write([]byte(qrCodeID.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func QRCodePayload(qrCodeID uuid.UUID) string {
	return fmt.Sprintf("qr:%s;signature:%s", qrCodeID.String(), signQRCodeID(qrCodeID))
}

func ParseQRCodePayload(payload string) (uuid.UUID, error) {
	parts := strings.Split(payload, ";")
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "qr:") || !strings.HasPrefix(parts[1], "signature:") {
		return uuid.Nil, fmt.Errorf("invalid QR data format")
	}

	qrCodeID, err := uuid.Parse(strings.TrimPrefix(parts[0], "qr:"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid QR code ID format")
	}

	signature := strings.TrimPrefix(parts[1], "signature:")
	expected := signQRCodeID(qrCodeID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return uuid.Nil, fmt.Errorf("QR signature mismatch")
	}

	return qrCodeID, nil
}
