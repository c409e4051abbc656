package payment

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 300

// QRDataURI renders an EMVCo payload as a PNG data URI. An empty payload yields "".
func QRDataURI(payload string) (string, error) {
	if payload == "" {
		return "", nil
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
