package render

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"

	"github.com/rezonia/nfe-processor/internal/model"
)

// DANFE layouts print the access key as a Code-128C barcode.
const (
	barcodeWidth  = 400
	barcodeHeight = 50
)

// Barcode renders the 44-digit access key as a Code-128 PNG. It is a
// pure function of the digit string.
func Barcode(accessKey string) ([]byte, error) {
	if !model.ValidAccessKey(accessKey) {
		return nil, model.NewValidationError("accessKey", accessKey, "must be exactly 44 numeric digits")
	}

	code, err := code128.Encode(accessKey)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, barcodeWidth, barcodeHeight)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
