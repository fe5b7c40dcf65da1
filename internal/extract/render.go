package extract

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// forEachPage renders every page of the document at the given DPI and
// passes the PNG bytes to fn in page order.
func forEachPage(path string, dpi int, fn func(index int, image []byte) error) error {
	doc, err := fitz.New(path)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", i, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("failed to encode page %d: %w", i, err)
		}
		if err := fn(i, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
