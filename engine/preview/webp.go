package preview

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/HugoSmits86/nativewebp"
)

// EncodeWebP writes img to w as a lossless WebP image.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}
	return nil
}

// WriteWebP encodes img into the file at path, replacing any existing file.
//
// Parameters:
//   - path: destination file
//   - img: the image
//
// Returns:
//   - error: error if the file cannot be created or encoding fails
func WriteWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeWebP(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
