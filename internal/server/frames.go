package server

import (
	"encoding/base64"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// DecodeDataURL decodes a browser canvas data URL (base64 JPEG or PNG)
// into an image matrix. The caller must close the returned Mat.
func DecodeDataURL(dataURL string) (*gocv.Mat, error) {
	// Format: data:image/jpeg;base64,<payload>
	_, encoded, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, fmt.Errorf("malformed data URL")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}

	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("decoded image is empty")
	}

	return &mat, nil
}
