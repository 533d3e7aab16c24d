// Package client implements the native capture loop: frames are read
// from a camera, encoded as JPEG data URLs, posted to the recognition
// backend on a fixed cadence, and folded into view state.
package client

import (
	"encoding/base64"
	"fmt"

	"gocv.io/x/gocv"
)

// jpegQuality matches the browser canvas encoder setting.
const jpegQuality = 80

// EncodeFrame encodes a frame as a JPEG data URL suitable for the
// /process_frame request body.
func EncodeFrame(frame *gocv.Mat) (string, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{gocv.IMWriteJpegQuality, jpegQuality})
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}
