package service

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// extractGPS reads the GPS position embedded in JPEG evidence, if any. The
// hint is best-effort; photos without EXIF data or stripped by the device
// simply produce no hint.
func extractGPS(evidence *Evidence) (lat, lon float64, ok bool) {
	if !strings.HasPrefix(strings.ToLower(evidence.ContentType), "image/jpeg") {
		return 0, 0, false
	}
	meta, err := exif.Decode(bytes.NewReader(evidence.Data))
	if err != nil {
		return 0, 0, false
	}
	lat, lon, err = meta.LatLong()
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
