package catalog

import (
	"regexp"
	"strings"
)

var (
	driveFileRe = regexp.MustCompile(`https?://drive\.google\.com/file/d/([^/?#]+)/?`)
	driveIDQSRe = regexp.MustCompile(`[?&]id=([^&]+)`)
)

const driveDirectURL = "https://drive.google.com/uc?export=view&id="

// DriveFileID extracts a Drive file id from a sharing link, a "gdrive:" reference or a bare id.
func DriveFileID(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}

	if len(v) >= len("gdrive:") && strings.EqualFold(v[:len("gdrive:")], "gdrive:") {
		id := strings.TrimSpace(v[len("gdrive:"):])
		return id, id != ""
	}
	if m := driveFileRe.FindStringSubmatch(v); m != nil {
		return m[1], true
	}
	if m := driveIDQSRe.FindStringSubmatch(v); m != nil {
		return m[1], true
	}
	// bare Drive ids are long opaque tokens
	if len(v) >= 20 && !strings.ContainsAny(v, "/ ") && !strings.Contains(v, "http") {
		return v, true
	}
	return "", false
}

// DirectImageURL turns Drive references into a directly fetchable URL; other values pass through.
func DirectImageURL(value string) string {
	if id, ok := DriveFileID(value); ok {
		return driveDirectURL + id
	}
	return strings.TrimSpace(value)
}
