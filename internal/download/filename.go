package download

import (
	"mime"
	"strings"
)

var unsafeFilenameChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// SanitizeFilename replaces path separators and drive markers so name stays
// inside the download directory.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(unsafeFilenameChars.Replace(name))
	switch name {
	case "", ".", "..":
		return ""
	}
	return name
}

// ValidAudioFilename reports whether the backend will serve filename.
func ValidAudioFilename(filename string) bool {
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.Contains(filename, "..") || strings.HasPrefix(filename, "/") {
		return false
	}
	return true
}

// filenameFromDisposition returns the sanitized filename parameter of a
// Content-Disposition header, or empty when absent.
func filenameFromDisposition(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return SanitizeFilename(params["filename"])
}
