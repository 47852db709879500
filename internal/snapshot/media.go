package snapshot

import (
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".tiff": {}, ".tif": {},
	".heic": {}, ".heif": {}, ".gif": {}, ".bmp": {}, ".webp": {},
	".raw": {}, ".cr2": {}, ".nef": {}, ".dng": {}, ".arw": {},
	".orf": {}, ".raf": {}, ".rw2": {},
}

var videoExtensions = map[string]struct{}{
	".mov": {}, ".mp4": {}, ".avi": {}, ".mkv": {}, ".m4v": {},
	".mpeg": {}, ".mpg": {}, ".wmv": {},
}

// IsImageExtension reports whether ext (with leading dot, any case) is a
// recognized image format.
func IsImageExtension(ext string) bool {
	_, ok := imageExtensions[strings.ToLower(ext)]
	return ok
}

// IsVideoExtension reports whether ext is a recognized video format.
func IsVideoExtension(ext string) bool {
	_, ok := videoExtensions[strings.ToLower(ext)]
	return ok
}

// IsMediaFile reports whether the path has a recognized media extension.
func IsMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return IsImageExtension(ext) || IsVideoExtension(ext)
}
