package form

import (
	"strings"
)

// MaxImageBytes is the largest product image accepted for upload.
const MaxImageBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// CheckImage rejects files the upload endpoint would not accept.
func CheckImage(contentType string, size int64) error {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !allowedImageTypes[ct] {
		return FieldErrors{"image": "Please select a valid image file (jpg, jpeg, png, gif)"}
	}
	if size > MaxImageBytes {
		return FieldErrors{"image": "File size should not exceed 5MB"}
	}
	return nil
}

// ImageURL turns the path returned by the upload endpoint into an absolute URL.
func ImageURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
