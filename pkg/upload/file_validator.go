package upload

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxFileSize caps avatar and certificate attachments.
const MaxFileSize = 10 << 20

// Kind selects which whitelist a file is checked against.
type Kind string

const (
	KindAvatar      Kind = "avatar"
	KindCertificate Kind = "certificate"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// Magic byte signatures for allowed file types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},
}

var allowedExtensions = map[Kind]map[string]bool{
	KindAvatar: {
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	},
	KindCertificate: {
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".pdf":  true,
	},
}

var strictMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

// ValidateFile performs the 3-layer check used before any multipart upload:
// extension whitelist, magic bytes, and detected MIME type.
func ValidateFile(kind Kind, filename string, data []byte) FileValidationResult {
	detectedMIME := http.DetectContentType(data)
	result := FileValidationResult{
		DetectedMIME: detectedMIME,
	}

	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}
	if len(data) > MaxFileSize {
		result.Error = "file is larger than 10 MB"
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !allowedExtensions[kind][ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	if !strictMIMETypes[detectedMIME] {
		result.Error = "MIME type not allowed: " + detectedMIME
		return result
	}

	result.Valid = true
	return result
}

// Check is ValidateFile reduced to an error.
func Check(kind Kind, filename string, data []byte) error {
	if res := ValidateFile(kind, filename, data); !res.Valid {
		return errors.New(res.Error)
	}
	return nil
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}

	for _, sig := range signatures {
		if len(data) >= len(sig) && bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// IsImage reports whether the content sniffs as an image.
func IsImage(data []byte) bool {
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

// SanitizeFilename keeps ASCII alphanumerics, '-' and '_' in the base name.
func SanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	baseName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	baseName = strings.ReplaceAll(baseName, " ", "_")

	var result strings.Builder
	for _, r := range baseName {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}

	if result.Len() == 0 {
		return "file" + ext
	}
	return result.String() + ext
}
