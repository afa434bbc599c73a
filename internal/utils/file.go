package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// FileExtension returns the file extension without the dot, lowercased
func FileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// IsImageFile checks if a file has a supported image extension
func IsImageFile(filename string) bool {
	return imageExtensions[FileExtension(filename)]
}

// ListImageFiles recursively lists all image files in a directory
func ListImageFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// OutputFilename builds the output path for one augmented variant of an
// input file. The variant index is appended only when more than one variant
// is produced per input.
func OutputFilename(inputFile, outputDir, prefix, suffix, format string, variant, variants int) string {
	baseName := filepath.Base(inputFile)
	name := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	if format == "" {
		format = FileExtension(inputFile)
		if format == "" {
			format = "jpg"
		}
	}

	if variants > 1 {
		name = fmt.Sprintf("%s%s%s_%03d.%s", prefix, name, suffix, variant, format)
	} else {
		name = fmt.Sprintf("%s%s%s.%s", prefix, name, suffix, format)
	}
	return filepath.Join(outputDir, name)
}
