package health

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func inspectFile(path string) *FileInfo {
	info := &FileInfo{Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			info.Exists = false
			return info
		}
		info.ParseError = err.Error()
		return info
	}

	info.Exists = true
	info.FileSizeBytes = stat.Size()
	info.UpdatedAt = stat.ModTime().Format(time.RFC3339)
	return info
}

func inspectConfigFile(path string) *FileInfo {
	info := inspectFile(path)
	if !info.Exists || info.ParseError != "" {
		return info
	}

	data, err := os.ReadFile(path)
	if err != nil {
		info.ParseError = err.Error()
		return info
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		info.ParseError = err.Error()
	}
	return info
}
