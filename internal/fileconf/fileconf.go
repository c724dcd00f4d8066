// Package fileconf reads the YAML/JSON registry files (targets, publishers).
package fileconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads path and decodes it into out, choosing the decoder by file
// extension. Files without an extension are read as YAML, which also accepts
// JSON documents. kind names the file in error messages ("targets").
func Load(path, kind string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", kind)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", kind, err)
	}
	if err := Decode(raw, filepath.Ext(path), out); err != nil {
		return fmt.Errorf("%s file: %w", kind, err)
	}
	return nil
}

// Decode unmarshals data according to ext (".yaml", ".yml", ".json" or "").
func Decode(data []byte, ext string, out any) error {
	var fn func([]byte, any) error
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml", "":
		fn = yaml.Unmarshal
	case ".json":
		fn = json.Unmarshal
	default:
		return errors.New("format not recognized (expected YAML or JSON)")
	}
	if err := fn(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Headers trims header names and values, dropping entries where either ends up empty.
// It returns nil when nothing is left.
func Headers(in map[string]string) map[string]string {
	var out map[string]string
	for k, v := range in {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(in))
		}
		out[k] = v
	}
	return out
}
