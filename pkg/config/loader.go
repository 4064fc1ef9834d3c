package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then SUDOKUD_* environment variables.
// The result is not validated; flags may still override it.
func Load(path string) (*ServerConfiguration, error) {
	cfg := Default()
	if path != "" {
		if err := MergeFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := LoadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func MergeFile(cfg *ServerConfiguration, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	if err := ParseYAML(data, cfg); err != nil {
		return fmt.Errorf("%w in file %s: %w", ErrInvalidYAML, path, err)
	}
	recordFileSources(cfg, data)
	return nil
}

// ParseYAML decodes data onto cfg, rejecting unknown keys.
func ParseYAML(data []byte, cfg *ServerConfiguration) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ToYAML serialises cfg in the file format MergeFile reads.
func ToYAML(cfg *ServerConfiguration) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// recordFileSources marks every key present in the file as file-sourced.
func recordFileSources(cfg *ServerConfiguration, data []byte) {
	var root yaml.Node
	if yaml.Unmarshal(data, &root) != nil || len(root.Content) == 0 {
		return
	}
	walkKeys(root.Content[0], "", func(key string) {
		cfg.SetSource(key, SourceFile)
	})
}

func walkKeys(n *yaml.Node, prefix string, fn func(string)) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		if child := n.Content[i+1]; child.Kind == yaml.MappingNode {
			walkKeys(child, key, fn)
			continue
		}
		fn(key)
	}
}
