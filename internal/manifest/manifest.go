// Package manifest generates the web app manifest. An existing
// manifest.json in the project is merged over the generated defaults;
// user fields always win, and unknown fields survive the round trip.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Icon is one manifest icon entry.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest models the subset of the web app manifest that generation
// fills in. Merging works on raw maps, so fields outside this struct
// are preserved.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description,omitempty"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope,omitempty"`
	Display         string `json:"display"`
	ThemeColor      string `json:"theme_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	Icons           []Icon `json:"icons,omitempty"`
}

// Default returns the generated manifest for an app name.
func Default(name, shortName string) *Manifest {
	if shortName == "" {
		shortName = name
	}
	return &Manifest{
		Name:            name,
		ShortName:       shortName,
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		ThemeColor:      "#ffffff",
		BackgroundColor: "#ffffff",
		Icons: []Icon{
			{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/icons/icon-512.png", Sizes: "512x512", Type: "image/png"},
			{Src: "/icons/icon-512.png", Sizes: "512x512", Type: "image/png", Purpose: "maskable"},
		},
	}
}

// Merge overlays the generated defaults with an existing manifest file.
// Comments and trailing commas in the existing file are tolerated.
// Missing file means no overrides. Returns the merged JSON object.
func Merge(existingPath string, defaults *Manifest) (map[string]json.RawMessage, error) {
	merged := make(map[string]json.RawMessage)
	base, err := json.Marshal(defaults)
	if err != nil {
		return nil, fmt.Errorf("encode manifest defaults: %w", err)
	}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, fmt.Errorf("decode manifest defaults: %w", err)
	}

	data, err := os.ReadFile(existingPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return merged, nil
		}
		return nil, fmt.Errorf("read existing manifest: %w", err)
	}

	existing := make(map[string]json.RawMessage)
	if err := json.Unmarshal(jsonc.ToJSON(data), &existing); err != nil {
		return nil, fmt.Errorf("parse existing manifest %s: %w", existingPath, err)
	}
	for k, v := range existing {
		merged[k] = v
	}
	return merged, nil
}

// Write renders the merged manifest and writes it atomically.
func Write(path string, m map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
