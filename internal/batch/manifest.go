package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one produced file set in the output manifest.
// Paths are relative to the manifest's directory.
type ManifestEntry struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Sidecar   string `json:"sidecar,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Objects   int    `json:"objects"`
	Failures  int    `json:"failed_objects,omitempty"`
	Warnings  int    `json:"warnings,omitempty"`
}

// WriteManifest writes the successful results to path as JSON.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		e := ManifestEntry{
			Input:    r.Input,
			Output:   relTo(dir, r.Output),
			Objects:  r.Objects,
			Failures: r.Failures,
			Warnings: r.Warnings,
		}
		if r.Sidecar != "" {
			e.Sidecar = relTo(dir, r.Sidecar)
		}
		if r.Thumbnail != "" {
			e.Thumbnail = relTo(dir, r.Thumbnail)
		}
		entries = append(entries, e)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func relTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
