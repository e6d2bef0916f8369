package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/clustergo/blobstore"
)

const (
	// ManifestVersion is the current manifest schema version.
	ManifestVersion = 1

	// CurrentKey is the blob holding the manifest name of the most recently
	// committed run.
	CurrentKey = "CURRENT"
)

// Manifest describes one committed clustering run: which label files it
// produced and how the run ended.
type Manifest struct {
	Version     int        `json:"version"`
	RunID       string     `json:"run_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Format      string     `json:"format"`
	Compression string     `json:"compression"`
	Converged   bool       `json:"converged"`
	Rounds      int        `json:"rounds"`
	Files       []FileInfo `json:"files"`
}

// FileInfo describes a single exported label file.
type FileInfo struct {
	// Role is the label relation the file holds: "left", "right" or "extra".
	Role string `json:"role"`

	// Name is the blob name relative to the store root.
	Name string `json:"name"`

	// Rows is the number of labels in the file.
	Rows int64 `json:"rows"`
}

// File returns the file exported for the given role.
func (m *Manifest) File(role string) (FileInfo, bool) {
	for _, f := range m.Files {
		if f.Role == role {
			return f, true
		}
	}
	return FileInfo{}, false
}

func manifestName(runID string) string {
	return fmt.Sprintf("MANIFEST-%s.json", runID)
}

// LoadManifest resolves the CURRENT pointer and loads the manifest it names.
func LoadManifest(ctx context.Context, store blobstore.Store) (*Manifest, error) {
	pointer, err := blobstore.ReadAll(ctx, store, CurrentKey)
	if err != nil {
		return nil, fmt.Errorf("export: read %s: %w", CurrentKey, err)
	}

	data, err := blobstore.ReadAll(ctx, store, string(pointer))
	if err != nil {
		return nil, fmt.Errorf("export: read manifest %s: %w", pointer, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("export: decode manifest %s: %w", pointer, err)
	}
	if m.Version > ManifestVersion {
		return nil, fmt.Errorf("export: manifest version %d is newer than supported %d", m.Version, ManifestVersion)
	}
	return &m, nil
}
