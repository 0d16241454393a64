package split

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"EnJaCorpus/internal/storage"
)

// ManifestFileName is written next to the shards.
const ManifestFileName = "manifest.json"

// ManifestVersion is bumped whenever the manifest layout changes.
const ManifestVersion = 1

var ErrManifestCorrupt = errors.New("manifest checksum verification failed")

// Manifest records what a Splitter wrote.
type Manifest struct {
	Version    int              `json:"version"`
	CreatedAt  time.Time        `json:"created_at"`
	Seed       uint64           `json:"seed,string"`
	Ratio      Ratio            `json:"ratio"`
	ShardSize  int              `json:"shard_size"`
	TotalPairs int              `json:"total_pairs"`
	Splits     []SplitMeta      `json:"splits"`
	Checksum   storage.Checksum `json:"checksum"`
}

// SplitMeta describes one split.
type SplitMeta struct {
	Name    string      `json:"name"`
	Pairs   int         `json:"pairs"`
	Divided bool        `json:"divided"`
	Shards  []ShardMeta `json:"shards"`
}

// ShardMeta describes one pair of line-aligned shard files.
type ShardMeta struct {
	Index int      `json:"index"`
	Pairs int      `json:"pairs"`
	EN    FileMeta `json:"en"`
	JA    FileMeta `json:"ja"`
}

// FileMeta describes a single shard file, relative to the output directory.
type FileMeta struct {
	Name     string           `json:"name"`
	Size     int64            `json:"size"`
	Checksum storage.Checksum `json:"checksum"`
}

// Split returns the split with the given name.
func (m *Manifest) Split(name string) (SplitMeta, bool) {
	for _, s := range m.Splits {
		if s.Name == name {
			return s, true
		}
	}
	return SplitMeta{}, false
}

// MarshalManifest serializes a manifest to JSON and computes its checksum.
// The checksum is computed over the JSON with the checksum field set to empty.
func MarshalManifest(m *Manifest) ([]byte, error) {
	checksum, err := computeManifestChecksum(m)
	if err != nil {
		return nil, fmt.Errorf("compute manifest checksum: %w", err)
	}
	m.Checksum = checksum

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// UnmarshalManifest deserializes a manifest from JSON and verifies its checksum.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	saved := m.Checksum
	computed, err := computeManifestChecksum(&m)
	if err != nil {
		return nil, fmt.Errorf("compute manifest checksum for verification: %w", err)
	}
	if computed != saved {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrManifestCorrupt, saved, computed)
	}
	return &m, nil
}

// ReadManifest loads and verifies the manifest in dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return UnmarshalManifest(data)
}

// VerifyShards checks every shard file listed in m against its checksum.
func VerifyShards(dir string, m *Manifest) error {
	for _, s := range m.Splits {
		for _, sh := range s.Shards {
			for _, f := range []FileMeta{sh.EN, sh.JA} {
				if err := storage.VerifyFileChecksum(filepath.Join(dir, f.Name), f.Checksum); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func computeManifestChecksum(m *Manifest) (storage.Checksum, error) {
	saved := m.Checksum
	m.Checksum = ""
	defer func() { m.Checksum = saved }()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal for checksum: %w", err)
	}
	return storage.ComputeChecksum(data), nil
}
