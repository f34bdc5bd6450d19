package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Pair is a matched up/down migration file pair on disk. Versions are
// sequential (000001, 000002, ...), matching the checked-in files.
type Pair struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// List returns the migration pairs under dir ordered by version.
// Files that do not follow the <version>_<name>.up.sql layout are
// ignored.
func List(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var pairs []Pair
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), upSuffix)
		sep := strings.Index(base, "_")
		if sep <= 0 {
			continue
		}
		version, err := strconv.ParseUint(base[:sep], 10, 32)
		if err != nil {
			continue
		}
		pairs = append(pairs, Pair{
			Version:  uint(version),
			Name:     base[sep+1:],
			UpPath:   filepath.Join(dir, entry.Name()),
			DownPath: filepath.Join(dir, base+downSuffix),
		})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Version < pairs[j].Version })
	return pairs, nil
}

// NextVersion returns one past the highest version under dir. An empty
// or missing directory starts the sequence at 1.
func NextVersion(dir string) (uint, error) {
	pairs, err := List(dir)
	if err != nil {
		return 0, err
	}
	var highest uint
	for _, p := range pairs {
		if p.Version > highest {
			highest = p.Version
		}
	}
	return highest + 1, nil
}

// Create writes an empty up/down pair under dir using the next
// sequential version and a snake_case slug of name. The description
// becomes the header comment of the up file.
func Create(dir, name, description string) (*Pair, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if description == "" {
		description = name
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}
	version, err := NextVersion(dir)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%06d_%s", version, slug)
	pair := &Pair{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+upSuffix),
		DownPath: filepath.Join(dir, base+downSuffix),
	}

	up := fmt.Sprintf("-- %s\n\n", description)
	if err := os.WriteFile(pair.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", pair.UpPath, err)
	}

	down := fmt.Sprintf("-- Revert %s.\n\n", slug)
	if err := os.WriteFile(pair.DownPath, []byte(down), 0o644); err != nil {
		_ = os.Remove(pair.UpPath)
		return nil, fmt.Errorf("write %s: %w", pair.DownPath, err)
	}

	return pair, nil
}

// slugify lowercases name and collapses separators to single
// underscores, dropping anything else.
func slugify(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pending = true
		}
	}
	return b.String()
}
