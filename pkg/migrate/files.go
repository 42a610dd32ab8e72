package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	fileNameRe    = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	unsafeNameRe  = regexp.MustCompile(`[^a-z0-9]+`)
	createTableRe = regexp.MustCompile(`(?i)CREATE TABLE IF NOT EXISTS\s+([a-z_]+)`)
	dropTableRe   = regexp.MustCompile(`(?i)DROP TABLE IF EXISTS\s+([a-z_]+)`)
)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

// CreateSQLMigration writes an empty <version>_<name>.sql file into dir and
// returns its path. The version is now in UTC.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := strings.Trim(unsafeNameRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	full := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", now.UTC().Format("20060102150405"), slug))
	body := fmt.Sprintf("%s\n-- %s\n\n%s\n", upMarker, slug, downMarker)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("write migration %q: %w", full, err)
	}
	return full, nil
}

// Validate checks every .sql file in fsys: goose naming, unique versions, both
// direction markers, and that each table created on the way up is dropped on
// the way down.
func Validate(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	seen := map[string]string{}
	for _, name := range names {
		m := fileNameRe.FindStringSubmatch(path.Base(name))
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		if err := validateBody(string(raw)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return nil
}

func validateBody(sql string) error {
	up := strings.Index(sql, upMarker)
	down := strings.Index(sql, downMarker)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", upMarker)
	case down < 0:
		return fmt.Errorf("missing %q", downMarker)
	case down < up:
		return fmt.Errorf("%q must come before %q", upMarker, downMarker)
	}

	dropped := map[string]bool{}
	for _, m := range dropTableRe.FindAllStringSubmatch(sql[down:], -1) {
		dropped[strings.ToLower(m[1])] = true
	}
	for _, m := range createTableRe.FindAllStringSubmatch(sql[up:down], -1) {
		if !dropped[strings.ToLower(m[1])] {
			return fmt.Errorf("table %s is created but never dropped", m[1])
		}
	}
	return nil
}
