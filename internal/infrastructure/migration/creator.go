package migration

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"
)

// The schema is PostgreSQL only; golang-migrate runs each file in one
// round trip, so the explicit transaction keeps a failed file from leaving
// half a table behind.
var migrationTemplate = template.Must(template.New("migration").Parse(
	`-- Migration: {{.File.Name}}{{if eq .Direction "down"}} (Rollback){{end}}
-- Created: {{.File.Timestamp}}
-- Description: {{if eq .Direction "down"}}Rollback for {{end}}{{.File.Description}}

BEGIN;

-- Write your {{if eq .Direction "down"}}DOWN{{else}}UP{{end}} migration SQL here

COMMIT;
`))

// MigrationFile is a numbered up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// MigrationEntry is one migration found in a source, with the version
// parsed from its file name
type MigrationEntry struct {
	Version uint
	Name    string
}

// CreateMigration writes the next numbered migration pair into dir
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListEntries(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	version := fmt.Sprintf("%06d", next)
	base := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	if err := writeMigration(mf.UpPath, "up", mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeMigration(mf.DownPath, "down", mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeMigration(path, direction string, mf *MigrationFile) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	err = migrationTemplate.Execute(f, struct {
		File      *MigrationFile
		Direction string
	}{mf, direction})
	return errors.Join(err, f.Close())
}

// sanitizeName lowercases name and joins its alphanumeric runs with
// underscores
func sanitizeName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, w)
	}
	return strings.Join(slices.DeleteFunc(words, func(w string) bool { return w == "" }), "_")
}

// ListEntries returns the up migrations in fsys ordered by version. Files
// whose name does not start with a number are ignored. A missing source
// lists as empty.
func ListEntries(fsys fs.FS) ([]MigrationEntry, error) {
	dirents, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var entries []MigrationEntry
	for _, d := range dirents {
		base, ok := strings.CutSuffix(d.Name(), ".up.sql")
		if d.IsDir() || !ok {
			continue
		}
		prefix, _, _ := strings.Cut(base, "_")
		v, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil {
			continue
		}
		entries = append(entries, MigrationEntry{Version: uint(v), Name: base})
	}
	slices.SortFunc(entries, func(a, b MigrationEntry) int { return cmp.Compare(a.Version, b.Version) })
	return entries, nil
}
