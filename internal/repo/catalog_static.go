package repo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// presetFile is the YAML layout of a catalog document: two lists of labels.
type presetFile struct {
	Destinations []string `yaml:"destinations"`
	Activities   []string `yaml:"activities"`
}

// staticCatalogRepo serves the catalog from a parsed YAML document.
// It is used when no database is configured.
type staticCatalogRepo struct {
	destinations []catalogEntry
	activities   []catalogEntry
}

// ParseCatalogYAML decodes a catalog document and returns a read-only
// CatalogRepo over it. Labels must be non-empty and unique by slug.
func ParseCatalogYAML(data []byte) (CatalogRepo, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("repo: catalog document is empty")
	}
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("repo: decode catalog: %w", err)
	}
	dests, err := toEntries("destinations", f.Destinations)
	if err != nil {
		return nil, err
	}
	acts, err := toEntries("activities", f.Activities)
	if err != nil {
		return nil, err
	}
	return &staticCatalogRepo{destinations: dests, activities: acts}, nil
}

// LoadCatalogFile reads a catalog YAML document from disk.
func LoadCatalogFile(path string) (CatalogRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repo: read %s: %w", path, err)
	}
	r, err := ParseCatalogYAML(data)
	if err != nil {
		return nil, fmt.Errorf("repo: %s: %w", path, err)
	}
	return r, nil
}

func (r *staticCatalogRepo) ListDestinations(_ context.Context, prefix string, p domain.PaginationParams) ([]domain.Destination, int64, error) {
	matches := filterPrefix(r.destinations, prefix)
	start, end := p.Window(len(matches))
	out := make([]domain.Destination, 0, end-start)
	for _, e := range matches[start:end] {
		out = append(out, domain.Destination(e))
	}
	return out, int64(len(matches)), nil
}

func (r *staticCatalogRepo) ListActivities(_ context.Context, prefix string, p domain.PaginationParams) ([]domain.Activity, int64, error) {
	matches := filterPrefix(r.activities, prefix)
	start, end := p.Window(len(matches))
	out := make([]domain.Activity, 0, end-start)
	for _, e := range matches[start:end] {
		out = append(out, domain.Activity(e))
	}
	return out, int64(len(matches)), nil
}

func (r *staticCatalogRepo) GetActivity(_ context.Context, slug string) (domain.Activity, error) {
	for _, e := range r.activities {
		if e.Slug == slug {
			return domain.Activity(e), nil
		}
	}
	return domain.Activity{}, fmt.Errorf("repo.CatalogRepo.GetActivity: %w", domain.ErrNotFound)
}

func toEntries(section string, labels []string) ([]catalogEntry, error) {
	seen := make(map[string]bool, len(labels))
	out := make([]catalogEntry, 0, len(labels))
	for i, label := range labels {
		name := strings.TrimSpace(label)
		slug := domain.Slugify(name)
		if slug == "" {
			return nil, fmt.Errorf("repo: catalog %s[%d]: label is empty", section, i)
		}
		if seen[slug] {
			return nil, fmt.Errorf("repo: catalog %s[%d]: duplicate entry %q", section, i, name)
		}
		seen[slug] = true
		out = append(out, catalogEntry{Slug: slug, Name: name})
	}
	return out, nil
}

func filterPrefix(entries []catalogEntry, prefix string) []catalogEntry {
	prefix = strings.ToLower(prefix)
	if prefix == "" {
		return entries
	}
	var out []catalogEntry
	for _, e := range entries {
		if strings.HasPrefix(strings.ToLower(e.Name), prefix) {
			out = append(out, e)
		}
	}
	return out
}
