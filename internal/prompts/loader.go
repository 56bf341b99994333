// Package prompts serves the embedded LLM prompt catalogs. Each catalog is a
// JSON file mapping prompt keys to template text with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	mu       sync.Mutex
	catalogs = make(map[string]map[string]string)
)

// Get returns the template stored under key in the named catalog file.
func Get(filename, key string) (string, error) {
	catalog, err := load(filename)
	if err != nil {
		return "", err
	}
	template, ok := catalog[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for prompts the pipeline cannot run without.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format substitutes {{.Key}} placeholders with the given values. Placeholders
// with no matching value are left in place.
func Format(template string, data map[string]string) string {
	out := template
	for key, value := range data {
		out = strings.ReplaceAll(out, "{{."+key+"}}", value)
	}
	return out
}

// List returns the sorted prompt keys available in a catalog file.
func List(filename string) ([]string, error) {
	catalog, err := load(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearCache drops the parsed catalogs. Useful for testing.
func ClearCache() {
	mu.Lock()
	catalogs = make(map[string]map[string]string)
	mu.Unlock()
}

// load parses a catalog file once and caches it.
func load(filename string) (map[string]string, error) {
	mu.Lock()
	defer mu.Unlock()

	if catalog, ok := catalogs[filename]; ok {
		return catalog, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var catalog map[string]string
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	catalogs[filename] = catalog
	return catalog, nil
}
