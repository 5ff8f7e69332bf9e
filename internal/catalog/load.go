package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/mod/semver"
)

// SupportedVersion is the catalog schema version this build reads.
// Catalogs with a different major version are rejected.
const SupportedVersion = "v1.2.0"

//go:embed data/sample.json
var sampleJSON []byte

// Default returns the embedded sample catalog.
func Default() *Catalog {
	c, err := Parse(sampleJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a JSON file. An empty path yields the
// embedded sample.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog JSON.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := checkVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	return build(doc), nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("catalog schema_version %q is not a valid semantic version", v)
	}
	if semver.Major(v) != semver.Major(SupportedVersion) {
		return fmt.Errorf("catalog schema_version %s is incompatible with supported %s", v, SupportedVersion)
	}
	return nil
}
