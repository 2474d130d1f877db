package verify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture holds the seed rows for a differential run, keyed by table.
//
//	rows:
//	  emp:
//	    - {id: 1, name: "ann", region: "east"}
//	    - {id: 2, name: null, region: "west"}
type Fixture struct {
	Rows map[string][]map[string]any `yaml:"rows"`
}

// LoadFixture parses a YAML fixture document.
func LoadFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// LoadFixtureFile reads and parses a fixture file.
func LoadFixtureFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return LoadFixture(data)
}
