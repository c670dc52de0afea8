package energy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadProfiles reads a list of profiles from a YAML or JSON file.
func LoadProfiles(path string) ([]Profile, error) {
	var out []Profile
	if err := readFile(path, &out); err != nil {
		return nil, fmt.Errorf("energy profiles: %w", err)
	}
	return out, nil
}

// LoadSamples reads historical samples from a YAML or JSON file.
func LoadSamples(path string) ([]Sample, error) {
	var out []Sample
	if err := readFile(path, &out); err != nil {
		return nil, fmt.Errorf("energy samples: %w", err)
	}
	return out, nil
}

// readFile decodes path with the YAML parser, which also accepts JSON.
func readFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}
