package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ImportProfile represents one named import configuration from the
// YAML file: a set of certificate sources to convert into one catalog.
type ImportProfile struct {
	Name        string   `yaml:"name"`
	Sources     []string `yaml:"sources,omitempty"`
	Passwords   []string `yaml:"passwords,omitempty"`
	SeedMozilla bool     `yaml:"seedMozilla,omitempty"`
}

// ProfilesYAML represents the full YAML structure.
type ProfilesYAML struct {
	Profiles []ImportProfile `yaml:"profiles"`
}

// LoadImportProfiles loads import profiles from the specified YAML
// file. Every profile must be named and must have at least one source
// (a path or the embedded Mozilla bundle).
func LoadImportProfiles(path string) ([]ImportProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var yamlConfig ProfilesYAML
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(yamlConfig.Profiles))
	for _, p := range yamlConfig.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("%s: profile without a name", path)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%s: duplicate profile %q", path, p.Name)
		}
		seen[p.Name] = true
		if len(p.Sources) == 0 && !p.SeedMozilla {
			return nil, fmt.Errorf("%s: profile %q has no sources", path, p.Name)
		}
	}
	return yamlConfig.Profiles, nil
}

// FindProfile returns the profile with the given name, or an error
// naming the available profiles.
func FindProfile(profiles []ImportProfile, name string) (*ImportProfile, error) {
	names := make([]string, 0, len(profiles))
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
		names = append(names, profiles[i].Name)
	}
	return nil, fmt.Errorf("profile %q not found (available: %v)", name, names)
}
