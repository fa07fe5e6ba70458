package ledger

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Synonyms carries operator-supplied header keywords, appended to the
// built-in lists during column resolution. Partner programs occasionally
// rename export columns; a synonyms file avoids a code change.
type Synonyms struct {
	Name   []string `yaml:"name"`
	City   []string `yaml:"city"`
	Phone  []string `yaml:"phone"`
	Bonus  []string `yaml:"bonus"`
	Orders []string `yaml:"orders"`
}

// LoadSynonyms reads a synonyms YAML file. An empty path yields the zero
// value, which leaves resolution on the built-in keywords alone.
func LoadSynonyms(path string) (Synonyms, error) {
	if path == "" {
		return Synonyms{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Synonyms{}, eris.Wrap(err, "ledger: read synonyms file")
	}
	var syn Synonyms
	if err := yaml.Unmarshal(data, &syn); err != nil {
		return Synonyms{}, eris.Wrap(err, "ledger: parse synonyms file")
	}
	return syn, nil
}
