package identity

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type registryFile struct {
	Legends []Legend `yaml:"legends"`
}

// Load reads a YAML registry:
//
//	legends:
//	  - id: capablanca
//	    name: Jose Raul Capablanca
//	    spellings: ["Capablanca", "Kapablanka"]
func Load(r io.Reader) (*Registry, error) {
	var file registryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode legends: %w", err)
	}

	reg := NewRegistry()
	for i, l := range file.Legends {
		if l.ID == "" {
			return nil, fmt.Errorf("legend %d: id is required", i)
		}
		if l.Name == "" && len(l.Spellings) == 0 {
			return nil, fmt.Errorf("legend %q: needs a name or at least one spelling", l.ID)
		}
		reg.Register(l)
	}
	return reg, nil
}

// LoadFile reads a YAML registry from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// DefaultRegistry ships the transliterations commonly found in historical databases.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Legend{ID: "capablanca", Name: "Jose Raul Capablanca", Spellings: []string{"Capablanca", "Kapablanka", "Capablanka"}},
		Legend{ID: "alekhine", Name: "Alexander Alekhine", Spellings: []string{"Alekhine", "Alechin", "Aljechin", "Alekhin", "Aljekhin"}},
		Legend{ID: "tal", Name: "Mikhail Tal", Spellings: []string{"Tal, M", "Tal,M", "Tal Mikhail", "Mikhail Tal", "Mihail Tal", "Tal, Mihail"}},
		Legend{ID: "morphy", Name: "Paul Morphy", Spellings: []string{"Morphy"}},
		Legend{ID: "fischer", Name: "Robert James Fischer", Spellings: []string{"Fischer, R", "Fischer,R", "Bobby Fischer", "Robert Fischer"}},
		Legend{ID: "lasker", Name: "Emanuel Lasker", Spellings: []string{"Lasker, Em", "Lasker,Em", "Lasker, E.", "Emanuel Lasker"}},
		Legend{ID: "botvinnik", Name: "Mikhail Botvinnik", Spellings: []string{"Botvinnik", "Botwinnik", "Botvinik"}},
	)
}
