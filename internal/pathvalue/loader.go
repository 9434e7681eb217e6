package pathvalue

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// dataset is the on-disk form of one store. Entries are a sequence rather
// than a mapping so that document order survives decoding.
type dataset struct {
	Name     string  `yaml:"name"`
	Comment  string  `yaml:"comment"`
	Fallback *bool   `yaml:"fallback"`
	Entries  []entry `yaml:"entries"`
}

type entry struct {
	Path    string     `yaml:"path"`
	Values  []string   `yaml:"values"`
	Rows    [][]string `yaml:"rows"`
	Replace bool       `yaml:"replace"`
}

// LoadFile reads every dataset document in the YAML file at path. The file
// path becomes the Source label of each returned store.
func LoadFile(path string, opts ...Option) ([]*Store, error) {
	f, err := os.Open(path) //nolint:gosec // dataset paths come from the build config
	if err != nil {
		return nil, fmt.Errorf("opening dataset file %s: %w", path, err)
	}
	defer f.Close()

	stores, err := Decode(f, path, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return stores, nil
}

// Decode reads one or more YAML dataset documents from r. Each document
// populates a fresh Store through Add and Replace only.
func Decode(r io.Reader, source string, opts ...Option) ([]*Store, error) {
	dec := yaml.NewDecoder(r)

	var stores []*Store

	for doc := 0; ; doc++ {
		var ds dataset

		err := dec.Decode(&ds)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}

		s, err := ds.build(source, opts)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}

		stores = append(stores, s)
	}

	if len(stores) == 0 {
		return nil, errors.New("no dataset documents found")
	}

	return stores, nil
}

func (ds *dataset) build(source string, opts []Option) (*Store, error) {
	if err := CheckName(ds.Name); err != nil {
		return nil, fmt.Errorf("dataset %w", err)
	}

	s := New(source, ds.Name, opts...)
	s.Comment = ds.Comment

	if ds.Fallback != nil {
		s.Fallback = *ds.Fallback
	}

	for i, e := range ds.Entries {
		if e.Path == "" {
			return nil, fmt.Errorf("dataset %s: entry %d: path is required", ds.Name, i)
		}

		rows := e.Rows
		if e.Values != nil {
			rows = append([][]string{e.Values}, rows...)
		}

		if len(rows) == 0 {
			return nil, fmt.Errorf("dataset %s: entry %d (%s): no values", ds.Name, i, e.Path)
		}

		for j, row := range rows {
			if e.Replace && j == 0 {
				s.Replace(e.Path, row)
				continue
			}

			s.Add(e.Path, row)
		}
	}

	return s, nil
}
