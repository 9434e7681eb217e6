package pathvalue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoDatasets = `name: en
comment: English
entries:
  - path: /Version
    values: ["36.1"]
  - path: /calendar/first:int
    values: [sun]
  - path: /list
    rows:
      - [a, b]
      - [c]
---
name: en_US_POSIX
fallback: false
entries:
  - path: /x
    values: ["1"]
  - path: /x
    values: ["2"]
    replace: true
`

func TestDecode_MultipleDocuments(t *testing.T) {
	stores, err := Decode(strings.NewReader(twoDatasets), "data/en.yaml", WithSymbols(Symbols{"sun": "1"}))
	require.NoError(t, err)
	require.Len(t, stores, 2)

	en := stores[0]
	assert.Equal(t, "en", en.Name)
	assert.Equal(t, "data/en.yaml", en.Source)
	assert.Equal(t, "English", en.Comment)
	assert.True(t, en.Fallback)
	assert.Equal(t, []string{"/Version", "/calendar/first:int", "/list"}, en.Paths())

	first, _ := en.Get("/calendar/first:int")
	assert.Equal(t, []Tuple{{"1"}}, first)

	list, _ := en.Get("/list")
	assert.Equal(t, []Tuple{{"a", "b"}, {"c"}}, list)

	posix := stores[1]
	assert.False(t, posix.Fallback)

	x, _ := posix.Get("/x")
	assert.Equal(t, []Tuple{{"2"}}, x)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing name", "entries: []\n", "name is required"},
		{"missing path", "name: en\nentries:\n  - values: [a]\n", "path is required"},
		{"no values", "name: en\nentries:\n  - path: /a\n", "no values"},
		{"empty", "", "no dataset documents"},
		{"malformed", "name: [\n", "document 0"},
		{"parent name", "name: ..\nentries:\n  - {path: /a, values: [x]}\n", "not a file name"},
		{"escaping name", "name: ../../escaped\nentries:\n  - {path: /a, values: [x]}\n", "path separator"},
		{"nested name", "name: en/US\nentries:\n  - {path: /a, values: [x]}\n", "path separator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), "x.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "en.yaml")
	require.NoError(t, os.WriteFile(p, []byte(twoDatasets), 0o600))

	stores, err := LoadFile(p)
	require.NoError(t, err)
	assert.Len(t, stores, 2)
	assert.Equal(t, p, stores[0].Source)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening dataset file")
}
