package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sigsyaml "sigs.k8s.io/yaml"
)

func TestReport_MarshalSortsByPath(t *testing.T) {
	root := filepath.Join("out")

	r := &Report{Tool: "ldml2res", Version: "36.1"}
	r.Add(root, "locales", "en", Stat{Path: filepath.Join(root, "locales", "en.txt"), Size: 10, Digest: "blake3:aa"})
	r.Add(root, "lang", "de", Stat{Path: filepath.Join(root, "lang", "de.txt"), Size: 5, Digest: "blake3:bb"})

	data, err := r.Marshal()
	require.NoError(t, err)

	var back Report
	require.NoError(t, sigsyaml.Unmarshal(data, &back))

	require.Len(t, back.Artifacts, 2)
	assert.Equal(t, "lang/de.txt", back.Artifacts[0].Path)
	assert.Equal(t, "locales/en.txt", back.Artifacts[1].Path)
	assert.Equal(t, "36.1", back.Version)

	// Marshal must not reorder the caller's slice.
	assert.Equal(t, "locales/en.txt", r.Artifacts[0].Path)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer

	WriteSummary(&buf, []TargetSummary{
		{Target: "locales", Artifacts: 3, Sources: 3},
		{Target: "lang", Artifacts: 1, Pruned: 2, Sources: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "locales")
	assert.Contains(t, out, "lang")
	assert.Contains(t, strings.ToUpper(out), "2 TARGETS")
}
