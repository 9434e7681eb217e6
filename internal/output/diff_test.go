package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff_NoDifferences(t *testing.T) {
	doc := "en{\n    a{\"1\"}\n}\n"

	result, err := ComputeDiff(doc, doc, DefaultDiffOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences)
	assert.Empty(t, result.Unified)
}

func TestComputeDiff_WithDifferences(t *testing.T) {
	oldDoc := "en{\n    a{\"1\"}\n}\n"
	newDoc := "en{\n    a{\"2\"}\n}\n"

	result, err := ComputeDiff(oldDoc, newDoc, DefaultDiffOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	assert.Contains(t, result.Unified, `-    a{"1"}`)
	assert.Contains(t, result.Unified, `+    a{"2"}`)
	assert.Contains(t, result.Unified, "--- existing")
	assert.Contains(t, result.Unified, "+++ regenerated")
}

func TestComputeDiff_IgnoresYear(t *testing.T) {
	oldDoc := "// * Copyright (C) 2019 and later: x authors.\nen{\n}\n"
	newDoc := "// * Copyright (C) 2026 and later: x authors.\nen{\n}\n"

	result, err := ComputeDiff(oldDoc, newDoc, DefaultDiffOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences)

	opts := DefaultDiffOptions()
	opts.IgnoreYear = false

	result, err = ComputeDiff(oldDoc, newDoc, opts)
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
}

func TestWriteDiff(t *testing.T) {
	result, err := ComputeDiff("a\n", "b\n", DefaultDiffOptions())
	require.NoError(t, err)

	var plain bytes.Buffer
	WriteDiff(&plain, result, false)
	assert.Contains(t, plain.String(), "-a\n")
	assert.Contains(t, plain.String(), "+b\n")
	assert.NotContains(t, plain.String(), "\033[")

	var colored bytes.Buffer
	WriteDiff(&colored, result, true)
	assert.Contains(t, colored.String(), "\033[31m-a")

	var none bytes.Buffer
	WriteDiff(&none, &DiffResult{}, false)
	assert.Empty(t, none.String())
}
