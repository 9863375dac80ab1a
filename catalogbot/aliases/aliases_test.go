package aliases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	tables, err := Default()
	require.NoError(t, err)

	units := tables.UnitMapping()
	assert.Equal(t, 2, units["pkp"])
	assert.Equal(t, 3, units["pm"])

	attributes := tables.AttributeMapping()
	assert.Equal(t, "street", attributes["street"])
	assert.Equal(t, "street", attributes["str"])

	assert.Equal(t, "happy_around", tables.UnitName(1))
	assert.Equal(t, "99", tables.UnitName(99))
	assert.Equal(t, "expert", tables.DifficultyName(4))
	assert.Contains(t, tables.DifficultyKeywords(), "ex")
}

func TestParseRejectsConflicts(t *testing.T) {
	_, err := Parse([]byte("units:\n  1: [a]\n  2: [A]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "units")
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("units: [\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/aliases.yaml")
	assert.Error(t, err)
}
