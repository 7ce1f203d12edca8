package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColumnOption(t *testing.T) {
	assert.Equal(t, ColumnNone, ParseColumnOption(nil).Kind)
	assert.Equal(t, ColumnNone, ParseColumnOption(false).Kind)
	assert.Equal(t, ColumnNone, ParseColumnOption("").Kind)

	title := ParseColumnOption("Adresse")
	assert.Equal(t, ColumnTitle, title.Kind)
	assert.Equal(t, "Adresse", title.Title)

	full := ParseColumnOption(true)
	assert.Equal(t, ColumnSpec, full.Kind)
	assert.Empty(t, full.Spec)
	assert.True(t, full.Enabled())

	spec := ParseColumnOption(map[string]any{"title": "Nom", "content": "name", "width": 3})
	assert.Equal(t, ColumnSpec, spec.Kind)
	assert.Equal(t, map[string]string{"title": "Nom", "content": "name"}, spec.Spec)
}

func TestBoolOption(t *testing.T) {
	assert.True(t, BoolOption(true))
	assert.True(t, BoolOption("yes"))
	assert.True(t, BoolOption(1))
	assert.False(t, BoolOption(nil))
	assert.False(t, BoolOption(false))
	assert.False(t, BoolOption("false"))
	assert.False(t, BoolOption("0"))
	assert.False(t, BoolOption(0))
}
