package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"trim", "  Air  ", "Air"},
		{"collapse", "Moon   \t Safari", "Moon Safari"},
		{"nul terminator", "Kelly Watch the Stars\x00", "Kelly Watch the Stars"},
		{"decomposed", "Björk", "Björk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanString(tt.input))
		})
	}
}

func TestCleanStringMergesSpellings(t *testing.T) {
	assert.Equal(t, CleanString("Björk"), CleanString("Björk"))
}

func TestSortableName(t *testing.T) {
	assert.Equal(t, "Beatles, The", SortableName("The Beatles", "Beatles, The"))
	assert.Equal(t, "The Beatles", SortableName("The Beatles", "   "))
	assert.Equal(t, "Air", SortableName(" Air ", ""))
}
