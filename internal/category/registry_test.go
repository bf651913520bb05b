package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLabelNeverEmpty(t *testing.T) {
	registry := NewStaticRegistry(DefaultEntries())

	inputs := []string{
		"lavatrice",
		"forno",
		"LAVATRICE",
		"unknown_key",
		"piccoli_elettrodomestici",
		"",
		"   ",
		"!?$#",
		"key with spaces",
	}
	for _, input := range inputs {
		assert.NotEmpty(t, registry.ResolveLabel(input), "input %q", input)
	}
}

func TestResolveLabelKnownKeys(t *testing.T) {
	registry := NewStaticRegistry(DefaultEntries())

	assert.Equal(t, "Lavatrici", registry.ResolveLabel("lavatrice"))
	assert.Equal(t, "Forni", registry.ResolveLabel("forno"))
}

func TestFallbackLabel(t *testing.T) {
	assert.Equal(t, "Pompe di calore", FallbackLabel("pompe_di_calore"))
	assert.Equal(t, "Non specificata", FallbackLabel(""))
	assert.Equal(t, "Non specificata", FallbackLabel("   "))
	assert.Equal(t, "X", FallbackLabel("x"))
	assert.Equal(t, "Èlite pro", FallbackLabel("èlite_pro"))
}

func TestIsValid(t *testing.T) {
	registry := NewStaticRegistry(DefaultEntries())

	assert.True(t, registry.IsValid("lavatrice"))
	assert.True(t, registry.IsValid("altro"))
	assert.False(t, registry.IsValid("inesistente"))
	assert.False(t, registry.IsValid(""))
}

func TestAllPreservesCanonicalOrder(t *testing.T) {
	registry := NewStaticRegistry(DefaultEntries())

	entries := registry.All()
	assert.Equal(t, len(DefaultEntries()), len(entries))
	assert.Equal(t, "lavatrice", entries[0].Key)
	assert.Equal(t, "altro", entries[len(entries)-1].Key)
}
