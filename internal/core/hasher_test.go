package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashArtifact_KnownVector(t *testing.T) {
	// sha256("") is a fixed, well-known value.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashArtifact(nil))
}

func TestHashOutputs_IdenticalRenderingsProduceSameHash(t *testing.T) {
	r := Rendered{Module: []byte("m"), Declaration: []byte("d")}
	assert.Equal(t, HashOutputs("contract", r), HashOutputs("contract", r))
}

func TestHashOutputs_FieldBoundariesMatter(t *testing.T) {
	a := Rendered{Module: []byte("ab"), Declaration: []byte("c")}
	b := Rendered{Module: []byte("a"), Declaration: []byte("bc")}
	assert.NotEqual(t, HashOutputs("contract", a), HashOutputs("contract", b))
}

func TestHashOutputs_ExportNameChangesHash(t *testing.T) {
	r := Rendered{Module: []byte("m"), Declaration: []byte("d")}
	assert.NotEqual(t, HashOutputs("contract", r), HashOutputs("bytecode", r))
}
