package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// HashArtifact returns the sha256 hex of the artifact content.
func HashArtifact(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashOutputs fingerprints a rendering.
//
// The hash covers, in order: export name, module bytes, declaration bytes.
// Every field is length-prefixed (8-byte big-endian) so that moving bytes
// between fields always changes the hash.
func HashOutputs(exportName string, r Rendered) string {
	h := sha256.New()
	writeField(h, []byte(exportName))
	writeField(h, r.Module)
	writeField(h, r.Declaration)
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, data []byte) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(data)))
	h.Write(length[:])
	h.Write(data)
}
