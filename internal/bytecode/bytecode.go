// Package bytecode inspects hex-encoded EVM bytecode artifacts such as the
// .bin files written by solc.
package bytecode

import (
	"bytes"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
)

var (
	ErrEmptyBytecode   = errors.New("bytecode is empty")
	ErrUnlinkedLibrary = errors.New("bytecode contains unlinked library placeholders")
	ErrInvalidHex      = errors.New("bytecode is not valid hex")
)

// solc marks unlinked library addresses with 40-character placeholders,
// either __$<34 hex chars>$__ or the legacy __<path:Name>___ form. Both start
// with a double underscore, which never occurs in hex.
const placeholderLen = 40

// Info summarizes a decoded bytecode artifact.
type Info struct {
	// Size is the decoded length in bytes.
	Size int

	// CodeHash is the keccak256 of the decoded bytes.
	CodeHash common.Hash

	// ExceedsInitCodeLimit reports whether Size is above the EIP-3860 limit.
	ExceedsInitCodeLimit bool
}

// Inspect decodes content as hex bytecode.
//
// Surrounding whitespace and an optional 0x prefix are accepted; solc writes
// neither a prefix nor a trailing newline, but hand-edited files often have
// one or both.
func Inspect(content []byte) (*Info, error) {
	s := string(bytes.TrimSpace(content))
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if s == "" {
		return nil, ErrEmptyBytecode
	}
	if i := strings.Index(s, "__"); i >= 0 {
		end := min(i+placeholderLen, len(s))
		return nil, errors.Wrapf(ErrUnlinkedLibrary, "placeholder %q at offset %d", s[i:end], i)
	}

	code, err := hexutil.Decode("0x" + s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidHex, "%v", err)
	}
	return &Info{
		Size:                 len(code),
		CodeHash:             crypto.Keccak256Hash(code),
		ExceedsInitCodeLimit: len(code) > params.MaxInitCodeSize,
	}, nil
}

// Verifier rejects artifacts that are not decodable bytecode.
type Verifier struct {
	// AllowOversized accepts bytecode above the EIP-3860 init code limit.
	AllowOversized bool
}

// Verify implements the packager's content verification hook.
func (v Verifier) Verify(content []byte) error {
	info, err := Inspect(content)
	if err != nil {
		return err
	}
	if info.ExceedsInitCodeLimit && !v.AllowOversized {
		return errors.Errorf("bytecode is %d bytes, above the %d byte init code limit", info.Size, params.MaxInitCodeSize)
	}
	return nil
}
