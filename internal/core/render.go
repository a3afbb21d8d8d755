package core

import (
	"bytes"
	"encoding/json"
	"regexp"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Words that cannot name a const binding in an ES module (modules are strict).
var reservedWords = map[string]struct{}{
	"arguments": {}, "await": {}, "break": {}, "case": {}, "catch": {},
	"class": {}, "const": {}, "continue": {}, "debugger": {}, "default": {},
	"delete": {}, "do": {}, "else": {}, "enum": {}, "eval": {}, "export": {},
	"extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "implements": {}, "import": {}, "in": {}, "instanceof": {},
	"interface": {}, "let": {}, "new": {}, "null": {}, "package": {},
	"private": {}, "protected": {}, "public": {}, "return": {}, "static": {},
	"super": {}, "switch": {}, "this": {}, "throw": {}, "true": {}, "try": {},
	"typeof": {}, "var": {}, "void": {}, "while": {}, "with": {}, "yield": {},
}

// ValidateExportName reports whether name can be used as the constant binding.
func ValidateExportName(name string) error {
	if !identifierPattern.MatchString(name) {
		return &RequestError{Field: "export-name", Msg: "must be an ASCII JavaScript identifier, got " + quoteForMessage(name)}
	}
	if _, reserved := reservedWords[name]; reserved {
		return &RequestError{Field: "export-name", Msg: quoteForMessage(name) + " is a reserved word"}
	}
	return nil
}

func quoteForMessage(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// QuoteString returns content as a double-quoted JavaScript string literal.
//
// The literal is a JSON string, which is also a valid ECMAScript string
// literal: quotes, backslashes, control characters and U+2028/U+2029 are
// escaped, so no content can terminate it early. Evaluating the literal yields
// exactly content.
//
// Content that is not valid UTF-8 has no JavaScript text representation and
// is rejected with *MalformedArtifactError.
func QuoteString(content []byte) ([]byte, error) {
	if off := invalidUTF8Offset(content); off >= 0 {
		return nil, &MalformedArtifactError{Offset: off}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(content)); err != nil {
		return nil, errors.Wrap(err, "encode string literal")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// invalidUTF8Offset returns the offset of the first invalid byte, or -1.
func invalidUTF8Offset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// RenderModule generates the JavaScript module exposing content as the
// default export bound to exportName.
func RenderModule(exportName string, content []byte) ([]byte, error) {
	if err := ValidateExportName(exportName); err != nil {
		return nil, err
	}
	literal, err := QuoteString(content)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(literal) + 96)
	buf.WriteString("/**\n * @type {string}\n */\n")
	buf.WriteString("const ")
	buf.WriteString(exportName)
	buf.WriteString(" = ")
	buf.Write(literal)
	buf.WriteString(";\n\nexport default ")
	buf.WriteString(exportName)
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}

// RenderDeclaration generates the TypeScript declaration typing the default
// export as string. It never depends on the artifact content.
func RenderDeclaration(exportName string) ([]byte, error) {
	if err := ValidateExportName(exportName); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("declare const ")
	buf.WriteString(exportName)
	buf.WriteString(": string;\n\nexport default ")
	buf.WriteString(exportName)
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}

// Render produces both outputs for content.
func Render(exportName string, content []byte) (Rendered, error) {
	module, err := RenderModule(exportName, content)
	if err != nil {
		return Rendered{}, err
	}
	decl, err := RenderDeclaration(exportName)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Module: module, Declaration: decl}, nil
}
