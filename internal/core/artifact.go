package core

// Artifact is the opaque text read from the input file.
//
// Content is preserved byte for byte from the source file unless a
// Normalizer was configured. Nothing about its structure is assumed.
type Artifact struct {
	// Path is the input path the content was read from.
	Path string

	// Content is the artifact text.
	Content []byte
}

// OutputKind names one of the two generated files.
type OutputKind string

const (
	OutputModule      OutputKind = "module"
	OutputDeclaration OutputKind = "declaration"
)

// DefaultExportName is the identifier bound to the artifact in both outputs.
const DefaultExportName = "contract"

// Request describes a single packaging run.
type Request struct {
	// InputPath is the artifact file. Required.
	InputPath string

	// ModulePath receives the generated JavaScript module. Required.
	ModulePath string

	// DeclarationPath receives the generated TypeScript declaration. Required.
	DeclarationPath string

	// ExportName is the constant identifier. Empty means DefaultExportName.
	ExportName string
}

func (r Request) exportName() string {
	if r.ExportName == "" {
		return DefaultExportName
	}
	return r.ExportName
}

// Validate rejects requests that cannot produce valid outputs.
func (r Request) Validate() error {
	if r.InputPath == "" {
		return &RequestError{Field: "input", Msg: "path is required"}
	}
	if r.ModulePath == "" {
		return &RequestError{Field: "module", Msg: "path is required"}
	}
	if r.DeclarationPath == "" {
		return &RequestError{Field: "declaration", Msg: "path is required"}
	}
	if r.ModulePath == r.DeclarationPath {
		return &RequestError{Field: "declaration", Msg: "must differ from the module path"}
	}
	if r.InputPath == r.ModulePath || r.InputPath == r.DeclarationPath {
		return &RequestError{Field: "input", Msg: "must differ from the output paths"}
	}
	return ValidateExportName(r.exportName())
}

// Rendered holds both generated sources for one artifact.
type Rendered struct {
	Module      []byte
	Declaration []byte
}

// Result summarizes a successful packaging run.
type Result struct {
	ModulePath      string
	DeclarationPath string
	ExportName      string

	// Size is the embedded content length in bytes.
	Size int

	// ArtifactHash is the sha256 hex of the embedded content.
	ArtifactHash string

	// OutputHash fingerprints the rendered outputs.
	OutputHash string
}

// OutputState is the on-disk state of one output during a check.
type OutputState string

const (
	StateUpToDate OutputState = "up-to-date"
	StateMissing  OutputState = "missing"
	StateStale    OutputState = "stale"
)

// OutputStatus reports one output of a check run.
type OutputStatus struct {
	Output OutputKind
	Path   string
	State  OutputState
}

// CheckResult summarizes a check run. Outputs are in Module, Declaration order.
type CheckResult struct {
	Outputs      []OutputStatus
	ArtifactHash string
	OutputHash   string
}

// UpToDate reports whether every output matches the rendered content.
func (c *CheckResult) UpToDate() bool {
	if c == nil {
		return false
	}
	for _, o := range c.Outputs {
		if o.State != StateUpToDate {
			return false
		}
	}
	return true
}
