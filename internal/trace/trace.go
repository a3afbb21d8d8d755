package trace

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// PackageTrace is the canonical, deterministic record of one packaging run.
//
// Invariants:
//   - Captures the export name and an ordered list of logical events.
//   - Never contains timestamps, error strings or absolute paths, so two runs
//     over the same input produce byte-identical traces.
//
// Canonical representation:
//   - Events are sorted via Canonicalize() using a fully-specified ordering.
//   - JSON serialization uses a custom marshaler to fix field order and omit
//     absent optional fields.
type PackageTrace struct {
	ExportName string
	Events     []Event
}

// EventKind is the stable discriminator for Event.
// The string values are part of the trace's canonical bytes; do not rename.
type EventKind string

const (
	EventArtifactLoaded     EventKind = "ArtifactLoaded"
	EventModuleWritten      EventKind = "ModuleWritten"
	EventDeclarationWritten EventKind = "DeclarationWritten"
	EventOutputsVerified    EventKind = "OutputsVerified"
	EventPackageFailed      EventKind = "PackageFailed"
)

// Stable reason codes carried by EventPackageFailed.
const (
	ReasonReadError         = "ReadError"
	ReasonWriteError        = "WriteError"
	ReasonMalformedArtifact = "MalformedArtifact"
	ReasonInvalidBytecode   = "InvalidBytecode"
	ReasonStale             = "Stale"
	ReasonCanceled          = "Canceled"
)

// Event is a single logical step of a run.
//
// Output names the affected output ("module" or "declaration") for write and
// failure events. Digest is the sha256 hex of the loaded artifact or of the
// written output. Reason is a stable code, never a free-form error message.
type Event struct {
	Kind   EventKind
	Output string
	Digest string
	Reason string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *PackageTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.ExportName == "" {
		return errors.New("exportName is required")
	}
	for i, e := range t.Events {
		if e.Kind == "" {
			return errors.Errorf("events[%d].kind is required", i)
		}
		if e.Kind == EventPackageFailed && e.Reason == "" {
			return errors.Errorf("events[%d].reason is required for kind %q", i, e.Kind)
		}
	}
	return nil
}

// Canonicalize sorts the trace into its canonical form.
//
// Events are stably sorted by (kindOrder, output, digest, reason). kindOrder follows
// the Load -> Render -> Persist flow, so the canonical order matches the order
// in which a single run records them.
func (t *PackageTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a, b := t.Events[i], t.Events[j]
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Output != b.Output {
			return outputOrder(a.Output) < outputOrder(b.Output)
		}
		if a.Digest != b.Digest {
			return a.Digest < b.Digest
		}
		return a.Reason < b.Reason
	})
}

func kindOrder(k EventKind) int {
	switch k {
	case EventArtifactLoaded:
		return 10
	case EventModuleWritten:
		return 20
	case EventDeclarationWritten:
		return 30
	case EventOutputsVerified:
		return 40
	case EventPackageFailed:
		return 50
	default:
		return 1000
	}
}

func outputOrder(o string) int {
	switch o {
	case "":
		return 0
	case "module":
		return 1
	case "declaration":
		return 2
	default:
		return 3
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy of the trace to avoid mutating the caller's slice.
func (t PackageTrace) CanonicalJSON() ([]byte, error) {
	cp := PackageTrace{ExportName: t.ExportName}
	cp.Events = make([]Event, len(t.Events))
	copy(cp.Events, t.Events)
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&cp)
}

// Hash returns the sha256 hex of the canonical JSON bytes.
func (t PackageTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON fixes field ordering.
func (t PackageTrace) MarshalJSON() ([]byte, error) {
	if t.ExportName == "" {
		return nil, errors.New("exportName is required")
	}
	var buf bytes.Buffer
	buf.WriteString(`{"exportName":`)
	writeJSONString(&buf, t.ExportName)

	buf.WriteString(`,"events":[`)
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON fixes field ordering and omits empty optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	writeJSONString(&buf, string(e.Kind))
	if e.Output != "" {
		buf.WriteString(`,"output":`)
		writeJSONString(&buf, e.Output)
	}
	if e.Digest != "" {
		buf.WriteString(`,"digest":`)
		writeJSONString(&buf, e.Digest)
	}
	if e.Reason != "" {
		buf.WriteString(`,"reason":`)
		writeJSONString(&buf, e.Reason)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
