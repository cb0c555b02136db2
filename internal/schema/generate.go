// Package schema generates JSON Schema for the launcher's config file and
// the documents it exchanges with the release server.
package schema

import (
	"encoding/json"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"

	"github.com/smykla-skalski/realms-launcher/internal/version"
	"github.com/smykla-skalski/realms-launcher/pkg/config"
)

const (
	schemaURI = "https://json-schema.org/draft/2020-12/schema"

	// BaseURL is where the published schemas live.
	BaseURL = "https://raw.githubusercontent.com/smykla-skalski/realms-launcher/main/schema/"
)

// Kind names a schema.
type Kind string

const (
	// KindConfig is the launcher TOML config.
	KindConfig Kind = "config"
	// KindMetadata is the remote release metadata.
	KindMetadata Kind = "metadata"
	// KindRecord is the install record in the managed folder.
	KindRecord Kind = "record"
)

// ErrUnknownKind is returned for a schema kind that does not exist.
var ErrUnknownKind = errors.New("unknown schema kind")

var subjects = map[Kind]struct {
	title string
	value func() any
}{
	KindConfig:   {title: "realms-launcher configuration", value: func() any { return &config.Config{} }},
	KindMetadata: {title: "realms-launcher release metadata", value: func() any { return &version.RemoteInfo{} }},
	KindRecord:   {title: "realms-launcher install record", value: func() any { return &version.Record{} }},
}

// Kinds returns every schema kind in a stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(subjects))
	for k := range subjects {
		kinds = append(kinds, k)
	}

	slices.Sort(kinds)

	return kinds
}

// ParseKind validates a schema kind name.
func ParseKind(s string) (Kind, error) {
	if _, ok := subjects[Kind(s)]; !ok {
		return "", errors.Wrapf(ErrUnknownKind, "%q", s)
	}

	return Kind(s), nil
}

// Filename returns the file name the schema is published under.
func Filename(kind Kind) string {
	return string(kind) + ".schema.json"
}

// SchemaDirective returns the Taplo directive that binds a TOML file to the
// published config schema.
func SchemaDirective() string {
	return "#:schema " + BaseURL + Filename(KindConfig)
}

// Generate produces the JSON Schema for kind.
func Generate(kind Kind) (*jsonschema.Schema, error) {
	subject, ok := subjects[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}

	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}

	s := r.Reflect(subject.value())
	s.Version = schemaURI
	s.Title = subject.title
	s.ID = jsonschema.ID(BaseURL + Filename(kind))

	return s, nil
}

// GenerateJSON produces a JSON Schema as bytes.
// When indent is true, the output is pretty-printed.
func GenerateJSON(kind Kind, indent bool) ([]byte, error) {
	s, err := Generate(kind)
	if err != nil {
		return nil, err
	}

	var data []byte

	if indent {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}

	if err != nil {
		return nil, errors.Wrap(err, "marshaling schema to JSON")
	}

	// Append trailing newline for file output.
	return append(data, '\n'), nil
}
