// Package codec selects the JSON encoding used for model definitions and
// group dumps.
//
// Group dump records do not carry the codec name; the same codec must be
// used to load a dump as was used to write it.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON{}, nil
	case "go-json", "":
		return GoJSON{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
