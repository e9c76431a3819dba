package codec

import "github.com/goccy/go-json"

// jsonCodec converts between an arbitrary Go value (decoded as
// map[string]any/[]any/etc, matching the source's json.loads/json.dumps
// shape) and its JSON text representation. Uses goccy/go-json, the teacher's
// own direct dependency, rather than stdlib encoding/json.
type jsonCodec struct{ baseCodec }

// JSON is the json value<->string codec, registered under id "json".
var JSON Codec = jsonCodec{baseCodec{id: "json", source: Any, tg: String}}

func (jsonCodec) ID() string       { return "json" }
func (jsonCodec) SourceType() Type { return Any }
func (jsonCodec) TargetType() Type { return String }

// Forward marshals v to a JSON string (write path).
func (jsonCodec) Forward(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Reverse unmarshals a JSON string back into a Go value (read path).
func (jsonCodec) Reverse(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, ErrTypeMismatch
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func init() {
	Default.Register(JSON)
}
