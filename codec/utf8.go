package codec

// utf8Codec converts between a Go string and its UTF-8 byte encoding. It is
// the single codec in the "string" flavor's appended tuple.
type utf8Codec struct{ baseCodec }

// UTF8 is the utf8 string<->bytes codec, registered under id "utf8".
var UTF8 Codec = utf8Codec{baseCodec{id: "utf8", source: String, tg: Blob}}

func (utf8Codec) ID() string       { return "utf8" }
func (utf8Codec) SourceType() Type { return String }
func (utf8Codec) TargetType() Type { return Blob }

// Forward converts a string to its UTF-8 bytes (write path: value -> bytes).
func (utf8Codec) Forward(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, ErrTypeMismatch
	}
	return []byte(s), nil
}

// Reverse converts UTF-8 bytes back to a string (read path: bytes -> value).
func (utf8Codec) Reverse(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrTypeMismatch
	}
	return string(b), nil
}

func init() {
	Default.Register(UTF8)
}
