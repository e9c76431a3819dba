package codec

// Stack is an ordered, immutable-after-construction composition of codecs
// where codec[i].TargetType() == codec[i+1].SourceType(). Its identity (the
// tuple of codec ids) is persisted verbatim in the metadata table and
// compared on every attach (invariant I1 / P6).
type Stack struct {
	codecs []Codec
}

// NewStack builds a Stack from an ordered codec slice. Neither NewStack nor
// Wrap validates chaining; a Stack that violates the chaining rule fails at
// Forward/Reverse time with ErrTypeMismatch.
func NewStack(codecs ...Codec) Stack {
	return Stack{codecs: append([]Codec(nil), codecs...)}
}

// ID returns the ordered codec id tuple identifying this stack.
func (s Stack) ID() []string {
	ids := make([]string, len(s.codecs))
	for i, c := range s.codecs {
		ids[i] = c.ID()
	}
	return ids
}

// Equal reports whether this stack's identity matches the given id tuple,
// e.g. as read back from the persisted "serializers" metadata record.
func (s Stack) Equal(ids []string) bool {
	mine := s.ID()
	if len(mine) != len(ids) {
		return false
	}
	for i := range mine {
		if mine[i] != ids[i] {
			return false
		}
	}
	return true
}

// Len reports the number of codecs in the stack.
func (s Stack) Len() int { return len(s.codecs) }

// SourceType is the type the first codec expects, or Blob for an empty
// stack (the "blob" flavor stores raw bytes with no transformation).
func (s Stack) SourceType() Type {
	if len(s.codecs) == 0 {
		return Blob
	}
	return s.codecs[0].SourceType()
}

// Forward composes codec[0].Forward, codec[1].Forward, ... in order,
// converting a user-level value down to bytes. codec[0] sits closest to the
// user-facing value (e.g. json in the "json" flavor); the last codec always
// terminates at Blob.
func (s Stack) Forward(v any) ([]byte, error) {
	cur := v
	for _, c := range s.codecs {
		out, err := c.Forward(cur)
		if err != nil {
			return nil, err
		}
		cur = out
	}
	b, ok := cur.([]byte)
	if !ok {
		return nil, ErrTypeMismatch
	}
	return b, nil
}

// Reverse walks the stack back to front, converting raw bytes back up to a
// user-level value: the last codec (nearest Blob) runs first, the first
// codec (nearest the user-facing value) runs last.
func (s Stack) Reverse(b []byte) (any, error) {
	var cur any = b
	for i := len(s.codecs) - 1; i >= 0; i-- {
		out, err := s.codecs[i].Reverse(cur)
		if err != nil {
			return nil, err
		}
		cur = out
	}
	return cur, nil
}

// Wrap builds a new Stack by placing outer in front of s: outer becomes the
// new user-facing end, and s (possibly empty, for the blob flavor) becomes
// the tail running down to Blob. This is the Go rendering of the source's
// metaclass-driven "_appendTransformers" concatenation, where a subclass
// cache wraps its own serializer around its parent's stack (e.g. JSONCache
// wrapping json around StringCache's {utf8}). s itself is never mutated.
func (s Stack) Wrap(outer Codec) Stack {
	out := make([]Codec, 0, len(s.codecs)+1)
	out = append(out, outer)
	out = append(out, s.codecs...)
	return Stack{codecs: out}
}
