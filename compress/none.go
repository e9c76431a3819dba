package compress

// noneCompressor is the identity compressor: the sentinel for "no
// compression configured".
type noneCompressor struct{}

func (noneCompressor) ID() string                         { return "none" }
func (noneCompressor) Compress(p []byte) ([]byte, error)   { return p, nil }
func (noneCompressor) Decompress(p []byte) ([]byte, error) { return p, nil }

type noneFactory struct{}

func (noneFactory) ID() string { return "none" }
func (noneFactory) New(Options) (Compressor, error) {
	return noneCompressor{}, nil
}

func init() {
	Default.Register(noneFactory{})
}
