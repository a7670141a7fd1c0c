package metadata

// Entry points compiled into the single shader module.
const (
	VertexEntryPoint   = "vertMain"
	FragmentEntryPoint = "fragMain"
)

// ShaderResourceData is a validated SPIR-V module.
type ShaderResourceData struct {
	// raw little endian bytes as read from disk
	Bytes []byte
	// the same code as words
	Code []uint32
}
