package messages

// ChecksumReport is one peer's checksum for a confirmed frame.
type ChecksumReport struct {
	Handle   int
	Frame    int64
	Checksum uint64
}
