package constant

// Document lifecycle statuses. A document enters as Processing, moves to
// Indexed when every chunk is embedded and stored, or Error when the
// pipeline aborts.
const (
	DocumentStatusProcessing = "processing"
	DocumentStatusIndexed    = "indexed"
	DocumentStatusError      = "error"
)
