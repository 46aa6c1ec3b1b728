package types

const (
	// NoteSize is the number of field elements of a note.
	NoteSize = 15
	// CommitmentTreeLevels is the depth of the commitment accumulator.
	CommitmentTreeLevels = 16
	// AmountBits is the maximum bit length of a note amount.
	AmountBits = 64
	// MaxHashInputs is the maximum number of elements a single Poseidon
	// digest accepts.
	MaxHashInputs = 256
	// PoseidonChunkSize is the maximum arity of a single Poseidon permutation.
	PoseidonChunkSize = 16
	// DefaultTokenType is the token type assigned to minted notes when none
	// is provided.
	DefaultTokenType = 1
	// CommitmentVersion is the default note commitment layout version.
	CommitmentVersion = 1
	// SerializedFieldSize is the size in bytes of a serialized field element.
	SerializedFieldSize = 32
)
