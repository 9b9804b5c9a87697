package ccamc

import (
	"encoding/binary"
)

// MaxMovesPerBlob is the number of packed-move slots in a blob (spec §3:
// offset 8, 54 bytes, 2 bytes per slot).
const MaxMovesPerBlob = 27

// BlobSize is the fixed on-disk size of a move blob in bytes.
const BlobSize = 64

// GameResult is the terminal-state code carried by the last blob of a chain.
type GameResult uint16

const (
	ResultWhiteWins GameResult = iota
	ResultBlackWins
	ResultDraw
	ResultUnknown
)

// Blob is a 64-byte fixed move record: a backward link to its parent, up to
// 27 packed moves, and a result code. Blobs are write-once and content
// addressed; two blobs with identical (Parent, Moves, Result) are the same
// blob by definition (spec §3, invariant 2).
type Blob struct {
	Parent Hash64
	Moves  [MaxMovesPerBlob]PackedMove
	Result GameResult
}

// NumMoves returns the count of move slots before the first empty-slot
// sentinel. A blob's first 0x0000 slot (if any) terminates the sequence;
// all subsequent slots must also be 0x0000 (spec invariant 8).
func (b *Blob) NumMoves() int {
	for i, m := range b.Moves {
		if m == EmptySlotSentinel {
			return i
		}
	}
	return MaxMovesPerBlob
}

// serialize renders the blob to its canonical 64-byte wire form.
func (b *Blob) serialize() []byte {
	out := make([]byte, BlobSize)
	binary.LittleEndian.PutUint64(out[0:8], uint64(b.Parent))
	for i, m := range b.Moves {
		off := 8 + i*2
		binary.LittleEndian.PutUint16(out[off:off+2], uint16(m))
	}
	binary.LittleEndian.PutUint16(out[62:64], uint16(b.Result))
	return out
}

// deserializeBlob parses a 64-byte record back into a Blob. It does not
// validate the empty-slot-sentinel invariant; callers that need that
// guarantee should call Blob.Validate.
func deserializeBlob(raw []byte) (*Blob, error) {
	if len(raw) != BlobSize {
		return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	b := &Blob{
		Parent: Hash64(binary.LittleEndian.Uint64(raw[0:8])),
		Result: GameResult(binary.LittleEndian.Uint16(raw[62:64])),
	}
	for i := range b.Moves {
		off := 8 + i*2
		b.Moves[i] = PackedMove(binary.LittleEndian.Uint16(raw[off : off+2]))
	}
	return b, nil
}

// Validate checks the empty-slot-sentinel invariant: once a 0x0000 slot is
// seen, every subsequent slot must also be 0x0000.
func (b *Blob) Validate() error {
	seenEmpty := false
	for _, m := range b.Moves {
		if m == EmptySlotSentinel {
			seenEmpty = true
			continue
		}
		if seenEmpty {
			return wrapErr(KindCorruptStore, ErrCorruptStore)
		}
	}
	return nil
}

// Hash returns the BLAKE2b-64 content hash of the blob's canonical
// serialization.
func (b *Blob) Hash() Hash64 {
	return blake2b64(b.serialize())
}

// moveTuple is the comparable key used by the dedup index: a blob's parent
// plus its move slots (result is intentionally excluded — see DESIGN.md's
// note on spec §9 open question 1).
type moveTuple struct {
	parent Hash64
	moves  [MaxMovesPerBlob]PackedMove
}

func newMoveTuple(parent Hash64, moves []PackedMove) moveTuple {
	var t moveTuple
	t.parent = parent
	copy(t.moves[:], moves)
	return t
}
