package ccamc

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/gtank/blake2/blake2b"
	"github.com/minio/sha256-simd"
)

// Hash64 is a content address: the first 8 bytes of a BLAKE2b digest,
// interpreted little-endian as a u64. It is used everywhere blobs, strings,
// metadata, and source entries are addressed by content.
type Hash64 uint64

// String renders a Hash64 as 16 lowercase hex digits of its little-endian
// bytes (see Bytes) — the encoding used by the registry and source-store
// text formats.
func (h Hash64) String() string {
	return hex.EncodeToString(h.Bytes())
}

// Bytes returns the little-endian 8-byte encoding of h.
func (h Hash64) Bytes() []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(h))
	return b[:]
}

// ParseHash64 decodes a 16-hex-digit string produced by Hash64.String.
func ParseHash64(s string) (Hash64, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 8 {
		return 0, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	return Hash64(binary.LittleEndian.Uint64(b)), nil
}

// blake2b64 returns the BLAKE2b-64 content hash of data: a 12-round BLAKE2b
// digest truncated to 8 bytes, little-endian. Collision probability across
// realistic corpus sizes (<=1e9 blobs) is negligible, per spec §4.2.
func blake2b64(data []byte) Hash64 {
	d, err := blake2b.NewDigest(nil, nil, nil, 8)
	if err != nil {
		// Only returned for invalid output-size/key/salt arguments, all of
		// which are compile-time constants here.
		panic(err)
	}
	d.Write(data)
	sum := d.Sum(nil)
	return Hash64(binary.LittleEndian.Uint64(sum))
}

// Sha256Hex returns the lowercase hex-encoded SHA-256 digest of data, used
// as the source-file fingerprint recorded in source entries (spec §6).
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var (
	// initBlobHash is the content hash of the unique empty blob: parent_hash=0,
	// no moves, result=3 (in-progress/unknown). It roots every chain.
	initBlobHash Hash64
	// orphanParentHash is BLAKE2b-64 of the ASCII marker string, reserved as a
	// chain terminator for detached variation chains. Never emitted by ingestion.
	orphanParentHash Hash64
)

func init() {
	initBlobHash = blake2b64(emptyBlob().serialize())
	orphanParentHash = blake2b64([]byte("ORPHAN_VARIATION_PARENT_MARKER"))
}

// InitBlobHash returns the sentinel root hash shared by every chain.
func InitBlobHash() Hash64 { return initBlobHash }

// OrphanParentHash returns the sentinel terminator hash for detached
// variation chains. It is honoured as a chain terminator by reconstruction
// and verification but is never produced by ingestion (spec §9, open
// question 3).
func OrphanParentHash() Hash64 { return orphanParentHash }

func emptyBlob() *Blob {
	return &Blob{Parent: 0, Moves: [MaxMovesPerBlob]PackedMove{}, Result: ResultUnknown}
}
