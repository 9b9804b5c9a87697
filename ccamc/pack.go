package ccamc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// packMagic is the 4-byte file signature for the pack file.
var packMagic = [4]byte{'C', 'H', 'S', 'S'}

// packVersion is the on-disk pack format version.
const packVersion uint16 = 1

// packHeaderSize is magic(4) + version(2) + blob-count(8).
const packHeaderSize = 16

// PackFile is the append-only container of move blobs. Alongside the blob
// table it keeps an insertion-ordered hash list (for deterministic save
// order) and a dedup index keyed by (parent, move_tuple) -> blob hash, per
// spec §4.3.
type PackFile struct {
	blobs   map[Hash64]*Blob
	order   []Hash64
	dedup   map[moveTuple]Hash64
}

// NewPackFile returns an empty pack seeded with the INIT_BLOB_HASH sentinel.
func NewPackFile() *PackFile {
	p := &PackFile{
		blobs: make(map[Hash64]*Blob),
		dedup: make(map[moveTuple]Hash64),
	}
	p.AddBlob(emptyBlob())
	return p
}

// Get returns the blob for hash, or (nil, false) if absent.
func (p *PackFile) Get(hash Hash64) (*Blob, bool) {
	b, ok := p.blobs[hash]
	return b, ok
}

// Len returns the number of distinct blobs in the pack.
func (p *PackFile) Len() int { return len(p.order) }

// Lookup probes the dedup index for an existing blob sharing (parent, moves).
func (p *PackFile) Lookup(parent Hash64, moves []PackedMove) (Hash64, bool) {
	h, ok := p.dedup[newMoveTuple(parent, moves)]
	return h, ok
}

// AddBlob is idempotent: it computes the content hash, inserts into the
// blob map only if absent, appends to the insertion-order list only on
// first insert, and unconditionally refreshes the dedup index entry for
// this blob's (parent, moves) key — matching spec §4.3 exactly, including
// the consequence that a later insert with the same moves but a different
// result silently changes which hash the dedup index returns for that key.
func (p *PackFile) AddBlob(b *Blob) Hash64 {
	hash := b.Hash()
	if _, exists := p.blobs[hash]; !exists {
		p.blobs[hash] = b
		p.order = append(p.order, hash)
	}
	key := newMoveTuple(b.Parent, b.Moves[:b.NumMoves()])
	p.dedup[key] = hash
	return hash
}

// InsertionOrder returns the blob hashes in first-insert order, used for
// deterministic pack-file save order and for building the index file.
func (p *PackFile) InsertionOrder() []Hash64 {
	out := make([]Hash64, len(p.order))
	copy(out, p.order)
	return out
}

// Save writes the pack file to w: header, then each blob in insertion order.
func (p *PackFile) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var header [packHeaderSize]byte
	copy(header[0:4], packMagic[:])
	binary.LittleEndian.PutUint16(header[4:6], packVersion)
	binary.LittleEndian.PutUint64(header[6:14], uint64(len(p.order)))
	if _, err := bw.Write(header[:]); err != nil {
		return wrapErr(KindIO, err)
	}
	for _, h := range p.order {
		if _, err := bw.Write(p.blobs[h].serialize()); err != nil {
			return wrapErr(KindIO, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return wrapErr(KindIO, err)
	}
	return nil
}

// LoadPackFile reads a pack file from r and rebuilds the blob map, insertion
// order, and dedup index identically to how AddBlob would have built them.
// A bad magic is a fatal corrupt-store error; a short read mid-blob is a
// truncation, which halts loading and drops the remaining records
// (best-effort recovery, spec §4.3).
func LoadPackFile(r io.Reader) (*PackFile, error) {
	br := bufio.NewReader(r)
	var header [packHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, wrapErr(KindCorruptStore, fmt.Errorf("%w: truncated pack header", ErrCorruptStore))
		}
		return nil, wrapErr(KindIO, err)
	}
	if string(header[0:4]) != string(packMagic[:]) {
		return nil, wrapErr(KindCorruptStore, fmt.Errorf("%w: bad pack magic", ErrCorruptStore))
	}
	count := binary.LittleEndian.Uint64(header[6:14])

	p := &PackFile{
		blobs: make(map[Hash64]*Blob, count),
		dedup: make(map[moveTuple]Hash64, count),
	}
	raw := make([]byte, BlobSize)
	for i := uint64(0); i < count; i++ {
		n, err := io.ReadFull(br, raw)
		if err != nil {
			if n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF) {
				break
			}
			if err == io.ErrUnexpectedEOF {
				break
			}
			return nil, wrapErr(KindIO, err)
		}
		b, err := deserializeBlob(raw)
		if err != nil {
			return nil, err
		}
		p.AddBlob(b)
	}
	return p, nil
}

// SaveToFile truncates and writes path to the pack's current contents.
func (p *PackFile) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapErr(KindIO, err)
	}
	defer f.Close()
	return p.Save(f)
}

// LoadPackFileFromPath opens path and loads a PackFile from it.
func LoadPackFileFromPath(path string) (*PackFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(KindIO, err)
	}
	defer f.Close()
	return LoadPackFile(f)
}
