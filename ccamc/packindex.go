package ccamc

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sort"
)

// indexEntrySize is hash(8) + offset(8).
const indexEntrySize = 16

// indexEntry is one (blob hash, byte offset into the pack file) pair.
type indexEntry struct {
	Hash   Hash64
	Offset uint64
}

// PackIndex is a sorted-by-hash sequence of (blob_hash, byte_offset) pairs,
// enabling O(log n) lookup of a blob's byte offset without loading the
// whole pack into memory. The current store keeps all blobs resident
// (spec §4.4, §9 open question 4); PackIndex exists for future random-access
// readers and is rebuilt from scratch on every save, the same way the
// teacher's compactindex36 package resolves a key to a bucket via a sorted
// on-disk header rather than an in-memory map.
type PackIndex struct {
	entries []indexEntry
}

// BuildPackIndex constructs an index from a pack's insertion order: offsets
// are 16 + i*64 (header size plus i whole blobs), then the pairs are sorted
// ascending by hash for binary search.
func BuildPackIndex(order []Hash64) *PackIndex {
	entries := make([]indexEntry, len(order))
	for i, h := range order {
		entries[i] = indexEntry{Hash: h, Offset: uint64(packHeaderSize + i*BlobSize)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Hash < entries[j].Hash })
	return &PackIndex{entries: entries}
}

// Lookup performs a binary search for hash, returning its byte offset into
// the pack file.
func (idx *PackIndex) Lookup(hash Hash64) (uint64, bool) {
	i := sort.Search(len(idx.entries), func(i int) bool { return idx.entries[i].Hash >= hash })
	if i < len(idx.entries) && idx.entries[i].Hash == hash {
		return idx.entries[i].Offset, true
	}
	return 0, false
}

// Len reports the number of indexed entries.
func (idx *PackIndex) Len() int { return len(idx.entries) }

// Save writes the sorted (hash, offset) pairs to w.
func (idx *PackIndex) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var buf [indexEntrySize]byte
	for _, e := range idx.entries {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(e.Hash))
		binary.LittleEndian.PutUint64(buf[8:16], e.Offset)
		if _, err := bw.Write(buf[:]); err != nil {
			return wrapErr(KindIO, err)
		}
	}
	return wrapErr(KindIO, bw.Flush())
}

// LoadPackIndex reads a sequence of (hash, offset) pairs from r. The pairs
// are assumed already sorted, as only BuildPackIndex ever produces them.
func LoadPackIndex(r io.Reader) (*PackIndex, error) {
	br := bufio.NewReader(r)
	var entries []indexEntry
	var buf [indexEntrySize]byte
	for {
		n, err := io.ReadFull(br, buf[:])
		if err != nil {
			if n == 0 && err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				break
			}
			return nil, wrapErr(KindIO, err)
		}
		entries = append(entries, indexEntry{
			Hash:   Hash64(binary.LittleEndian.Uint64(buf[0:8])),
			Offset: binary.LittleEndian.Uint64(buf[8:16]),
		})
	}
	return &PackIndex{entries: entries}, nil
}

// SaveToFile truncates and writes path to idx's current contents.
func (idx *PackIndex) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapErr(KindIO, err)
	}
	defer f.Close()
	return idx.Save(f)
}

// LoadPackIndexFromPath opens path and loads a PackIndex from it.
func LoadPackIndexFromPath(path string) (*PackIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(KindIO, err)
	}
	defer f.Close()
	return LoadPackIndex(f)
}
