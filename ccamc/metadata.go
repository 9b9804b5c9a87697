package ccamc

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
)

// strTagNames is the Seven Tag Roster in their fixed tag-id order (spec §3).
var strTagNames = [7]string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// STRTagID returns the fixed tag id for one of the seven roster names, or
// (0, false) if name is not one of them.
func STRTagID(name string) (uint8, bool) {
	for i, n := range strTagNames {
		if n == name {
			return uint8(i), true
		}
	}
	return 0, false
}

// STRTagName returns the roster name bound to id, or ("", false) if id > 6.
func STRTagName(id uint8) (string, bool) {
	if int(id) >= len(strTagNames) {
		return "", false
	}
	return strTagNames[id], true
}

// GameMetadata is the tag map and annotation list bound to a final move
// hash. Because the final move hash is embedded, two games with identical
// tags and annotations but different moves never share a metadata blob; two
// games with identical moves and tags share both the chain and the metadata
// (spec §4.7).
type GameMetadata struct {
	FinalMoveHash Hash64
	STRTags       map[uint8]Hash64 // tag id -> string-pool hash
	ExtraTags     map[Hash64]Hash64 // name-hash -> value-hash
	Annotations   []*AnnotationRecord
}

// NewGameMetadata returns an empty metadata record bound to finalHash.
func NewGameMetadata(finalHash Hash64) *GameMetadata {
	return &GameMetadata{
		FinalMoveHash: finalHash,
		STRTags:       make(map[uint8]Hash64),
		ExtraTags:     make(map[Hash64]Hash64),
	}
}

// serialize renders the metadata blob to its canonical byte form: the byte
// sequence is deterministic given sorted tag-id and name-hash order so that
// identical metadata always hashes identically regardless of map iteration
// order.
func (m *GameMetadata) serialize() []byte {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)

	var finalBuf [8]byte
	binary.LittleEndian.PutUint64(finalBuf[:], uint64(m.FinalMoveHash))
	bw.Write(finalBuf[:])

	ids := make([]uint8, 0, len(m.STRTags))
	for id := range m.STRTags {
		ids = append(ids, id)
	}
	sortUint8s(ids)
	bw.WriteByte(byte(len(ids)))
	for _, id := range ids {
		bw.WriteByte(id)
		writeU64(bw, uint64(m.STRTags[id]))
	}

	names := make([]Hash64, 0, len(m.ExtraTags))
	for n := range m.ExtraTags {
		names = append(names, n)
	}
	sortHash64s(names)
	var countBuf [2]byte
	binary.LittleEndian.PutUint16(countBuf[:], uint16(len(names)))
	bw.Write(countBuf[:])
	for _, n := range names {
		writeU64(bw, uint64(n))
		writeU64(bw, uint64(m.ExtraTags[n]))
	}

	binary.LittleEndian.PutUint16(countBuf[:], uint16(len(m.Annotations)))
	bw.Write(countBuf[:])
	for _, rec := range m.Annotations {
		writeAnnotation(bw, rec)
	}

	bw.Flush()
	return buf.Bytes()
}

// Hash returns the BLAKE2b-64 content hash of the metadata's canonical
// serialization.
func (m *GameMetadata) Hash() Hash64 {
	return blake2b64(m.serialize())
}

// deserializeMetadata parses a metadata blob from raw.
func deserializeMetadata(raw []byte) (*GameMetadata, error) {
	r := bufio.NewReader(bytes.NewReader(raw))
	finalHash, err := readU64(r)
	if err != nil {
		return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	m := NewGameMetadata(Hash64(finalHash))

	strCount, err := r.ReadByte()
	if err != nil {
		return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	for i := byte(0); i < strCount; i++ {
		id, err := r.ReadByte()
		if err != nil {
			return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
		}
		hash, err := readU64(r)
		if err != nil {
			return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
		}
		m.STRTags[id] = Hash64(hash)
	}

	var countBuf [2]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	extraCount := binary.LittleEndian.Uint16(countBuf[:])
	for i := uint16(0); i < extraCount; i++ {
		nameHash, err := readU64(r)
		if err != nil {
			return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
		}
		valueHash, err := readU64(r)
		if err != nil {
			return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
		}
		m.ExtraTags[Hash64(nameHash)] = Hash64(valueHash)
	}

	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	annCount := binary.LittleEndian.Uint16(countBuf[:])
	for i := uint16(0); i < annCount; i++ {
		rec, err := readAnnotation(r)
		if err != nil {
			return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
		}
		m.Annotations = append(m.Annotations, rec)
	}
	return m, nil
}

func sortUint8s(s []uint8) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func sortHash64s(s []Hash64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// MetadataStore holds metadata blobs keyed by their content hash.
type MetadataStore struct {
	byHash map[Hash64]*GameMetadata
	order  []Hash64
}

// NewMetadataStore returns an empty metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{byHash: make(map[Hash64]*GameMetadata)}
}

// Put inserts m if its content hash is not already present, returning the
// hash either way.
func (s *MetadataStore) Put(m *GameMetadata) Hash64 {
	h := m.Hash()
	if _, exists := s.byHash[h]; !exists {
		s.byHash[h] = m
		s.order = append(s.order, h)
	}
	return h
}

// Get returns the metadata for hash, or (nil, false) if absent.
func (s *MetadataStore) Get(hash Hash64) (*GameMetadata, bool) {
	m, ok := s.byHash[hash]
	return m, ok
}

// Len reports the number of distinct metadata blobs.
func (s *MetadataStore) Len() int { return len(s.order) }

// Save writes a u64 count followed by (hash, length, bytes) records.
func (s *MetadataStore) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], uint64(len(s.order)))
	if _, err := bw.Write(countBuf[:]); err != nil {
		return wrapErr(KindIO, err)
	}
	for _, h := range s.order {
		raw := s.byHash[h].serialize()
		var head [12]byte
		binary.LittleEndian.PutUint64(head[0:8], uint64(h))
		binary.LittleEndian.PutUint32(head[8:12], uint32(len(raw)))
		if _, err := bw.Write(head[:]); err != nil {
			return wrapErr(KindIO, err)
		}
		if _, err := bw.Write(raw); err != nil {
			return wrapErr(KindIO, err)
		}
	}
	return wrapErr(KindIO, bw.Flush())
}

// LoadMetadataStore parses a metadata store from r.
func LoadMetadataStore(r io.Reader) (*MetadataStore, error) {
	br := bufio.NewReader(r)
	var countBuf [8]byte
	if _, err := io.ReadFull(br, countBuf[:]); err != nil {
		return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])

	s := NewMetadataStore()
	for i := uint64(0); i < count; i++ {
		var head [12]byte
		n, err := io.ReadFull(br, head[:])
		if err != nil {
			if n == 0 && err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				break
			}
			return nil, wrapErr(KindIO, err)
		}
		hash := Hash64(binary.LittleEndian.Uint64(head[0:8]))
		length := binary.LittleEndian.Uint32(head[8:12])
		raw := make([]byte, length)
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
		}
		m, err := deserializeMetadata(raw)
		if err != nil {
			return nil, err
		}
		if _, exists := s.byHash[hash]; !exists {
			s.byHash[hash] = m
			s.order = append(s.order, hash)
		}
	}
	return s, nil
}

// SaveToFile truncates and writes path to the store's current contents.
func (s *MetadataStore) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapErr(KindIO, err)
	}
	defer f.Close()
	return s.Save(f)
}

// LoadMetadataStoreFromPath opens path and loads a MetadataStore from it.
func LoadMetadataStoreFromPath(path string) (*MetadataStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(KindIO, err)
	}
	defer f.Close()
	return LoadMetadataStore(f)
}
