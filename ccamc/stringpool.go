package ccamc

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// StringPool is a content-addressed, append-only table of UTF-8 strings.
// Two strings with identical bytes share the same hash and one copy; callers
// look up by hash and never iterate the pool (spec §4.5).
type StringPool struct {
	byHash map[Hash64]string
	order  []Hash64
}

// NewStringPool returns an empty string pool.
func NewStringPool() *StringPool {
	return &StringPool{byHash: make(map[Hash64]string)}
}

// Put inserts s if not already present and returns its content hash.
func (p *StringPool) Put(s string) Hash64 {
	h := blake2b64([]byte(s))
	if _, exists := p.byHash[h]; !exists {
		p.byHash[h] = s
		p.order = append(p.order, h)
	}
	return h
}

// Get returns the string for hash, or ("", false) if absent.
func (p *StringPool) Get(hash Hash64) (string, bool) {
	s, ok := p.byHash[hash]
	return s, ok
}

// Len reports the number of distinct strings in the pool.
func (p *StringPool) Len() int { return len(p.order) }

// Save writes the pool as a u64 count followed by (hash, length, bytes)
// records in insertion order.
func (p *StringPool) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], uint64(len(p.order)))
	if _, err := bw.Write(countBuf[:]); err != nil {
		return wrapErr(KindIO, err)
	}
	for _, h := range p.order {
		s := p.byHash[h]
		var head [12]byte
		binary.LittleEndian.PutUint64(head[0:8], uint64(h))
		binary.LittleEndian.PutUint32(head[8:12], uint32(len(s)))
		if _, err := bw.Write(head[:]); err != nil {
			return wrapErr(KindIO, err)
		}
		if _, err := bw.WriteString(s); err != nil {
			return wrapErr(KindIO, err)
		}
	}
	return wrapErr(KindIO, bw.Flush())
}

// LoadStringPool parses a string pool from r.
func LoadStringPool(r io.Reader) (*StringPool, error) {
	br := bufio.NewReader(r)
	var countBuf [8]byte
	if _, err := io.ReadFull(br, countBuf[:]); err != nil {
		return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])

	p := NewStringPool()
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
		buf := make([]byte, length)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, wrapErr(KindCorruptStore, ErrCorruptStore)
		}
		s := string(buf)
		if _, exists := p.byHash[hash]; !exists {
			p.byHash[hash] = s
			p.order = append(p.order, hash)
		}
	}
	return p, nil
}

// SaveToFile truncates and writes path to the pool's current contents.
func (p *StringPool) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapErr(KindIO, err)
	}
	defer f.Close()
	return p.Save(f)
}

// LoadStringPoolFromPath opens path and loads a StringPool from it.
func LoadStringPoolFromPath(path string) (*StringPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(KindIO, err)
	}
	defer f.Close()
	return LoadStringPool(f)
}
