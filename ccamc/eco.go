package ccamc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// MinECOPlies is the noise floor below which an opening line is not worth
// pre-seeding: lines shorter than this are discarded at load time (spec §4.9).
const MinECOPlies = 6

// EcoEntry is one labelled opening line, pre-converted to packed moves.
type EcoEntry struct {
	Code  string
	Name  string
	Moves []PackedMove
}

// trieNode is one level of the prefix trie, indexed by packed move. Terminal
// nodes carry every EcoEntry whose move sequence ends there — ties are
// possible when multiple ECO labels share one sequence.
type trieNode struct {
	children map[PackedMove]*trieNode
	terminal []EcoEntry
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[PackedMove]*trieNode)}
}

// EcoCatalog is the pre-seeded openings catalog and its accelerating trie.
type EcoCatalog struct {
	root    *trieNode
	entries []EcoEntry
}

// BoardFactory constructs a fresh Board, used by the catalog loader to
// replay each catalog line's SAN text into packed moves without ccamc
// importing a concrete rules engine.
type BoardFactory func() Board

// sanTokens tokenises a PGN movetext string (e.g. "1. e4 e5 2. Nf3 Nc6")
// into its bare SAN tokens, stripping move numbers.
func sanTokens(movetext string) []string {
	fields := strings.Fields(movetext)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		// Strip a leading "N." or "N..." move-number prefix.
		if i := strings.IndexByte(f, '.'); i >= 0 {
			allDigits := i > 0
			for _, c := range f[:i] {
				if c < '0' || c > '9' {
					allDigits = false
					break
				}
			}
			if allDigits {
				rest := strings.TrimLeft(f[i:], ".")
				if rest == "" {
					continue
				}
				f = rest
			}
		}
		switch f {
		case "1-0", "0-1", "1/2-1/2", "*":
			continue
		}
		out = append(out, f)
	}
	return out
}

// ecoCacheEntry is the sidecar-cache-serializable form of one catalog line:
// packed moves as a []uint16, since PackedMove round-trips through JSON
// identically.
type ecoCacheEntry struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Moves []uint16 `json:"moves"`
}

type ecoCacheFile struct {
	SourceModTime int64           `json:"source_mod_time"`
	SourceSize    int64           `json:"source_size"`
	Entries       []ecoCacheEntry `json:"entries"`
}

// LoadEcoCatalog loads a tab-separated catalog (columns eco, name, pgn) from
// path, consulting a sidecar cache at path+".cache.json" keyed by the
// catalog's mtime and size; a mismatch invalidates the cache and forces a
// fresh parse. Lines producing fewer than MinECOPlies plies are discarded.
// Malformed lines are corrupt-input: skipped, not fatal (spec §7).
func LoadEcoCatalog(path string, newBoard BoardFactory, log Logger) (*EcoCatalog, error) {
	if log == nil {
		log = nopLogger{}
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, wrapErr(KindIO, err)
	}

	cachePath := path + ".cache.json"
	if entries, ok := tryLoadEcoCache(cachePath, info); ok {
		return buildCatalog(entries), nil
	}

	entries, err := parseEcoTSV(path, newBoard, log)
	if err != nil {
		return nil, err
	}
	_ = saveEcoCache(cachePath, info, entries)
	return buildCatalog(entries), nil
}

func tryLoadEcoCache(cachePath string, info os.FileInfo) ([]EcoEntry, bool) {
	raw, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	var cache ecoCacheFile
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &cache); err != nil {
		return nil, false
	}
	if cache.SourceModTime != info.ModTime().UnixNano() || cache.SourceSize != info.Size() {
		return nil, false
	}
	entries := make([]EcoEntry, 0, len(cache.Entries))
	for _, e := range cache.Entries {
		moves := make([]PackedMove, len(e.Moves))
		for i, m := range e.Moves {
			moves[i] = PackedMove(m)
		}
		entries = append(entries, EcoEntry{Code: e.Code, Name: e.Name, Moves: moves})
	}
	return entries, true
}

func saveEcoCache(cachePath string, info os.FileInfo, entries []EcoEntry) error {
	cache := ecoCacheFile{
		SourceModTime: info.ModTime().UnixNano(),
		SourceSize:    info.Size(),
	}
	for _, e := range entries {
		moves := make([]uint16, len(e.Moves))
		for i, m := range e.Moves {
			moves[i] = uint16(m)
		}
		cache.Entries = append(cache.Entries, ecoCacheEntry{Code: e.Code, Name: e.Name, Moves: moves})
	}
	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(cache)
	if err != nil {
		return err
	}
	return os.WriteFile(cachePath, raw, 0o644)
}

func parseEcoTSV(path string, newBoard BoardFactory, log Logger) ([]EcoEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(KindIO, err)
	}
	defer f.Close()

	var entries []EcoEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}
		if lineNo == 1 && strings.EqualFold(strings.TrimSpace(line), "eco\tname\tpgn") {
			continue
		}
		cols := strings.SplitN(line, "\t", 3)
		if len(cols) != 3 {
			log.Warnf("eco catalog line %d: expected 3 tab-separated columns, got %d", lineNo, len(cols))
			continue
		}
		moves, err := packSANLine(cols[2], newBoard())
		if err != nil {
			log.Warnf("eco catalog line %d (%s): %v", lineNo, cols[0], err)
			continue
		}
		if len(moves) < MinECOPlies {
			continue
		}
		entries = append(entries, EcoEntry{Code: cols[0], Name: cols[1], Moves: moves})
	}
	if err := sc.Err(); err != nil {
		return nil, wrapErr(KindIO, err)
	}
	return entries, nil
}

func packSANLine(movetext string, board Board) ([]PackedMove, error) {
	board.Reset()
	var moves []PackedMove
	for _, tok := range sanTokens(movetext) {
		mv, err := board.ApplySAN(tok)
		if err != nil {
			return nil, wrapErr(KindCorruptInput, fmt.Errorf("%w: illegal move %q: %v", ErrCorruptInput, tok, err))
		}
		moves = append(moves, mv.Packed)
	}
	return moves, nil
}

func buildCatalog(entries []EcoEntry) *EcoCatalog {
	cat := &EcoCatalog{root: newTrieNode(), entries: entries}
	for _, e := range entries {
		node := cat.root
		for _, m := range e.Moves {
			child, ok := node.children[m]
			if !ok {
				child = newTrieNode()
				node.children[m] = child
			}
			node = child
		}
		node.terminal = append(node.terminal, e)
	}
	return cat
}

// Entries returns every loaded ECO line (for `stats`/debugging).
func (c *EcoCatalog) Entries() []EcoEntry { return c.entries }

// MatchPrefixes walks the trie alongside moves and returns every terminal
// node encountered, in the order reached — ascending by prefix length, per
// spec §4.9. Callers materialise matches in this order so shorter canonical
// prefixes are instantiated (and shared) before longer ones that extend them.
func (c *EcoCatalog) MatchPrefixes(moves []PackedMove) []EcoEntry {
	var matches []EcoEntry
	node := c.root
	for _, m := range moves {
		child, ok := node.children[m]
		if !ok {
			break
		}
		node = child
		matches = append(matches, node.terminal...)
	}
	return matches
}

// defaultEcoTSVName is the conventional filename the CLI looks for a
// catalog under, relative to the workspace root.
const defaultEcoTSVName = "eco.tsv"

// DefaultEcoCatalogPath resolves the catalog path relative to dir.
func DefaultEcoCatalogPath(dir string) string {
	return filepath.Join(dir, defaultEcoTSVName)
}
