package ccamc

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// workspaceDirName is the ".positional" subdirectory used in workspace mode
// (spec §6). In bare-store mode the same file names live directly in the
// target directory.
const workspaceDirName = ".positional"

const (
	fileConfig   = "config"
	fileMoves    = "moves"
	fileIdx      = "idx"
	fileStrings  = "strings"
	fileMetadata = "metadata"
	fileSources  = "sources"
	fileRegistry = "registry"
)

// configVersion is the on-disk store format version written to the config
// marker file.
const configVersion = 1

type configDoc struct {
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
}

// Store is the persistence orchestration layer: it binds every sub-store
// together and is the unit of Open/Save. All in-memory state (blobs,
// strings, metadata, registry, ECO trie) lives for the lifetime of the
// handle; save() is the only durability point (spec §5).
type Store struct {
	Pack     *PackFile
	Strings  *StringPool
	Metadata *MetadataStore
	Sources  *SourceStore
	Registry *GameRegistry
	Eco      *EcoCatalog

	NewBoard BoardFactory
	Logger   Logger

	dataDir string // directory actually containing moves/idx/strings/...
	root    string // workspace root (bare store: same as dataDir)
}

// NewStore returns a fresh, empty in-memory store. Callers must set
// NewBoard before ingesting; Logger defaults to a no-op sink.
func NewStore() *Store {
	return &Store{
		Pack:     NewPackFile(),
		Strings:  NewStringPool(),
		Metadata: NewMetadataStore(),
		Sources:  NewSourceStore(),
		Registry: NewGameRegistry(),
		Logger:   nopLogger{},
	}
}

// Init creates a new store on disk at dir in workspace mode (a `.positional`
// subdirectory) and returns a handle to it. It fails if a store already
// exists there.
func Init(dir string) (*Store, error) {
	dataDir := filepath.Join(dir, workspaceDirName)
	configPath := filepath.Join(dataDir, fileConfig)
	if _, err := os.Stat(configPath); err == nil {
		return nil, wrapErr(KindUsage, fmt.Errorf("store already initialised at %s", dataDir))
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, wrapErr(KindIO, err)
	}
	doc := configDoc{Version: configVersion, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, wrapErr(KindIO, err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		return nil, wrapErr(KindIO, err)
	}
	s := NewStore()
	s.dataDir = dataDir
	s.root = dir
	return s, nil
}

// DiscoverStore walks upward from start looking for a `.positional/config`
// marker; if none is found up to the filesystem root, it falls back to
// checking whether start itself is a bare store (a `config` file at its
// root). Returns ErrNotFound (KindNotFound, which the CLI maps to its
// "not a repository" exit code) if neither is found.
func DiscoverStore(start string) (dataDir string, root string, err error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", "", wrapErr(KindIO, err)
	}
	dir := abs
	for {
		candidate := filepath.Join(dir, workspaceDirName, fileConfig)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return filepath.Join(dir, workspaceDirName), dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if _, statErr := os.Stat(filepath.Join(abs, fileConfig)); statErr == nil {
		return abs, abs, nil
	}
	return "", "", wrapErr(KindNotFound, fmt.Errorf("%w: no .positional store found above or at %s", ErrNotFound, start))
}

// Open discovers and loads the store reachable from start.
func Open(start string) (*Store, error) {
	dataDir, root, err := DiscoverStore(start)
	if err != nil {
		return nil, err
	}
	return Load(dataDir, root)
}

// Load reads every sub-store file from dataDir. A missing file (pack,
// strings, metadata, sources, or registry) loads as an empty sub-store; a
// malformed pack or metadata file is a fatal corrupt-store error.
func Load(dataDir, root string) (*Store, error) {
	pack, err := loadOrEmptyPack(filepath.Join(dataDir, fileMoves))
	if err != nil {
		return nil, err
	}
	strs, err := loadOrEmptyStrings(filepath.Join(dataDir, fileStrings))
	if err != nil {
		return nil, err
	}
	meta, err := loadOrEmptyMetadata(filepath.Join(dataDir, fileMetadata))
	if err != nil {
		return nil, err
	}
	sources, err := LoadSourceStoreFromPath(filepath.Join(dataDir, fileSources))
	if err != nil {
		return nil, err
	}
	registry, err := LoadGameRegistryFromPath(filepath.Join(dataDir, fileRegistry))
	if err != nil {
		return nil, err
	}
	return &Store{
		Pack:     pack,
		Strings:  strs,
		Metadata: meta,
		Sources:  sources,
		Registry: registry,
		Logger:   nopLogger{},
		dataDir:  dataDir,
		root:     root,
	}, nil
}

func loadOrEmptyPack(path string) (*PackFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewPackFile(), nil
	}
	return LoadPackFileFromPath(path)
}

func loadOrEmptyStrings(path string) (*StringPool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewStringPool(), nil
	}
	return LoadStringPoolFromPath(path)
}

func loadOrEmptyMetadata(path string) (*MetadataStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewMetadataStore(), nil
	}
	return LoadMetadataStoreFromPath(path)
}

// Save flushes every sub-store to dataDir, rebuilding the sorted index file
// from the pack's insertion order. It is the only durability point; a crash
// between Save calls loses every intervening ingestion (spec §5).
func (s *Store) Save() error {
	if err := s.Pack.SaveToFile(filepath.Join(s.dataDir, fileMoves)); err != nil {
		return err
	}
	idx := BuildPackIndex(s.Pack.InsertionOrder())
	if err := idx.SaveToFile(filepath.Join(s.dataDir, fileIdx)); err != nil {
		return err
	}
	if err := s.Strings.SaveToFile(filepath.Join(s.dataDir, fileStrings)); err != nil {
		return err
	}
	if err := s.Metadata.SaveToFile(filepath.Join(s.dataDir, fileMetadata)); err != nil {
		return err
	}
	if err := s.Sources.SaveToFile(filepath.Join(s.dataDir, fileSources)); err != nil {
		return err
	}
	if err := s.Registry.SaveToFile(filepath.Join(s.dataDir, fileRegistry)); err != nil {
		return err
	}
	return nil
}

// DataDir returns the directory actually holding the store's files (the
// `.positional` subdirectory in workspace mode, or the bare-store root).
func (s *Store) DataDir() string { return s.dataDir }

// Root returns the workspace root (equal to DataDir in bare-store mode).
func (s *Store) Root() string { return s.root }
