package ccamc

import (
	"fmt"
	"io"
	"time"
)

// GameReader yields successive games from an import source, returning
// io.EOF once exhausted. It is the out-of-scope PGN-stream collaborator:
// ccamc only needs one game at a time, never a concrete file format.
type GameReader interface {
	Next() (PGNGame, error)
}

// SourceImportResult summarizes one IngestSource call.
type SourceImportResult struct {
	SourceHash    Hash64
	GamesIngested int
	GamesSkipped  int
}

// saveEveryNGames is how often IngestSource checkpoints the store to disk
// mid-import, so a crash partway through a large PGN file loses at most
// this many games rather than the whole import (spec §6).
const saveEveryNGames = 100

// IngestSource records a new source entry for raw (labelled label, already
// SHA-256-fingerprinted into sourceSHA256Hex by the caller via Sha256Hex)
// and ingests every game reader yields under it, checkpointing the store
// every saveEveryNGames games. total is the caller's best estimate of the
// game count, forwarded unchanged to progress for display purposes only. A
// malformed game is logged and skipped; it does not abort the import
// (spec §7).
func (s *Store) IngestSource(label string, byteSize int64, sourceSHA256Hex string, reader GameReader, total int, progress ProgressFunc) (*SourceImportResult, error) {
	sourceHash := s.Sources.Put(&SourceEntry{
		Label:        label,
		ImportedAt:   time.Now().UTC().Format(time.RFC3339),
		ByteSize:     byteSize,
		SourceSHA256: sourceSHA256Hex,
	})

	result := &SourceImportResult{SourceHash: sourceHash}
	for {
		game, err := reader.Next()
		if err == io.EOF {
			break
		}
		result.GamesIngested++
		n := result.GamesIngested
		if err != nil {
			result.GamesSkipped++
			s.Logger.Warnf("skipping malformed game %d: %v", n, err)
		} else {
			gameID := fmt.Sprintf("%s#%d", label, n)
			if _, err := s.IngestGame(game, gameID, sourceHash); err != nil {
				result.GamesSkipped++
				s.Logger.Warnf("skipping game %d (%s): %v", n, gameID, err)
			}
		}
		if progress != nil {
			progress(n, total)
		}
		if n%saveEveryNGames == 0 {
			if err := s.Save(); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

// ExportSource reconstructs every game whose source label is label, calling
// emit once per game in registry order. It returns KindNotFound if label
// names no known source.
func (s *Store) ExportSource(label string, emit func(*ReconstructedGame) error, progress ProgressFunc) (int, error) {
	sourceHashes := s.Sources.ByLabel(label)
	if len(sourceHashes) == 0 {
		return 0, wrapErr(KindNotFound, fmt.Errorf("%w: source %q", ErrNotFound, label))
	}
	want := make(map[Hash64]bool, len(sourceHashes))
	for _, h := range sourceHashes {
		want[h] = true
	}

	var ids []string
	for _, id := range s.Registry.GameIDs() {
		entry, _ := s.Registry.Get(id)
		if want[entry.SourceHash] {
			ids = append(ids, id)
		}
	}

	for i, id := range ids {
		game, err := s.ReconstructPGN(id)
		if err != nil {
			return i, err
		}
		if err := emit(game); err != nil {
			return i, err
		}
		if progress != nil {
			progress(i+1, len(ids))
		}
	}
	return len(ids), nil
}
