package ccamc

import "fmt"

// EcoChunkSize is the chunk width used when materialising ECO prefix blobs:
// 22, not the full 27-slot blob capacity, leaving 5 slots of headroom so
// that the same blob can still be prefix-matched by a longer game that
// diverges inside it — a density/dedup-granularity tradeoff (spec §4.10).
const EcoChunkSize = 22

// MaxVariationDepth bounds recursive variation ingestion; a PGN tree
// nesting variations deeper than this is treated as corrupt input rather
// than risking a stack overflow (spec §9).
const MaxVariationDepth = 256

// IngestResult is the (final_move_hash, metadata_hash) pair returned by a
// successful ingestion.
type IngestResult struct {
	GameID        string
	FinalMoveHash Hash64
	MetadataHash  Hash64
}

// IngestGame decomposes game into packed moves, walks the ECO prefix trie,
// performs greedy longest-match deduplication against the existing pack,
// extracts annotations and nested variations into their own chains, and
// registers the result under gameID. Re-ingesting byte-identical input is
// idempotent: it reproduces the same hashes and adds no new blobs (spec §8,
// property 4), because every step below is itself a pure function of
// (parent, moves) or (tags, annotations, final hash).
//
// An illegal mainline move is a fatal corrupt-input error for this game;
// malformed variations are caught locally, logged, and do not abort
// ingestion of the host game (spec §7).
func (s *Store) IngestGame(game PGNGame, gameID string, sourceHash Hash64) (*IngestResult, error) {
	board := s.NewBoard()
	board.Reset()

	mainline := game.Mainline()
	packed := make([]PackedMove, 0, len(mainline))
	for i, node := range mainline {
		mv, err := board.ApplySAN(node.SAN())
		if err != nil {
			return nil, wrapErr(KindCorruptInput, fmt.Errorf("%w: game %q move %d (%q): %v", ErrCorruptInput, gameID, i+1, node.SAN(), err))
		}
		packed = append(packed, mv.Packed)
	}
	result := resultFromTag(game.Headers()["Result"])

	parent := InitBlobHash()
	moveIdx := 0
	if s.Eco != nil {
		parent, moveIdx = s.applyEcoPrefixes(packed)
	}
	finalHash := s.greedyIngestRemainder(packed, moveIdx, parent, result)

	meta := NewGameMetadata(finalHash)
	s.extractHeaders(game, meta)
	if err := s.extractAnnotations(mainline, meta, 0, false, packed); err != nil {
		return nil, err
	}

	metaHash := s.Metadata.Put(meta)
	s.Registry.Put(&RegistryEntry{
		GameID:     gameID,
		FinalHash:  finalHash,
		MetaHash:   metaHash,
		SourceHash: sourceHash,
	})
	return &IngestResult{GameID: gameID, FinalMoveHash: finalHash, MetadataHash: metaHash}, nil
}

// resultFromTag maps a PGN Result tag value to its blob result code. An
// unrecognised or missing value (including the in-progress marker "*") is
// ResultUnknown.
func resultFromTag(tag string) GameResult {
	switch tag {
	case "1-0":
		return ResultWhiteWins
	case "0-1":
		return ResultBlackWins
	case "1/2-1/2":
		return ResultDraw
	default:
		return ResultUnknown
	}
}

// applyEcoPrefixes materialises every ECO prefix matched against packed,
// shortest first, so shorter canonical prefixes are instantiated (and
// available for dedup by later games) before longer ones that extend them.
// It returns the parent hash and ply count after the last matched prefix.
func (s *Store) applyEcoPrefixes(packed []PackedMove) (parent Hash64, moveIdx int) {
	parent = InitBlobHash()
	moveIdx = 0
	matches := s.Eco.MatchPrefixes(packed)
	for _, m := range matches {
		targetDepth := len(m.Moves)
		if targetDepth <= moveIdx {
			continue
		}
		for moveIdx < targetDepth {
			chunkSize := minInt(EcoChunkSize, targetDepth-moveIdx)
			chunk := packed[moveIdx : moveIdx+chunkSize]
			if hash, ok := s.Pack.Lookup(parent, chunk); ok {
				parent = hash
			} else {
				blob := &Blob{Parent: parent, Result: ResultUnknown}
				copy(blob.Moves[:], chunk)
				parent = s.Pack.AddBlob(blob)
			}
			moveIdx += chunkSize
		}
	}
	return parent, moveIdx
}

// greedyIngestRemainder applies the longest-match-first dedup loop of spec
// §4.10 step 5 to packed[moveIdx:], starting from parent. The result code
// is attached only to the final blob of the mainline.
func (s *Store) greedyIngestRemainder(packed []PackedMove, moveIdx int, parent Hash64, result GameResult) Hash64 {
	for moveIdx < len(packed) {
		remaining := len(packed) - moveIdx
		matched := false
		for chunkSize := minInt(MaxMovesPerBlob, remaining); chunkSize >= 1; chunkSize-- {
			chunk := packed[moveIdx : moveIdx+chunkSize]
			if hash, ok := s.Pack.Lookup(parent, chunk); ok {
				parent = hash
				moveIdx += chunkSize
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		chunkSize := minInt(MaxMovesPerBlob, remaining)
		chunk := packed[moveIdx : moveIdx+chunkSize]
		isLast := moveIdx+chunkSize == len(packed)
		blobResult := ResultUnknown
		if isLast {
			blobResult = result
		}
		blob := &Blob{Parent: parent, Result: blobResult}
		copy(blob.Moves[:], chunk)
		parent = s.Pack.AddBlob(blob)
		moveIdx += chunkSize
	}
	return parent
}

// extractHeaders splits game's headers into the fixed STR roster and the
// extra-tag map, interning every string through the pool.
func (s *Store) extractHeaders(game PGNGame, meta *GameMetadata) {
	for name, value := range game.Headers() {
		valueHash := s.Strings.Put(value)
		if id, ok := STRTagID(name); ok {
			meta.STRTags[id] = valueHash
			continue
		}
		nameHash := s.Strings.Put(name)
		meta.ExtraTags[nameHash] = valueHash
	}
}

// extractAnnotations walks nodes recording, per mainline move index,
// comments, NAGs, and variation forks. ownPacked is the packed mainline that
// nodes belongs to (the host game's, or a variation's own), used to replay a
// fork-point board for any variation encountered. skipFirstNodeVariations is
// true only when nodes is itself a variation's own mainline: the fork point
// (index 0) must not re-emit the sibling variations already handled by its
// parent, only its own subsequent forks (spec §4.11).
func (s *Store) extractAnnotations(nodes []PGNNode, meta *GameMetadata, depth int, skipFirstNodeVariations bool, ownPacked []PackedMove) error {
	for i, node := range nodes {
		idx := uint64(i)
		for _, c := range node.CommentsBefore() {
			meta.Annotations = append(meta.Annotations, s.commentRecord(idx, c, true))
		}
		for _, c := range node.CommentsAfter() {
			meta.Annotations = append(meta.Annotations, s.commentRecord(idx, c, false))
		}
		for _, nag := range node.NAGs() {
			meta.Annotations = append(meta.Annotations, &AnnotationRecord{MoveIndex: idx, Type: AnnotationNAG, NAG: nag})
		}

		if i == 0 && skipFirstNodeVariations {
			continue
		}
		for _, variation := range node.Variations() {
			varMoveHash, varMetaHash, err := s.ingestVariation(variation, depth+1, ownPacked, i)
			if err != nil {
				s.Logger.Warnf("skipping malformed variation at move %d: %v", i, err)
				continue
			}
			meta.Annotations = append(meta.Annotations, &AnnotationRecord{
				MoveIndex:         idx,
				Type:              AnnotationVariation,
				VariationMoveHash: varMoveHash,
				VariationMetaHash: varMetaHash,
			})
		}
	}
	return nil
}

func (s *Store) commentRecord(idx uint64, c PGNComment, isPre bool) *AnnotationRecord {
	return &AnnotationRecord{
		MoveIndex:      idx,
		Type:           AnnotationComment,
		IsPre:          isPre,
		IsSemicolon:    c.IsSemicolon,
		CommentNewline: false,
		TextHash:       s.Strings.Put(c.Text),
	}
}

// ingestVariation ingests a branch forked at hostPacked[forkIndex] (which
// replaces that move) as an independent chain rooted at INIT_BLOB_HASH, not
// spliced to its fork point: variations are conceptually alternative games,
// and rooting them at INIT_BLOB_HASH keeps their chain hashes stable
// regardless of where they are referenced from, enabling dedup across
// different host games (spec §4.11). The variation's own moves are still
// packed starting from the actual fork-point position — replayed by
// fast-forwarding a fresh board through hostPacked[:forkIndex] — so that
// illegal continuations are rejected exactly as they would be over the
// board. ECO prefix matching is not re-applied inside variations, and a
// variation carries no PGN Result tag of its own, so its terminal blob is
// always ResultUnknown.
func (s *Store) ingestVariation(variation PGNGame, depth int, hostPacked []PackedMove, forkIndex int) (moveHash, metaHash Hash64, err error) {
	if depth > MaxVariationDepth {
		return 0, 0, wrapErr(KindCorruptInput, fmt.Errorf("%w: depth %d", ErrVariationDepthExceeded, depth))
	}
	board := s.NewBoard()
	board.Reset()
	for i := 0; i < forkIndex && i < len(hostPacked); i++ {
		if _, ok := DecodeMovePacked(hostPacked[i], board); !ok {
			return 0, 0, wrapErr(KindCorruptInput, fmt.Errorf("%w: cannot replay to fork point at move %d", ErrCorruptInput, forkIndex))
		}
	}

	nodes := variation.Mainline()
	packed := make([]PackedMove, 0, len(nodes))
	for i, node := range nodes {
		mv, err := board.ApplySAN(node.SAN())
		if err != nil {
			return 0, 0, wrapErr(KindCorruptInput, fmt.Errorf("%w: variation move %d (%q): %v", ErrCorruptInput, i+1, node.SAN(), err))
		}
		packed = append(packed, mv.Packed)
	}

	finalHash := s.greedyIngestRemainder(packed, 0, InitBlobHash(), ResultUnknown)

	meta := NewGameMetadata(finalHash)
	if err := s.extractAnnotations(nodes, meta, depth, true, packed); err != nil {
		return 0, 0, err
	}
	metaHash = s.Metadata.Put(meta)
	return finalHash, metaHash, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
