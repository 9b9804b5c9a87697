package ccamc

import "fmt"

// ReconstructedNode is one rehydrated mainline ply: its decoded move plus
// whatever annotations were recorded at that move index.
type ReconstructedNode struct {
	Move           Move
	NAGs           []uint8
	CommentsBefore []PGNComment
	CommentsAfter  []PGNComment
	Variations     []*ReconstructedGame
}

// ReconstructedGame is a fully rehydrated game tree: headers plus an
// annotated mainline, suitable for handing to an external PGN writer.
type ReconstructedGame struct {
	Headers  map[string]string
	Mainline []*ReconstructedNode
}

// chainBlobs collects the blob chain from finalHash back to a sentinel
// terminator (INIT_BLOB_HASH, ORPHAN_PARENT_HASH, or the zero hash),
// returning it in chronological (root-first) order.
func (s *Store) chainBlobs(finalHash Hash64) ([]*Blob, error) {
	var chain []*Blob
	current := finalHash
	for current != InitBlobHash() && current != OrphanParentHash() && current != 0 {
		b, ok := s.Pack.Get(current)
		if !ok {
			return nil, wrapErr(KindIntegrity, fmt.Errorf("%w: missing blob %s", ErrBrokenChain, current))
		}
		chain = append(chain, b)
		current = b.Parent
	}
	// Reverse into chronological order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// ReconstructMoves rewalks the backward-linked chain rooted at finalHash and
// replays it against a fresh board, decoding each packed move and stopping
// at the first empty-slot sentinel within any blob (spec §4.12).
func (s *Store) ReconstructMoves(finalHash Hash64) ([]Move, error) {
	board := s.NewBoard()
	board.Reset()
	return s.reconstructMovesOnBoard(finalHash, board)
}

// reconstructMovesOnBoard decodes finalHash's chain against an
// already-positioned board rather than a fresh one. Host mainlines use a
// freshly reset board; a variation's chain is decoded against a board
// fast-forwarded to its fork point, since its packed moves were captured
// relative to that position, not the initial one (spec §9 open question 2).
func (s *Store) reconstructMovesOnBoard(finalHash Hash64, board Board) ([]Move, error) {
	chain, err := s.chainBlobs(finalHash)
	if err != nil {
		return nil, err
	}
	var moves []Move
	for _, b := range chain {
		for _, pm := range b.Moves {
			mv, ok := DecodeMovePacked(pm, board)
			if !ok {
				break
			}
			moves = append(moves, mv)
		}
	}
	return moves, nil
}

// forkBoard returns a fresh board fast-forwarded through moves[:upTo],
// i.e. positioned exactly as it was when a variation at mainline index upTo
// branched off.
func (s *Store) forkBoard(moves []Move, upTo int) (Board, error) {
	board := s.NewBoard()
	board.Reset()
	for i := 0; i < upTo && i < len(moves); i++ {
		if _, ok := DecodeMovePacked(moves[i].Packed, board); !ok {
			return nil, wrapErr(KindCorruptStore, fmt.Errorf("%w: cannot replay to fork point %d", ErrCorruptStore, upTo))
		}
	}
	return board, nil
}

// ReconstructPGN loads gameID's metadata and emits its full game tree:
// headers rehydrated from the STR and extra tag maps, mainline from
// ReconstructMoves, and per-move-index annotations (comments, NAGs,
// recursively reconstructed variations).
func (s *Store) ReconstructPGN(gameID string) (*ReconstructedGame, error) {
	entry, ok := s.Registry.Get(gameID)
	if !ok {
		return nil, wrapErr(KindNotFound, fmt.Errorf("%w: game %q", ErrNotFound, gameID))
	}
	meta, ok := s.Metadata.Get(entry.MetaHash)
	if !ok {
		return nil, wrapErr(KindCorruptStore, fmt.Errorf("%w: missing metadata %s for game %q", ErrCorruptStore, entry.MetaHash, gameID))
	}
	board := s.NewBoard()
	board.Reset()
	return s.reconstructFromMetadata(meta, board)
}

// reconstructFromMetadata rehydrates meta's game tree, decoding its own
// chain against board — already positioned at the right starting point: a
// fresh reset board for the host game, or a fork-positioned board when meta
// belongs to a variation (spec §9 open question 2).
func (s *Store) reconstructFromMetadata(meta *GameMetadata, board Board) (*ReconstructedGame, error) {
	moves, err := s.reconstructMovesOnBoard(meta.FinalMoveHash, board)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(meta.STRTags)+len(meta.ExtraTags))
	for id, valueHash := range meta.STRTags {
		name, ok := STRTagName(id)
		if !ok {
			continue
		}
		value, _ := s.Strings.Get(valueHash)
		headers[name] = value
	}
	for nameHash, valueHash := range meta.ExtraTags {
		name, _ := s.Strings.Get(nameHash)
		value, _ := s.Strings.Get(valueHash)
		headers[name] = value
	}

	nodes := make([]*ReconstructedNode, len(moves))
	for i, mv := range moves {
		nodes[i] = &ReconstructedNode{Move: mv}
	}

	for _, rec := range meta.Annotations {
		if rec.MoveIndex >= uint64(len(nodes)) {
			// Metadata referencing an out-of-range move index is corrupt,
			// but non-fatal for reconstruction: drop the annotation.
			continue
		}
		node := nodes[rec.MoveIndex]
		switch rec.Type {
		case AnnotationComment:
			text, _ := s.Strings.Get(rec.TextHash)
			c := PGNComment{Text: text, IsSemicolon: rec.IsSemicolon}
			if rec.IsPre {
				node.CommentsBefore = append(node.CommentsBefore, c)
			} else {
				node.CommentsAfter = append(node.CommentsAfter, c)
			}
		case AnnotationNAG:
			node.NAGs = append(node.NAGs, rec.NAG)
		case AnnotationVariation:
			varMeta, ok := s.Metadata.Get(rec.VariationMetaHash)
			if !ok {
				s.Logger.Warnf("dropping variation at move %d: missing metadata %s", rec.MoveIndex, rec.VariationMetaHash)
				continue
			}
			fork, err := s.forkBoard(moves, int(rec.MoveIndex))
			if err != nil {
				s.Logger.Warnf("dropping variation at move %d: %v", rec.MoveIndex, err)
				continue
			}
			varGame, err := s.reconstructFromMetadata(varMeta, fork)
			if err != nil {
				s.Logger.Warnf("dropping variation at move %d: %v", rec.MoveIndex, err)
				continue
			}
			node.Variations = append(node.Variations, varGame)
		case AnnotationNewline:
			// Purely cosmetic; no structural effect on the reconstructed tree.
		}
	}

	return &ReconstructedGame{Headers: headers, Mainline: nodes}, nil
}
