package ccamc

// Board is the out-of-scope chess-rules-engine contract (spec §1, §6). The
// ingestion and reconstruction engines never generate legal moves
// themselves; they replay SAN/UCI against a Board implementation and trust
// its verdict.
type Board interface {
	// Reset restores the board to the standard starting position.
	Reset()
	// ApplySAN parses and applies a move in Standard Algebraic Notation,
	// returning an error if it is not legal in the current position.
	ApplySAN(san string) (Move, error)
	// ApplyUCI applies a move given as a from/to square pair plus an
	// optional promotion piece, returning an error if it is not legal in
	// the current position.
	ApplyUCI(from, to Square, promotion PromotionPiece) (Move, error)
	// LegalMoveFor reports whether moving from->to with the given promotion
	// is legal in the current position, and if so returns it applied.
	LegalMoveFor(from, to Square, promotion PromotionPiece) (Move, bool)
	// Result reports the game result implied by the current position
	// (checkmate, stalemate, etc.), or ResultUnknown if the game is ongoing.
	Result() GameResult
}

// PGNGame is the out-of-scope PGN-tree contract: headers plus a mainline of
// PGNNodes, each of which may fork into further PGNGames (variations).
type PGNGame interface {
	Headers() map[string]string
	Mainline() []PGNNode
}

// PGNNode is one ply of a PGNGame's mainline (or a variation's mainline),
// carrying its own comments, NAGs, and forked variations.
type PGNNode interface {
	SAN() string
	NAGs() []uint8
	CommentsBefore() []PGNComment
	CommentsAfter() []PGNComment
	Variations() []PGNGame
}

// PGNComment is one comment attached to a move, distinguishing the
// brace-comment ("{ ... }") from the semicolon line-comment ("; ...").
type PGNComment struct {
	Text        string
	IsSemicolon bool
}

// Logger receives corrupt-input warnings that ingestion logs and continues
// past (spec §7). The default implementation is backed by klog at the CLI
// layer; tests may supply a no-op or recording Logger.
type Logger interface {
	Warnf(format string, args ...any)
}

// nopLogger discards every message; used when Store is constructed without
// an explicit Logger.
type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// ProgressFunc is invoked once per game processed during import/export, so a
// CLI-layer progress bar can track done/total without the engine importing
// a progress-bar library itself (SPEC_FULL.md §4.14 / ambient stack).
type ProgressFunc func(done, total int)
