// Package pgn is a minimal PGN (Portable Game Notation) reader producing
// ccamc.PGNGame/ccamc.PGNNode trees. It is a thin, forgiving tokeniser and
// recursive-descent parser — not a full-fidelity PGN toolchain — since ccamc
// only needs a game tree with headers, a mainline, comments, NAGs, and
// nested variations.
package pgn

import "github.com/positional/ccamc/ccamc"

// Game is one parsed PGN game (or, when nested, one variation). It
// satisfies ccamc.PGNGame.
type Game struct {
	headers  map[string]string
	mainline []*Node
}

// Headers returns the game's tag pairs (empty for a variation).
func (g *Game) Headers() map[string]string { return g.headers }

// Mainline returns the game's moves as ccamc.PGNNode values.
func (g *Game) Mainline() []ccamc.PGNNode {
	out := make([]ccamc.PGNNode, len(g.mainline))
	for i, n := range g.mainline {
		out[i] = n
	}
	return out
}

// Node is one ply: its SAN text plus any comments, NAGs, and variations
// attached to it. It satisfies ccamc.PGNNode.
type Node struct {
	san            string
	nags           []uint8
	commentsBefore []ccamc.PGNComment
	commentsAfter  []ccamc.PGNComment
	variations     []*Game
}

func (n *Node) SAN() string                        { return n.san }
func (n *Node) NAGs() []uint8                       { return n.nags }
func (n *Node) CommentsBefore() []ccamc.PGNComment { return n.commentsBefore }
func (n *Node) CommentsAfter() []ccamc.PGNComment  { return n.commentsAfter }

func (n *Node) Variations() []ccamc.PGNGame {
	out := make([]ccamc.PGNGame, len(n.variations))
	for i, v := range n.variations {
		out[i] = v
	}
	return out
}

// nagFromGlyph maps the traditional annotation glyphs PGN allows attached
// directly to a move (e.g. "Nf3!?") to their Numeric Annotation Glyph code.
func nagFromGlyph(glyph string) (uint8, bool) {
	switch glyph {
	case "!":
		return 1, true
	case "?":
		return 2, true
	case "!!":
		return 3, true
	case "??":
		return 4, true
	case "!?":
		return 5, true
	case "?!":
		return 6, true
	default:
		return 0, false
	}
}
