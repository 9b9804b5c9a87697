package chessboard

import (
	"fmt"

	"github.com/positional/ccamc/ccamc"
)

// ApplySAN parses san, resolves it against the legal moves available in the
// current position, applies it, and returns its packed + canonical-SAN
// form. An ambiguous or illegal token is an error.
func (b *Board) ApplySAN(san string) (ccamc.Move, error) {
	p, err := parseSAN(san)
	if err != nil {
		return ccamc.Move{}, fmt.Errorf("%q: %w", san, err)
	}
	legal := b.legalMoves()
	m, ok := match(p, legal)
	if !ok {
		return ccamc.Move{}, fmt.Errorf("%q: no unique legal move matches", san)
	}
	rendered := format(b, m, legal)
	b.apply(m)
	return ccamc.Move{
		Packed: ccamc.EncodeMove(ccamc.Square(m.from), ccamc.Square(m.to), kindToPromo(m.promo)),
		SAN:    rendered,
	}, nil
}

// ApplyUCI applies the from->to move with the given promotion if it is
// legal in the current position, returning its packed + canonical-SAN form.
func (b *Board) ApplyUCI(from, to ccamc.Square, promotion ccamc.PromotionPiece) (ccamc.Move, error) {
	mv, ok := b.LegalMoveFor(from, to, promotion)
	if !ok {
		return ccamc.Move{}, fmt.Errorf("%s%s: not a legal move", squareName(int(from)), squareName(int(to)))
	}
	return mv, nil
}

// LegalMoveFor reports whether from->to with the given promotion is one of
// the legal moves in the current position, applying it and returning its
// canonical SAN if so.
func (b *Board) LegalMoveFor(from, to ccamc.Square, promotion ccamc.PromotionPiece) (ccamc.Move, bool) {
	legal := b.legalMoves()
	wantPromo := promoToKind(promotion)
	for _, m := range legal {
		if m.from == int(from) && m.to == int(to) && m.promo == wantPromo {
			rendered := format(b, m, legal)
			b.apply(m)
			return ccamc.Move{
				Packed: ccamc.EncodeMove(from, to, promotion),
				SAN:    rendered,
			}, true
		}
	}
	return ccamc.Move{}, false
}

// Result reports the game's termination state implied by the current
// position: checkmate resolves to the winning side, stalemate to a draw,
// and anything else to ResultUnknown (the position is not terminal).
//
// Draws by insufficient material, repetition, and the fifty-move rule are
// not detected: a reconstructed board never needs to know about them, since
// the recorded result code is taken from the source PGN's result tag, not
// re-derived from the final position.
func (b *Board) Result() ccamc.GameResult {
	if len(b.legalMoves()) > 0 {
		return ccamc.ResultUnknown
	}
	if !b.inCheck(b.side) {
		return ccamc.ResultDraw
	}
	if b.side == White {
		return ccamc.ResultBlackWins
	}
	return ccamc.ResultWhiteWins
}

func kindToPromo(k Kind) ccamc.PromotionPiece {
	switch k {
	case Queen:
		return ccamc.PromotionQueen
	case Rook:
		return ccamc.PromotionRook
	case Bishop:
		return ccamc.PromotionBishop
	case Knight:
		return ccamc.PromotionKnight
	default:
		return ccamc.PromotionNone
	}
}

func promoToKind(p ccamc.PromotionPiece) Kind {
	switch p {
	case ccamc.PromotionQueen:
		return Queen
	case ccamc.PromotionRook:
		return Rook
	case ccamc.PromotionBishop:
		return Bishop
	case ccamc.PromotionKnight:
		return Knight
	default:
		return Empty
	}
}
