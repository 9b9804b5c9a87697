package ccamc

// PackedMove is the 16-bit on-disk encoding of a single chess move: bits
// 0-5 are the from-square, bits 6-11 the to-square, bits 12-14 the
// promotion code, and bit 15 is reserved (always 0).
type PackedMove uint16

// Square is a board square numbered 0 (a1) to 63 (h8), rank-major.
type Square uint8

// PromotionPiece enumerates the packed promotion codes of spec §3.
type PromotionPiece uint8

const (
	PromotionNone PromotionPiece = iota
	PromotionQueen
	PromotionRook
	PromotionBishop
	PromotionKnight
)

const (
	fromMask      = 0x003F
	toShift       = 6
	toMask        = 0x0FC0
	promoShift    = 12
	promoMask     = 0x7000
	reservedShift = 15
)

// EmptySlotSentinel is the reserved packed value 0x0000: from == to == a1,
// which can never represent a legal move. It marks an unused move slot in a
// blob and terminates the move sequence on first occurrence.
const EmptySlotSentinel PackedMove = 0x0000

// EncodeMove packs a (from, to, promotion) triple into its 16-bit wire form.
func EncodeMove(from, to Square, promo PromotionPiece) PackedMove {
	return PackedMove(uint16(from)&fromMask |
		(uint16(to)<<toShift)&toMask |
		(uint16(promo)<<promoShift)&promoMask)
}

// Decode splits a packed move back into its fields without consulting a
// board. ok is false only for the empty-slot sentinel.
func (m PackedMove) Decode() (from, to Square, promo PromotionPiece, ok bool) {
	if m == EmptySlotSentinel {
		return 0, 0, PromotionNone, false
	}
	from = Square(uint16(m) & fromMask)
	to = Square((uint16(m) & toMask) >> toShift)
	promo = PromotionPiece((uint16(m) & promoMask) >> promoShift)
	return from, to, promo, true
}

// DecodeMovePacked decodes a packed move against a live board, rejecting it
// if the resulting move is not legal there. The decoder must be
// board-aware: promotion type and legality cannot be inferred from squares
// alone, and 0x0000 (from == to) always means "no move" regardless of board
// state (spec §4.1, invariant 5).
func DecodeMovePacked(m PackedMove, board Board) (Move, bool) {
	from, to, promo, ok := m.Decode()
	if !ok {
		return Move{}, false
	}
	return board.LegalMoveFor(from, to, promo)
}

// Move is the out-of-scope chess-engine representation of an applied move;
// ccamc only needs its packed form and SAN text, both supplied by the
// Board/PGNNode adapters.
type Move struct {
	Packed PackedMove
	SAN    string
}
