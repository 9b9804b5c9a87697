package chessboard

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// attacked reports whether sq is attacked by any piece of color side in b's
// current position. Used both for check detection and for filtering
// castling through/out-of check.
func (b *Board) attacked(sq int, side Color) bool {
	file, rank := fileOf(sq), rankOf(sq)

	// Pawn attacks: a pawn of `side` attacks diagonally forward from its own
	// square, so we look one rank behind (from side's perspective) sq.
	dr := 1
	if side == White {
		dr = -1
	} else {
		dr = 1
	}
	for _, df := range [2]int{-1, 1} {
		f, r := file+df, rank+dr
		if onBoard(f, r) {
			p := b.squares[squareAt(f, r)]
			if p.Kind == Pawn && p.Color == side {
				return true
			}
		}
	}

	for _, o := range knightOffsets {
		f, r := file+o[0], rank+o[1]
		if onBoard(f, r) {
			p := b.squares[squareAt(f, r)]
			if p.Kind == Knight && p.Color == side {
				return true
			}
		}
	}

	for _, o := range kingOffsets {
		f, r := file+o[0], rank+o[1]
		if onBoard(f, r) {
			p := b.squares[squareAt(f, r)]
			if p.Kind == King && p.Color == side {
				return true
			}
		}
	}

	for _, d := range bishopDirs {
		f, r := file+d[0], rank+d[1]
		for onBoard(f, r) {
			p := b.squares[squareAt(f, r)]
			if p.Kind != Empty {
				if p.Color == side && (p.Kind == Bishop || p.Kind == Queen) {
					return true
				}
				break
			}
			f, r = f+d[0], r+d[1]
		}
	}
	for _, d := range rookDirs {
		f, r := file+d[0], rank+d[1]
		for onBoard(f, r) {
			p := b.squares[squareAt(f, r)]
			if p.Kind != Empty {
				if p.Color == side && (p.Kind == Rook || p.Kind == Queen) {
					return true
				}
				break
			}
			f, r = f+d[0], r+d[1]
		}
	}
	return false
}

func (b *Board) kingSquare(side Color) int {
	for sq, p := range b.squares {
		if p.Kind == King && p.Color == side {
			return sq
		}
	}
	return -1
}

func (b *Board) inCheck(side Color) bool {
	k := b.kingSquare(side)
	return k >= 0 && b.attacked(k, side.Other())
}

var promoKinds = [4]Kind{Queen, Rook, Bishop, Knight}

// pseudoLegal generates every move for the side to move that observes piece
// movement rules but may leave its own king in check.
func (b *Board) pseudoLegal() []move {
	var moves []move
	side := b.side
	for sq, p := range b.squares {
		if p.Kind == Empty || p.Color != side {
			continue
		}
		file, rank := fileOf(sq), rankOf(sq)
		switch p.Kind {
		case Pawn:
			moves = append(moves, b.pawnMoves(sq, file, rank, side)...)
		case Knight:
			for _, o := range knightOffsets {
				f, r := file+o[0], rank+o[1]
				if onBoard(f, r) {
					moves = appendStep(moves, b, sq, squareAt(f, r), Knight, side)
				}
			}
		case Bishop:
			moves = appendSlide(moves, b, sq, bishopDirs[:], Bishop, side)
		case Rook:
			moves = appendSlide(moves, b, sq, rookDirs[:], Rook, side)
		case Queen:
			moves = appendSlide(moves, b, sq, bishopDirs[:], Queen, side)
			moves = appendSlide(moves, b, sq, rookDirs[:], Queen, side)
		case King:
			for _, o := range kingOffsets {
				f, r := file+o[0], rank+o[1]
				if onBoard(f, r) {
					moves = appendStep(moves, b, sq, squareAt(f, r), King, side)
				}
			}
			moves = append(moves, b.castleMoves(sq, side)...)
		}
	}
	return moves
}

func appendStep(moves []move, b *Board, from, to int, kind Kind, side Color) []move {
	target := b.squares[to]
	if target.Kind != Empty && target.Color == side {
		return moves
	}
	m := move{from: from, to: to, piece: kind, color: side}
	if target.Kind != Empty {
		m.capture = true
		m.captureKind = target.Kind
	}
	return append(moves, m)
}

func appendSlide(moves []move, b *Board, from int, dirs [][2]int, kind Kind, side Color) []move {
	file, rank := fileOf(from), rankOf(from)
	for _, d := range dirs {
		f, r := file+d[0], rank+d[1]
		for onBoard(f, r) {
			to := squareAt(f, r)
			target := b.squares[to]
			if target.Kind != Empty && target.Color == side {
				break
			}
			m := move{from: from, to: to, piece: kind, color: side}
			if target.Kind != Empty {
				m.capture = true
				m.captureKind = target.Kind
				moves = append(moves, m)
				break
			}
			moves = append(moves, m)
			f, r = f+d[0], r+d[1]
		}
	}
	return moves
}

func (b *Board) pawnMoves(sq, file, rank int, side Color) []move {
	var moves []move
	dir, startRank, promoRank := 1, 1, 7
	if side == Black {
		dir, startRank, promoRank = -1, 6, 0
	}

	oneRank := rank + dir
	if onBoard(file, oneRank) {
		oneSq := squareAt(file, oneRank)
		if b.squares[oneSq].Kind == Empty {
			moves = append(moves, pawnAdvance(sq, oneSq, side, oneRank == promoRank)...)
			if rank == startRank {
				twoSq := squareAt(file, rank+2*dir)
				if b.squares[twoSq].Kind == Empty {
					moves = append(moves, move{from: sq, to: twoSq, piece: Pawn, color: side})
				}
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		f, r := file+df, rank+dir
		if !onBoard(f, r) {
			continue
		}
		to := squareAt(f, r)
		target := b.squares[to]
		if target.Kind != Empty && target.Color != side {
			caps := pawnAdvance(sq, to, side, r == promoRank)
			for i := range caps {
				caps[i].capture = true
				caps[i].captureKind = target.Kind
			}
			moves = append(moves, caps...)
		} else if target.Kind == Empty && to == b.epSquare {
			moves = append(moves, move{from: sq, to: to, piece: Pawn, color: side, capture: true, captureKind: Pawn, isEP: true})
		}
	}
	return moves
}

func pawnAdvance(from, to int, side Color, isPromo bool) []move {
	if !isPromo {
		return []move{{from: from, to: to, piece: Pawn, color: side}}
	}
	out := make([]move, 0, len(promoKinds))
	for _, k := range promoKinds {
		out = append(out, move{from: from, to: to, piece: Pawn, color: side, promo: k})
	}
	return out
}

func (b *Board) castleMoves(kingSq int, side Color) []move {
	var moves []move
	rank := 0
	kingSide, queenSide := b.castleWK, b.castleWQ
	if side == Black {
		rank = 7
		kingSide, queenSide = b.castleBK, b.castleBQ
	}
	if kingSq != squareAt(4, rank) {
		return nil
	}
	opp := side.Other()
	if b.inCheck(side) {
		return nil
	}
	if kingSide {
		f5, f6 := squareAt(5, rank), squareAt(6, rank)
		if b.squares[f5].Kind == Empty && b.squares[f6].Kind == Empty &&
			!b.attacked(f5, opp) && !b.attacked(f6, opp) {
			moves = append(moves, move{from: kingSq, to: f6, piece: King, color: side, isCastleK: true})
		}
	}
	if queenSide {
		f1, f2, f3 := squareAt(1, rank), squareAt(2, rank), squareAt(3, rank)
		if b.squares[f1].Kind == Empty && b.squares[f2].Kind == Empty && b.squares[f3].Kind == Empty &&
			!b.attacked(f3, opp) && !b.attacked(f2, opp) {
			moves = append(moves, move{from: kingSq, to: f2, piece: King, color: side, isCastleQ: true})
		}
	}
	return moves
}

// legalMoves returns every move that does not leave the moving side's own
// king in check.
func (b *Board) legalMoves() []move {
	side := b.side
	var out []move
	for _, m := range b.pseudoLegal() {
		cp := b.Clone()
		cp.apply(m)
		if !cp.inCheck(side) {
			out = append(out, m)
		}
	}
	return out
}
