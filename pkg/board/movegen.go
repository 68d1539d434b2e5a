package board

// Move generation completes the pseudo-legal/legal move scaffolding left unfinished
// upstream. Chess960 castling (free rook placement) is not generated; the Seeder only
// marks Chess960 positions for protocol purposes (UCI_Chess960) and never relies on
// castling moves during its random walk, so standard E1/E8-anchored castling generation
// is enough to cover the legal/pseudo-legal move properties this package exposes.

// Copy returns an independent copy of the position, suitable for mutation via Move
// without affecting the original.
func (p *Position) Copy() *Position {
	cp := *p
	return &cp
}

// PseudoLegalMoves returns all pseudo-legal moves for the given color, ignoring whether
// the move leaves that color's own king in check.
func (p *Position) PseudoLegalMoves(c Color) []Move {
	var ret []Move

	own := p.pieces[c][NoPiece]
	opp := p.pieces[c.Opponent()][NoPiece]

	for _, piece := range []Piece{Knight, Bishop, Rook, Queen, King} {
		origin := p.pieces[c][piece]
		for origin != 0 {
			from := origin.LastPopSquare()
			origin ^= BitMask(from)

			attacks := Attackboard(p.rotated, from, piece) &^ own
			for _, targets := range []Bitboard{attacks &^ opp, attacks & opp} {
				for targets != 0 {
					to := targets.LastPopSquare()
					targets ^= BitMask(to)

					ret = append(ret, p.buildMove(c, piece, from, to, NoPiece))
				}
			}
		}
	}

	ret = append(ret, p.pawnMoves(c, own, opp)...)
	ret = append(ret, p.castlingMoves(c)...)
	return ret
}

// LegalMoves filters PseudoLegalMoves to those that do not leave the mover's own king
// in check.
func (p *Position) LegalMoves(c Color) []Move {
	var ret []Move
	for _, m := range p.PseudoLegalMoves(c) {
		if next, ok := p.Move(c, m); ok && !next.IsChecked(c) {
			ret = append(ret, m)
		}
	}
	return ret
}

func (p *Position) pawnMoves(c Color, own, opp Bitboard) []Move {
	var ret []Move

	pawns := p.pieces[c][Pawn]
	all := own | opp
	promo := PawnPromotionRank(c)

	single := PawnMoveboard(all, c, pawns)
	for targets := single; targets != 0; {
		to := targets.LastPopSquare()
		targets ^= BitMask(to)

		from := pawnOrigin(c, to, 1)
		ret = append(ret, p.buildPawnMoves(c, from, to, promo)...)
	}

	jumpRank := PawnJumpRank(c)
	double := PawnMoveboard(all, c, single) & jumpRank
	for targets := double; targets != 0; {
		to := targets.LastPopSquare()
		targets ^= BitMask(to)

		from := pawnOrigin(c, to, 2)
		ret = append(ret, Move{Type: Jump, Piece: Pawn, From: from, To: to})
	}

	captures := PawnCaptureboard(c, pawns) & opp
	for targets := captures; targets != 0; {
		to := targets.LastPopSquare()
		targets ^= BitMask(to)

		for _, from := range pawnCaptureOrigins(c, to) {
			if !pawns.IsSet(from) {
				continue
			}
			ret = append(ret, p.buildPawnMoves(c, from, to, promo)...)
		}
	}

	if ep, ok := p.EnPassant(); ok {
		for _, from := range pawnCaptureOrigins(c, ep) {
			if pawns.IsSet(from) {
				ret = append(ret, Move{Type: EnPassant, Piece: Pawn, From: from, To: ep})
			}
		}
	}

	return ret
}

// castlingMoves returns the pseudo-legal castling moves for the given color: the king
// must not currently be in check, the squares between king and rook must be empty, and
// the squares the king passes through (including its destination) must not be attacked.
// Only the standard E1/E8-anchored king position is supported.
func (p *Position) castlingMoves(c Color) []Move {
	var ret []Move

	kingSq := E1
	if c == Black {
		kingSq = E8
	}
	if p.pieces[c][King].LastPopSquare() != kingSq || p.IsChecked(c) {
		return nil
	}
	kingSide, queenSide := RightsFor(c)

	rank := 0
	if c == Black {
		rank = 56
	}
	f, g := Square(rank+2), Square(rank+1)       // kingside transit, landing
	d, cc, b := Square(rank+4), Square(rank+5), Square(rank+6) // queenside transit, landing, rook path

	if p.castling.IsAllowed(kingSide) && p.IsEmpty(f) && p.IsEmpty(g) &&
		!p.IsAttacked(c, f) && !p.IsAttacked(c, g) {
		ret = append(ret, Move{Type: KingSideCastle, Piece: King, From: kingSq, To: g})
	}
	if p.castling.IsAllowed(queenSide) && p.IsEmpty(d) && p.IsEmpty(cc) && p.IsEmpty(b) &&
		!p.IsAttacked(c, d) && !p.IsAttacked(c, cc) {
		ret = append(ret, Move{Type: QueenSideCastle, Piece: King, From: kingSq, To: cc})
	}

	return ret
}

func (p *Position) buildPawnMoves(c Color, from, to Square, promo Bitboard) []Move {
	typ := Push
	if !p.IsEmpty(to) {
		typ = Capture
	}

	if !promo.IsSet(to) {
		return []Move{p.buildMove(c, Pawn, from, to, NoPiece)}
	}

	var ret []Move
	for _, piece := range []Piece{Queen, Rook, Knight, Bishop} {
		m := p.buildMove(c, Pawn, from, to, piece)
		if typ == Capture {
			m.Type = CapturePromotion
		} else {
			m.Type = Promotion
		}
		ret = append(ret, m)
	}
	return ret
}

func (p *Position) buildMove(c Color, piece Piece, from, to Square, promo Piece) Move {
	m := Move{Type: Normal, Piece: piece, From: from, To: to, Promotion: promo}
	if !p.IsEmpty(to) {
		if _, captured, ok := p.Square(to); ok {
			m.Type = Capture
			m.Capture = captured
		}
	}
	return m
}

func pawnOrigin(c Color, to Square, ranks int) Square {
	if c == White {
		return to - Square(8*ranks)
	}
	return to + Square(8*ranks)
}

func pawnCaptureOrigins(c Color, to Square) []Square {
	var ret []Square
	if to.File() != FileA {
		ret = append(ret, pawnOrigin(c, to, 1)+1)
	}
	if to.File() != FileH {
		ret = append(ret, pawnOrigin(c, to, 1)-1)
	}
	return ret
}

// Move applies the given pseudo-legal move and returns the resulting position, plus
// whether the move was structurally valid (from square occupied by the mover's piece).
func (p *Position) Move(c Color, m Move) (*Position, bool) {
	_, piece, ok := p.Square(m.From)
	if !ok {
		return nil, false
	}

	next := p.Copy()
	next.xor(m.From, c, piece)

	if m.Type == Capture || m.Type == CapturePromotion {
		if _, captured, ok := next.Square(m.To); ok {
			next.xor(m.To, c.Opponent(), captured)
		}
	}
	if m.Type == EnPassant {
		victim := m.To - 8
		if c == Black {
			victim = m.To + 8
		}
		next.xor(victim, c.Opponent(), Pawn)
	}

	placed := piece
	if m.Promotion.IsValid() {
		placed = m.Promotion
	}
	next.xor(m.To, c, placed)

	if m.Type == KingSideCastle || m.Type == QueenSideCastle {
		rookFrom, rookTo := castlingRookSquares(c, m.Type)
		next.xor(rookFrom, c, Rook)
		next.xor(rookTo, c, Rook)
	}

	next.enpassant = ZeroSquare
	if m.Type == Jump {
		if c == White {
			next.enpassant = m.From + 8
		} else {
			next.enpassant = m.From - 8
		}
	}

	next.castling = updateCastlingRights(next.castling, m.From, m.To)
	return next, true
}

// castlingRookSquares returns the rook's origin and destination for a castling move.
func castlingRookSquares(c Color, typ MoveType) (Square, Square) {
	rank := Square(0)
	if c == Black {
		rank = 56
	}
	if typ == KingSideCastle {
		return rank, rank + 2 // H-file rook to F-file
	}
	return rank + 7, rank + 4 // A-file rook to D-file
}

func updateCastlingRights(c Castling, from, to Square) Castling {
	switch from {
	case E1:
		c &^= WhiteKingSideCastle | WhiteQueenSideCastle
	case E8:
		c &^= BlackKingSideCastle | BlackQueenSideCastle
	}
	for _, sq := range []Square{from, to} {
		switch sq {
		case A1:
			c &^= WhiteQueenSideCastle
		case H1:
			c &^= WhiteKingSideCastle
		case A8:
			c &^= BlackQueenSideCastle
		case H8:
			c &^= BlackKingSideCastle
		}
	}
	return c
}
