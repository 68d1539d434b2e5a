// Package chess wraps the board/fen chess-rules library into the single value-semantics
// Position the mining pipeline passes around: a FEN-addressable snapshot plus the game
// metadata (turn, move counters, Chess960 flag) the rules library tracks separately.
package chess

import (
	"fmt"

	"github.com/herohde/tacticore/pkg/board"
	"github.com/herohde/tacticore/pkg/board/fen"
)

// Position is an opaque, legal chess position with value semantics: copying a Position
// never aliases mutable state with its source.
type Position struct {
	pos       *board.Position
	turn      board.Color
	noprogress int
	fullmoves int
	chess960  bool
}

// Decode parses a six-field FEN string into a Position.
func Decode(s string, chess960 bool) (Position, error) {
	pos, turn, np, fm, err := fen.DecodeVariant(s, chess960)
	if err != nil {
		return Position{}, fmt.Errorf("invalid FEN %q: %w", s, err)
	}
	return Position{pos: pos, turn: turn, noprogress: np, fullmoves: fm, chess960: chess960}, nil
}

// Initial returns the standard starting position.
func Initial() Position {
	p, _ := Decode(fen.Initial, false)
	return p
}

// FEN encodes the position back to its six-field string form.
func (p Position) FEN() string {
	return fen.Encode(p.pos, p.turn, p.noprogress, p.fullmoves)
}

// Turn returns the side to move.
func (p Position) Turn() board.Color {
	return p.turn
}

// Chess960 reports whether this position is subject to Chess960 castling rules.
func (p Position) Chess960() bool {
	return p.chess960
}

// Copy returns an independent value; since Position already has value semantics this is
// a convenience alias kept to match the spec's explicit copy() contract.
func (p Position) Copy() Position {
	cp := p
	cp.pos = p.pos.Copy()
	return cp
}

// LegalMoves returns the legal moves for the side to move.
func (p Position) LegalMoves() []board.Move {
	return p.pos.LegalMoves(p.turn)
}

// InCheck reports whether the side to move is in check.
func (p Position) InCheck() bool {
	return p.pos.IsChecked(p.turn)
}

// IsMate reports whether the side to move is checkmated: in check with no legal moves.
func (p Position) IsMate() bool {
	return p.InCheck() && len(p.LegalMoves()) == 0
}

// IsStalemate reports whether the side to move has no legal moves while not in check.
func (p Position) IsStalemate() bool {
	return !p.InCheck() && len(p.LegalMoves()) == 0
}

// Play applies a legal move and returns the resulting position. The move must be one
// returned by LegalMoves (or structurally equal to one); otherwise ok is false.
func (p Position) Play(m board.Move) (Position, bool) {
	for _, legal := range p.LegalMoves() {
		if !legal.Equals(m) {
			continue
		}

		next, ok := p.pos.Move(p.turn, legal)
		if !ok {
			return Position{}, false
		}

		np := p.noprogress + 1
		if legal.Type != board.Normal {
			np = 0
		}

		fm := p.fullmoves
		nextTurn := p.turn.Opponent()
		if nextTurn == board.White {
			fm++
		}

		return Position{pos: next, turn: nextTurn, noprogress: np, fullmoves: fm, chess960: p.chess960}, true
	}
	return Position{}, false
}

// PlayUCI parses a long algebraic move string (e.g. "e2e4", "e7e8q") and applies it.
func (p Position) PlayUCI(move string) (Position, bool, error) {
	m, err := board.ParseMove(move)
	if err != nil {
		return Position{}, false, fmt.Errorf("invalid move %q: %w", move, err)
	}
	next, ok := p.Play(m)
	return next, ok, nil
}

func (p Position) String() string {
	return p.FEN()
}
