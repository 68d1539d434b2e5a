package mining

import (
	"bufio"
	"errors"
	"io"
	"math/rand"
	"strings"

	"github.com/herohde/tacticore/pkg/chess"
)

// ErrSeederExhausted is returned by Seeder.Next once a finite source (file-backed) has
// been fully consumed.
var ErrSeederExhausted = errors.New("seeder exhausted")

// Mode selects how a Seeder produces positions.
type Mode int

const (
	RandomStandard Mode = iota
	RandomChess960
	FileBacked
)

// Seeder produces a lazy sequence of legal Positions for the Frontier. Random modes
// never exhaust; the file-backed mode exhausts once the underlying reader is drained.
type Seeder struct {
	mode     Mode
	rng      *rand.Rand
	maxPlies int

	scanner *bufio.Scanner // file-backed mode only

	// Skipped counts malformed file lines (InvalidSeed), reported rather than thrown.
	Skipped int
}

// NewRandomSeeder returns a Seeder generating positions by a bounded random walk from
// the standard starting position, up to maxPlies deep. chess960 positions are still
// walked from the standard start (full 960 starting-array shuffling is chess-rules
// territory this system treats as an external library's concern) but carry the
// Chess960 flag so downstream castling parsing honors Shredder-FEN semantics.
func NewRandomSeeder(mode Mode, seed int64, maxPlies int) *Seeder {
	return &Seeder{mode: mode, rng: rand.New(rand.NewSource(seed)), maxPlies: maxPlies}
}

// NewFileSeeder returns a Seeder reading FEN lines from r. '#' and "//" introduce
// comments; each non-comment line is one FEN (position only) or two whitespace
// separated FENs (parent then position).
func NewFileSeeder(r io.Reader) *Seeder {
	return &Seeder{mode: FileBacked, scanner: bufio.NewScanner(r)}
}

// Next produces the next Seed. Random modes always succeed. The file-backed mode
// returns ErrSeederExhausted once the reader is drained, and silently skips (counting
// in Skipped) any line that fails FEN validation, continuing to the next line.
func (s *Seeder) Next() (Seed, error) {
	switch s.mode {
	case RandomStandard, RandomChess960:
		return s.nextRandom(), nil
	case FileBacked:
		return s.nextFromFile()
	default:
		return Seed{}, errors.New("seeder: unknown mode")
	}
}

func (s *Seeder) nextRandom() Seed {
	chess960 := s.mode == RandomChess960

	pos := chess.Initial()
	if chess960 {
		pos, _ = chess.Decode("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w HAha - 0 1", true)
	}

	plies := s.rng.Intn(s.maxPlies + 1)
	for i := 0; i < plies; i++ {
		moves := pos.LegalMoves()
		if len(moves) == 0 {
			break // checkmate or stalemate reached; stop the walk here
		}
		m := moves[s.rng.Intn(len(moves))]
		next, ok := pos.Play(m)
		if !ok {
			break
		}
		pos = next
	}

	return Seed{Position: pos}
}

func (s *Seeder) nextFromFile() (Seed, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		fens, ok := splitFENLine(line)
		if !ok {
			s.Skipped++
			continue
		}

		if len(fens) == 1 {
			pos, err := chess.Decode(fens[0], false)
			if err != nil {
				s.Skipped++
				continue
			}
			return Seed{Position: pos}, nil
		}

		parent, err := chess.Decode(fens[0], false)
		if err != nil {
			s.Skipped++
			continue
		}
		pos, err := chess.Decode(fens[1], false)
		if err != nil {
			s.Skipped++
			continue
		}
		return Seed{Position: pos, Parent: &parent}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return Seed{}, err
	}
	return Seed{}, ErrSeederExhausted
}

// splitFENLine splits a file line into one or two six-field FEN strings.
func splitFENLine(line string) ([]string, bool) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 6:
		return []string{strings.Join(fields, " ")}, true
	case 12:
		return []string{
			strings.Join(fields[0:6], " "),
			strings.Join(fields[6:12], " "),
		}, true
	default:
		return nil, false
	}
}
