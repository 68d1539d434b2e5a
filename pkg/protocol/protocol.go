// Package protocol describes the exact UCI wire text a worker speaks to its engine
// subprocess. Commands are never fixed by the mining pipeline; every token and template
// is supplied by the caller through a Protocol value, and rendered explicitly through
// Render rather than by reflecting over struct fields.
package protocol

import "fmt"

// Field names a single template slot in a Protocol.
type Field string

const (
	SetPosition  Field = "setposition"  // %s: FEN
	SearchNodes  Field = "searchnodes"  // %d: node cap
	SearchTime   Field = "searchtime"   // %d: milliseconds
	SearchDepth  Field = "searchdepth"  // %d: ply depth
	SetThreads   Field = "setthreads"   // %d
	SetHash      Field = "sethash"      // %d: MB
	SetMultiPV   Field = "setmultipv"   // %d
	SetChess960  Field = "setchess960"  // %v: true/false
	SetShowWDL   Field = "setshowwdl"   // %v: true/false
	IsReady      Field = "isready"      // no args
	ReadyOK      Field = "readyok"      // no args; expected response token, not sent
	NewGame      Field = "newgame"      // no args
	Stop         Field = "stop"         // no args
	ShowUCI      Field = "showuci"      // no args
)

// required lists the templates every engine Protocol must supply. Missing any of these
// makes the Protocol unusable and is reported at construction, not at first use.
var required = []Field{
	SetPosition, SearchNodes, IsReady, ReadyOK, NewGame, Stop,
}

// Protocol is the complete, immutable set of wire templates and one-shot setup commands
// needed to drive one family of UCI-speaking engine. It is read-only after
// construction and safely shared by reference across worker goroutines.
type Protocol struct {
	templates map[Field]string
	setup     []string // one-shot commands issued once, after the initial handshake
}

// New constructs a Protocol from a field->template map, validating that every required
// field is present. Templates not using a %-verb (IsReady, ReadyOK, NewGame, Stop,
// ShowUCI) are given as literal text. No field has a default: an omitted required
// field is a construction error, and an omitted optional field stays absent (see Has).
func New(templates map[Field]string, setup []string) (Protocol, error) {
	p := Protocol{templates: map[Field]string{}, setup: append([]string(nil), setup...)}
	for k, v := range templates {
		p.templates[k] = v
	}

	for _, f := range required {
		if _, ok := p.templates[f]; !ok {
			return Protocol{}, fmt.Errorf("protocol missing required template %q", f)
		}
	}
	return p, nil
}

// Render formats the template registered for field with args, via fmt.Sprintf. It
// returns an error rather than panicking if field has no template at all (optional
// fields, such as SetChess960, may legitimately be absent on a given engine); callers
// for required fields can treat a non-nil error as a construction-time invariant
// violation, since New already guarantees their presence.
func (p Protocol) Render(field Field, args ...any) (string, error) {
	tmpl, ok := p.templates[field]
	if !ok {
		return "", fmt.Errorf("protocol: no template for field %q", field)
	}
	return fmt.Sprintf(tmpl, args...), nil
}

// Has reports whether an optional template field was supplied.
func (p Protocol) Has(field Field) bool {
	_, ok := p.templates[field]
	return ok
}

// Setup returns the one-shot commands to issue once, right after the initial
// uci/uciok handshake and before the first isready/readyok round trip.
func (p Protocol) Setup() []string {
	return append([]string(nil), p.setup...)
}

// StandardUCI is the default Protocol for engines speaking plain UCI, as documented by
// the "go nodes/depth/movetime", "position fen", "setoption name X value Y",
// "isready"/"readyok", "ucinewgame", and "stop" tokens.
func StandardUCI() Protocol {
	p, err := New(map[Field]string{
		SetPosition: "position fen %s",
		SearchNodes: "go nodes %d",
		SearchTime:  "go movetime %d",
		SearchDepth: "go depth %d",
		SetThreads:  "setoption name Threads value %d",
		SetHash:     "setoption name Hash value %d",
		SetMultiPV:  "setoption name MultiPV value %d",
		SetChess960: "setoption name UCI_Chess960 value %v",
		SetShowWDL:  "setoption name UCI_ShowWDL value %v",
		IsReady:     "isready",
		ReadyOK:     "readyok",
		NewGame:     "ucinewgame",
		Stop:        "stop",
		ShowUCI:     "uci",
	}, nil)
	if err != nil {
		// StandardUCI is a compile-time-known-good constant; a failure here means the
		// required-field list above drifted from this literal map.
		panic(err)
	}
	return p
}
