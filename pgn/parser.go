package pgn

import (
	"fmt"
	"strings"

	"github.com/positional/ccamc/ccamc"
)

// parseGame builds a Game from a raw header block and movetext block (the
// two halves of one PGN game as split by the Scanner).
func parseGame(headerBlock, movetextBlock string) (*Game, error) {
	headers := tokenizeHeaders(headerBlock)
	toks, err := tokenizeMovetext(movetextBlock)
	if err != nil {
		return nil, fmt.Errorf("movetext: %w", err)
	}
	p := &parser{toks: toks}
	nodes, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	return &Game{headers: headers, mainline: nodes}, nil
}

type parser struct {
	toks  []token
	pos   int
	depth int // number of enclosing, still-open variations
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// parseSequence parses one mainline (top-level or variation) until a
// tokVarClose, tokResult, or tokEOF is reached. A tokVarClose or tokResult
// terminator is consumed; tokEOF is not. Reaching tokEOF inside a variation
// is an unterminated-variation error.
func (p *parser) parseSequence() ([]*Node, error) {
	var nodes []*Node
	var pendingBefore []ccamc.PGNComment

	for {
		t := p.peek()
		switch t.kind {
		case tokEOF:
			if p.depth > 0 {
				return nil, fmt.Errorf("unterminated variation")
			}
			return nodes, nil
		case tokResult:
			p.advance()
			return nodes, nil
		case tokVarClose:
			p.advance()
			return nodes, nil
		case tokComment:
			p.advance()
			c := ccamc.PGNComment{Text: t.text, IsSemicolon: t.semicolon}
			if len(nodes) > 0 {
				last := nodes[len(nodes)-1]
				last.commentsAfter = append(last.commentsAfter, c)
			} else {
				pendingBefore = append(pendingBefore, c)
			}
		case tokNAG:
			p.advance()
			if len(nodes) > 0 {
				last := nodes[len(nodes)-1]
				last.nags = append(last.nags, t.nag)
			}
		case tokVarOpen:
			p.advance()
			p.depth++
			sub, err := p.parseSequence()
			p.depth--
			if err != nil {
				return nil, err
			}
			if len(nodes) == 0 {
				return nil, fmt.Errorf("variation with no preceding move")
			}
			last := nodes[len(nodes)-1]
			last.variations = append(last.variations, &Game{mainline: sub})
		case tokSAN:
			p.advance()
			node := &Node{san: t.text, commentsBefore: pendingBefore}
			pendingBefore = nil
			if t.val != "" {
				for _, glyph := range strings.Split(t.val, ",") {
					if code, ok := nagFromGlyph(glyph); ok {
						node.nags = append(node.nags, code)
					}
				}
			}
			nodes = append(nodes, node)
		default:
			p.advance()
		}
	}
}
