package pgn

import (
	"bufio"
	"io"
	"strings"
)

// Scanner reads a multi-game PGN stream one game at a time, so a large
// import can be checkpointed between games rather than holding the whole
// file in memory.
type Scanner struct {
	br       *bufio.Reader
	pushback *string
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{br: bufio.NewReaderSize(r, 64*1024)}
}

func (s *Scanner) readLine() (string, bool) {
	if s.pushback != nil {
		line := *s.pushback
		s.pushback = nil
		return line, true
	}
	line, err := s.br.ReadString('\n')
	if line == "" && err != nil {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (s *Scanner) pushBack(line string) { s.pushback = &line }

// Next reads and parses the next game. It returns io.EOF once the stream is
// exhausted. A malformed game returns a non-nil error but still advances
// past that game's raw block, so the caller can log it and call Next again
// to continue with the rest of the file (spec §7: skip corrupt input).
func (s *Scanner) Next() (*Game, error) {
	for {
		line, ok := s.readLine()
		if !ok {
			return nil, io.EOF
		}
		if strings.TrimSpace(line) != "" {
			s.pushBack(line)
			break
		}
	}

	var headerLines []string
	for {
		line, ok := s.readLine()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		if !strings.HasPrefix(trimmed, "[") {
			s.pushBack(line)
			break
		}
		headerLines = append(headerLines, line)
	}

	var moveLines []string
	for {
		line, ok := s.readLine()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		if strings.HasPrefix(trimmed, "[") {
			s.pushBack(line)
			break
		}
		moveLines = append(moveLines, line)
	}

	if len(headerLines) == 0 && len(moveLines) == 0 {
		return nil, io.EOF
	}
	return parseGame(strings.Join(headerLines, "\n"), strings.Join(moveLines, "\n"))
}
