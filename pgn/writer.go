package pgn

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/positional/ccamc/ccamc"
)

// strTagOrder is the Seven Tag Roster order PGN readers expect headers in;
// anything else is appended afterwards, sorted for determinism.
var strTagOrder = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// WriteGame renders a reconstructed game as PGN text: header tags, then
// movetext with comments, NAGs, and nested variations.
func WriteGame(w io.Writer, g *ccamc.ReconstructedGame) error {
	bw := bufio.NewWriter(w)
	writeHeaders(bw, g.Headers)
	bw.WriteByte('\n')
	writeMovetext(bw, g.Mainline, 0)
	result := g.Headers["Result"]
	if result == "" {
		result = "*"
	}
	bw.WriteString(result)
	bw.WriteString("\n\n")
	return wrapIOErr(bw.Flush())
}

func writeHeaders(bw *bufio.Writer, headers map[string]string) {
	seen := make(map[string]bool, len(headers))
	for _, name := range strTagOrder {
		value, ok := headers[name]
		if !ok {
			value = "?"
		}
		fmt.Fprintf(bw, "[%s %q]\n", name, value)
		seen[name] = true
	}
	extra := make([]string, 0, len(headers))
	for name := range headers {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	insertionSort(extra)
	for _, name := range extra {
		fmt.Fprintf(bw, "[%s %q]\n", name, headers[name])
	}
}

func insertionSort(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// writeMovetext renders nodes, whose first ply is globally at ply index
// startIndex (0 = White's first move), so move numbers stay correct inside
// a variation that forks mid-game.
func writeMovetext(bw *bufio.Writer, nodes []*ccamc.ReconstructedNode, startIndex int) {
	forceNumber := true
	for i, node := range nodes {
		ply := startIndex + i
		moveNumber := ply/2 + 1
		isWhite := ply%2 == 0

		for _, c := range node.CommentsBefore {
			writeComment(bw, c)
			forceNumber = true
		}

		if isWhite {
			fmt.Fprintf(bw, "%d. ", moveNumber)
		} else if forceNumber {
			fmt.Fprintf(bw, "%d... ", moveNumber)
		}
		bw.WriteString(node.Move.SAN)
		for _, nag := range node.NAGs {
			fmt.Fprintf(bw, " $%d", nag)
		}
		bw.WriteByte(' ')

		for _, c := range node.CommentsAfter {
			writeComment(bw, c)
		}

		forceNumber = len(node.CommentsAfter) > 0
		for _, variation := range node.Variations {
			var vb strings.Builder
			vw := bufio.NewWriter(&vb)
			writeMovetext(vw, variation.Mainline, ply)
			vw.Flush()
			bw.WriteString("(" + strings.TrimRight(vb.String(), " ") + ") ")
			forceNumber = true
		}
	}
}

func writeComment(bw *bufio.Writer, c ccamc.PGNComment) {
	text := strings.TrimSpace(c.Text)
	if c.IsSemicolon {
		fmt.Fprintf(bw, "; %s\n", text)
		return
	}
	fmt.Fprintf(bw, "{%s} ", text)
}

func wrapIOErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("pgn: write: %w", err)
}
