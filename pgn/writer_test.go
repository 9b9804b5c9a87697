package pgn

import (
	"strings"
	"testing"

	"github.com/positional/ccamc/ccamc"
	"github.com/stretchr/testify/require"
)

func TestWriteGameRendersHeadersAndMoves(t *testing.T) {
	game := &ccamc.ReconstructedGame{
		Headers: map[string]string{
			"Event":  "Test Open",
			"Site":   "?",
			"Date":   "2024.01.01",
			"Round":  "1",
			"White":  "Alpha",
			"Black":  "Beta",
			"Result": "1-0",
			"ECO":    "C60",
		},
		Mainline: []*ccamc.ReconstructedNode{
			{Move: ccamc.Move{SAN: "e4"}},
			{Move: ccamc.Move{SAN: "e5"}},
			{Move: ccamc.Move{SAN: "Nf3"}, CommentsAfter: []ccamc.PGNComment{{Text: "a standard developing move"}}},
			{Move: ccamc.Move{SAN: "Nc6"}},
		},
	}

	var sb strings.Builder
	err := WriteGame(&sb, game)
	require.NoError(t, err)

	out := sb.String()
	require.Contains(t, out, `[Event "Test Open"]`)
	require.Contains(t, out, `[ECO "C60"]`)
	require.Contains(t, out, "1. e4 e5 2. Nf3")
	require.Contains(t, out, "{a standard developing move}")
	require.Contains(t, out, "Nc6")
	require.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), "1-0"))
}

func TestWriteGameNumbersVariationFromForkPoint(t *testing.T) {
	variation := &ccamc.ReconstructedGame{
		Mainline: []*ccamc.ReconstructedNode{
			{Move: ccamc.Move{SAN: "Nf6"}},
			{Move: ccamc.Move{SAN: "O-O"}},
		},
	}
	game := &ccamc.ReconstructedGame{
		Headers: map[string]string{"Result": "*"},
		Mainline: []*ccamc.ReconstructedNode{
			{Move: ccamc.Move{SAN: "e4"}},
			{Move: ccamc.Move{SAN: "e5"}},
			{Move: ccamc.Move{SAN: "Nf3"}},
			{Move: ccamc.Move{SAN: "Nc6"}},
			{Move: ccamc.Move{SAN: "Bb5"}},
			{Move: ccamc.Move{SAN: "a6", Packed: 0}, Variations: []*ccamc.ReconstructedGame{variation}},
		},
	}

	var sb strings.Builder
	err := WriteGame(&sb, game)
	require.NoError(t, err)

	out := sb.String()
	require.Contains(t, out, "(3... Nf6 4. O-O)")
}
