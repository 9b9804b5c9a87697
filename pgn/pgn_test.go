package pgn

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePGN = `[Event "Test Open"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "Alpha"]
[Black "Beta"]
[Result "1-0"]

1. e4 e5 2. Nf3 {a standard developing move} Nc6 3. Bb5 a6 (3... Nf6 4. O-O)
4. Ba4 Nf6 1-0

`

func TestScannerParsesHeadersAndMoves(t *testing.T) {
	sc := NewScanner(strings.NewReader(samplePGN))
	g, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, "Test Open", g.Headers()["Event"])
	require.Equal(t, "Beta", g.Headers()["Black"])
	require.Len(t, g.mainline, 8)
	require.Equal(t, "e4", g.mainline[0].SAN())
	require.Equal(t, "Bb5", g.mainline[4].SAN())

	_, err = sc.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestScannerSkipsBlankLinesBetweenGames(t *testing.T) {
	two := samplePGN + "\n" + samplePGN
	sc := NewScanner(strings.NewReader(two))
	g1, err := sc.Next()
	require.NoError(t, err)
	require.NotNil(t, g1)

	g2, err := sc.Next()
	require.NoError(t, err)
	require.NotNil(t, g2)

	_, err = sc.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestScannerContinuesAfterMalformedGame(t *testing.T) {
	bad := "[Event \"Bad\"]\n\n1. e4 (unterminated variation\n\n" + samplePGN
	sc := NewScanner(strings.NewReader(bad))

	_, err := sc.Next()
	require.Error(t, err)

	g, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, "Test Open", g.Headers()["Event"])
}

func TestParserAttachesVariationToPrecedingMove(t *testing.T) {
	sc := NewScanner(strings.NewReader(samplePGN))
	g, err := sc.Next()
	require.NoError(t, err)

	aSix := g.mainline[4] // Bb5 a6's preceding node index: e4 e5 Nf3 Nc6 Bb5 -> index 4
	require.Equal(t, "Bb5", aSix.SAN())

	// a6 is index 5 and carries the (3... Nf6 4. O-O) variation.
	aSixMove := g.mainline[5]
	require.Equal(t, "a6", aSixMove.SAN())
	require.Len(t, aSixMove.variations, 1)
	variation := aSixMove.variations[0]
	require.Len(t, variation.mainline, 2)
	require.Equal(t, "Nf6", variation.mainline[0].SAN())
	require.Equal(t, "O-O", variation.mainline[1].SAN())
}

func TestParserAttachesCommentAfterMove(t *testing.T) {
	sc := NewScanner(strings.NewReader(samplePGN))
	g, err := sc.Next()
	require.NoError(t, err)

	nf3 := g.mainline[2]
	require.Equal(t, "Nf3", nf3.SAN())
	require.Len(t, nf3.commentsAfter, 1)
	require.Equal(t, "a standard developing move", nf3.commentsAfter[0].Text)
}
