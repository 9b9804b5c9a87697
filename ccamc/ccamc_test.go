package ccamc_test

import (
	"io"
	"strings"
	"testing"

	"github.com/positional/ccamc/ccamc"
	"github.com/positional/ccamc/chessboard"
	"github.com/positional/ccamc/pgn"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ccamc.Store {
	t.Helper()
	s := ccamc.NewStore()
	s.NewBoard = func() ccamc.Board { return chessboard.New() }
	return s
}

func parseOne(t *testing.T, raw string) ccamc.PGNGame {
	t.Helper()
	sc := pgn.NewScanner(strings.NewReader(raw))
	g, err := sc.Next()
	require.NoError(t, err)
	return g
}

const gameA = `[Event "A"]
[White "Alpha"]
[Black "Beta"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 1-0

`

const gameB = `[Event "B"]
[White "Gamma"]
[Black "Delta"]
[Result "0-1"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. Re1 b5 0-1

`

func TestIngestAndReconstructRoundTrip(t *testing.T) {
	s := newTestStore(t)
	game := parseOne(t, gameA)

	res, err := s.IngestGame(game, "gameA", 0)
	require.NoError(t, err)
	require.NotZero(t, res.FinalMoveHash)

	out, err := s.ReconstructPGN("gameA")
	require.NoError(t, err)
	require.Equal(t, "Alpha", out.Headers["White"])
	require.Equal(t, "1-0", out.Headers["Result"])

	var san []string
	for _, n := range out.Mainline {
		san = append(san, n.Move.SAN)
	}
	require.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7"}, san)
}

func TestIngestDedupsSharedOpening(t *testing.T) {
	s := newTestStore(t)
	gA := parseOne(t, gameA)
	gB := parseOne(t, gameB)

	resA, err := s.IngestGame(gA, "gameA", 0)
	require.NoError(t, err)
	blobsAfterA := len(s.Pack.InsertionOrder())

	resB, err := s.IngestGame(gB, "gameB", 0)
	require.NoError(t, err)
	blobsAfterB := len(s.Pack.InsertionOrder())

	// gameB shares its first 10 plies with gameA, which are exactly gameA's
	// single blob: gameB's chain reuses that blob as the parent of the one
	// new blob holding its last 2 plies, instead of duplicating the prefix.
	require.Less(t, blobsAfterB-blobsAfterA, blobsAfterA)
	blobB, ok := s.Pack.Get(resB.FinalMoveHash)
	require.True(t, ok)
	require.Equal(t, resA.FinalMoveHash, blobB.Parent)
}

func TestIngestIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	game := parseOne(t, gameA)

	res1, err := s.IngestGame(game, "gameA", 0)
	require.NoError(t, err)
	blobCount := len(s.Pack.InsertionOrder())

	game2 := parseOne(t, gameA)
	res2, err := s.IngestGame(game2, "gameA-2", 0)
	require.NoError(t, err)

	require.Equal(t, res1.FinalMoveHash, res2.FinalMoveHash)
	require.Equal(t, blobCount, len(s.Pack.InsertionOrder()))
}

func TestIngestRejectsIllegalMove(t *testing.T) {
	s := newTestStore(t)
	game := parseOne(t, "[Event \"X\"]\n\n1. e4 e5 2. Qh5 Nf9 1-0\n\n")
	_, err := s.IngestGame(game, "bad", 0)
	require.Error(t, err)
}

func TestBlobSplitsAtMaxMovesPerBlob(t *testing.T) {
	s := newTestStore(t)
	var sb strings.Builder
	sb.WriteString("[Event \"Long\"]\n\n")
	moves := []string{
		"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7",
		"Re1", "b5", "Bb3", "d6", "c3", "O-O", "h3", "Nb8", "d4", "Nbd7",
		"Nbd2", "Bb7", "Bc2", "Re8", "Nf1", "Bf8", "Ng3", "g6", "a4", "c5",
	}
	for i, m := range moves {
		if i%2 == 0 {
			sb.WriteString(itoa(i/2 + 1))
			sb.WriteString(". ")
		}
		sb.WriteString(m)
		sb.WriteString(" ")
	}
	sb.WriteString("1-0\n\n")

	game := parseOne(t, sb.String())
	res, err := s.IngestGame(game, "long", 0)
	require.NoError(t, err)

	// 30 plies need ceil(30/27) = 2 blobs minimum for the mainline chain, on
	// top of the INIT blob every new pack is seeded with.
	require.GreaterOrEqual(t, len(s.Pack.InsertionOrder()), 3)

	out, err := s.ReconstructPGN("long")
	require.NoError(t, err)
	entry, ok := s.Registry.Get("long")
	require.True(t, ok)
	require.Equal(t, res.FinalMoveHash, entry.FinalHash)
	require.Len(t, out.Mainline, len(moves))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestVerifyCleanStoreReportsNoIssues(t *testing.T) {
	s := newTestStore(t)
	game := parseOne(t, gameA)
	_, err := s.IngestGame(game, "gameA", 0)
	require.NoError(t, err)

	report := s.Verify()
	require.True(t, report.OK())
	require.Equal(t, 1, report.GamesChecked)
}

func TestVerifyDetectsUnresolvableMetadataHash(t *testing.T) {
	s := newTestStore(t)
	game := parseOne(t, gameA)
	_, err := s.IngestGame(game, "gameA", 0)
	require.NoError(t, err)

	entry, ok := s.Registry.Get("gameA")
	require.True(t, ok)
	s.Registry.Put(&ccamc.RegistryEntry{
		GameID:    "gameA",
		FinalHash: entry.FinalHash,
		MetaHash:  ccamc.Hash64(0xdeadbeefdeadbeef),
	})

	report := s.Verify()
	require.False(t, report.OK())
	require.Contains(t, report.Issues[0].Message, "does not resolve")
}

func TestReconstructPGNRoundTripsCommentsAndVariations(t *testing.T) {
	s := newTestStore(t)
	game := parseOne(t, annotatedPGN)

	_, err := s.IngestGame(game, "annotated", 0)
	require.NoError(t, err)

	out, err := s.ReconstructPGN("annotated")
	require.NoError(t, err)

	nf3 := out.Mainline[2]
	require.Equal(t, "Nf3", nf3.Move.SAN)
	require.Len(t, nf3.CommentsAfter, 1)
	require.Equal(t, "a standard developing move", nf3.CommentsAfter[0].Text)

	a6 := out.Mainline[5]
	require.Equal(t, "a6", a6.Move.SAN)
	require.Len(t, a6.Variations, 1)
	variation := a6.Variations[0]
	require.Len(t, variation.Mainline, 2)
	require.Equal(t, "Nf6", variation.Mainline[0].Move.SAN)
	require.Equal(t, "O-O", variation.Mainline[1].Move.SAN)
}

const annotatedPGN = `[Event "Test Open"]
[White "Alpha"]
[Black "Beta"]
[Result "1-0"]

1. e4 e5 2. Nf3 {a standard developing move} Nc6 3. Bb5 a6 (3... Nf6 4. O-O)
4. Ba4 Nf6 1-0

`

func TestIngestEmptyGame(t *testing.T) {
	s := newTestStore(t)
	game := parseOne(t, "[Event \"Empty\"]\n[Result \"*\"]\n\n*\n\n")

	res, err := s.IngestGame(game, "empty", 0)
	require.NoError(t, err)
	require.Equal(t, ccamc.InitBlobHash(), res.FinalMoveHash)

	out, err := s.ReconstructPGN("empty")
	require.NoError(t, err)
	require.Empty(t, out.Mainline)
	require.Equal(t, "*", out.Headers["Result"])
}

func TestStoreInitSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := ccamc.Init(dir)
	require.NoError(t, err)
	s.NewBoard = func() ccamc.Board { return chessboard.New() }

	game := parseOne(t, gameA)
	_, err = s.IngestGame(game, "gameA", 0)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	reopened, err := ccamc.Open(dir)
	require.NoError(t, err)
	reopened.NewBoard = func() ccamc.Board { return chessboard.New() }

	out, err := reopened.ReconstructPGN("gameA")
	require.NoError(t, err)
	require.Equal(t, "Alpha", out.Headers["White"])
}

func TestSourceImportExportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	reader := &fixedReader{games: []ccamc.PGNGame{parseOne(t, gameA), parseOne(t, gameB)}}

	result, err := s.IngestSource("test-source", 100, "deadbeef", reader, 2, nil)
	require.NoError(t, err)
	require.Equal(t, 2, result.GamesIngested)
	require.Equal(t, 0, result.GamesSkipped)

	var exported []*ccamc.ReconstructedGame
	n, err := s.ExportSource("test-source", func(g *ccamc.ReconstructedGame) error {
		exported = append(exported, g)
		return nil
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, exported, 2)
}

type fixedReader struct {
	games []ccamc.PGNGame
	i     int
}

func (r *fixedReader) Next() (ccamc.PGNGame, error) {
	if r.i >= len(r.games) {
		return nil, io.EOF
	}
	g := r.games[r.i]
	r.i++
	return g, nil
}
