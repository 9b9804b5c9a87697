package chessboard

import (
	"testing"

	"github.com/positional/ccamc/ccamc"
	"github.com/stretchr/testify/require"
)

func TestApplySANOpeningMoves(t *testing.T) {
	b := New()
	mv, err := b.ApplySAN("e4")
	require.NoError(t, err)
	require.Equal(t, "e4", mv.SAN)

	_, err = b.ApplySAN("e5")
	require.NoError(t, err)

	mv, err = b.ApplySAN("Nf3")
	require.NoError(t, err)
	require.Equal(t, "Nf3", mv.SAN)
}

func TestApplySANRejectsIllegalMove(t *testing.T) {
	b := New()
	_, err := b.ApplySAN("e5")
	require.Error(t, err)
}

func TestApplySANEnPassant(t *testing.T) {
	b := New()
	for _, san := range []string{"e4", "a6", "e5", "d5"} {
		_, err := b.ApplySAN(san)
		require.NoError(t, err)
	}
	mv, err := b.ApplySAN("exd6")
	require.NoError(t, err)
	require.Equal(t, "exd6", mv.SAN)
}

func TestApplyUCIMatchesApplySAN(t *testing.T) {
	b := New()
	mv, err := b.ApplyUCI(ccamc.Square(12), ccamc.Square(28), ccamc.PromotionNone)
	require.NoError(t, err)
	require.Equal(t, "e4", mv.SAN)
}

func TestApplyUCIRejectsIllegalMove(t *testing.T) {
	b := New()
	_, err := b.ApplyUCI(ccamc.Square(12), ccamc.Square(36), ccamc.PromotionNone)
	require.Error(t, err)
}

func TestLegalMoveForPromotion(t *testing.T) {
	b := New()
	for _, san := range []string{"e4", "d5", "exd5", "c6", "dxc6", "Nf6", "cxb7", "Nbd7"} {
		_, err := b.ApplySAN(san)
		require.NoError(t, err)
	}
	mv, ok := b.LegalMoveFor(ccamc.Square(49), ccamc.Square(56), ccamc.PromotionQueen)
	require.True(t, ok)
	require.Equal(t, "bxa8=Q", mv.SAN)
}

func TestResultCheckmate(t *testing.T) {
	b := New()
	for _, san := range []string{"f3", "e5", "g4", "Qh4"} {
		_, err := b.ApplySAN(san)
		require.NoError(t, err)
	}
	require.Equal(t, ccamc.ResultBlackWins, b.Result())
}

func TestResultOngoing(t *testing.T) {
	b := New()
	_, err := b.ApplySAN("e4")
	require.NoError(t, err)
	require.Equal(t, ccamc.ResultUnknown, b.Result())
}

func TestResetRestoresStartingPosition(t *testing.T) {
	b := New()
	_, err := b.ApplySAN("e4")
	require.NoError(t, err)
	b.Reset()
	mv, err := b.ApplySAN("d4")
	require.NoError(t, err)
	require.Equal(t, "d4", mv.SAN)
}
