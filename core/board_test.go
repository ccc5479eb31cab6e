package core

import (
	"errors"
	"testing"
)

func loadBoard(t *testing.T, fen string) Board {
	t.Helper()
	var b Board
	if err := b.LoadFEN(fen); err != nil {
		t.Fatalf("LoadFEN(%q): %v", fen, err)
	}
	return b
}

// checkConsistency verifies the bitboard/mailbox agreement and attack
// cache invariants that must hold after every committed make/unmake.
func checkConsistency(t *testing.T, b *Board) {
	t.Helper()
	for sq := Square(0); sq < 64; sq++ {
		p := b.PieceAt(sq)
		for slot := 0; slot < 14; slot++ {
			has := b.bitboards[slot].Has(sq)
			shouldHave := !p.IsNone() && p.Index() == slot
			if has != shouldHave {
				t.Fatalf("bitboard %d and mailbox disagree on %v (piece %v)", slot, sq, p)
			}
		}
	}
	if b.PieceBB(King, White).Count() != 1 || b.PieceBB(King, Black).Count() != 1 {
		t.Fatalf("king count wrong")
	}
	occ := b.AllPieces()
	if got := b.attackSet(White, occ); got != b.AttackingSquares(White) {
		t.Fatalf("white attack cache stale")
	}
	if got := b.attackSet(Black, occ); got != b.AttackingSquares(Black) {
		t.Fatalf("black attack cache stale")
	}
	if got := b.fullHash(); got != b.Hash() {
		t.Fatalf("incremental hash 0x%x differs from full hash 0x%x", b.Hash(), got)
	}
}

func boardsEqual(a, b *Board) bool {
	return a.bitboards == b.bitboards &&
		a.squares == b.squares &&
		a.SideToMove == b.SideToMove &&
		a.epSquare == b.epSquare &&
		a.castlingRights == b.castlingRights &&
		a.halfMoveClock == b.halfMoveClock &&
		a.fullMoveNumber == b.fullMoveNumber &&
		a.whiteAttacking == b.whiteAttacking &&
		a.blackAttacking == b.blackAttacking &&
		a.Hash() == b.Hash()
}

func TestLoadFENStartPosition(t *testing.T) {
	b := loadBoard(t, StartingPositionFEN)
	checkConsistency(t, &b)
	if b.SideToMove != White {
		t.Errorf("side to move = %v, want white", b.SideToMove)
	}
	if got := b.PieceAt(mustSquare("e1")); got != MakePiece(King, White) {
		t.Errorf("e1 holds %v, want white king", got)
	}
	if got := b.PieceAt(mustSquare("d8")); got != MakePiece(Queen, Black) {
		t.Errorf("d8 holds %v, want black queen", got)
	}
	if !b.CanCastleShort(White) || !b.CanCastleLong(White) ||
		!b.CanCastleShort(Black) || !b.CanCastleLong(Black) {
		t.Errorf("castling rights not all set")
	}
}

func TestFenRoundTrip(t *testing.T) {
	fens := []string{
		StartingPositionFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 2",
		"4k3/8/8/8/8/8/8/4K2R w K - 12 40",
		"8/8/8/4k3/8/8/4K3/8 b - - 0 1",
	}
	for _, fen := range fens {
		b := loadBoard(t, fen)
		if got := b.Fen(); got != fen {
			t.Errorf("FEN round trip:\nin  %q\nout %q", fen, got)
		}
	}
}

func TestFenEmitsCorrectCastlingSubset(t *testing.T) {
	b := loadBoard(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err := b.MakeUCIMove("e1g1"); err != nil {
		t.Fatal(err)
	}
	want := "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1"
	if got := b.Fen(); got != want {
		t.Errorf("after castling:\ngot  %q\nwant %q", got, want)
	}
}

func TestLoadFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",        // missing fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",             // 7 ranks
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",    // bad piece
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",    // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",    // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",   // bad ep square
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",    // bad clock
		"rnbqbbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",    // black king missing
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",   // 9 files in a rank
	}
	for _, fen := range bad {
		b := loadBoard(t, StartingPositionFEN)
		err := b.LoadFEN(fen)
		if !errors.Is(err, ErrInvalidFen) {
			t.Errorf("LoadFEN(%q) = %v, want ErrInvalidFen", fen, err)
		}
		// A failed load must leave the previous position intact.
		if got := b.Fen(); got != StartingPositionFEN {
			t.Errorf("board changed by failed load of %q: %q", fen, got)
		}
	}
}

func TestMakeUnmakeRoundTrip(t *testing.T) {
	// A game visiting the interesting move kinds: double pushes,
	// captures, kingside castling by both sides and en passant.
	// Promotions are covered by TestPromotionMakeUnmake.
	b := loadBoard(t, StartingPositionFEN)
	game := []string{
		"e2e4", "d7d5", "e4d5", "g8f6", "g1f3", "f6d5", "f1e2", "e7e6",
		"e1g1", "f8e7", "d2d4", "e8g8", "c2c4", "d5f6", "b1c3", "b7b5",
		"c4b5", "a7a5", "b5a6", "c8a6",
	}
	for _, move := range game {
		before := b.Copy()
		if err := b.MakeUCIMove(move); err != nil {
			t.Fatalf("MakeUCIMove(%q): %v", move, err)
		}
		checkConsistency(t, &b)
		b.UnmakeMove()
		checkConsistency(t, &b)
		if !boardsEqual(&before, &b) {
			t.Fatalf("unmake of %q did not restore the board\nbefore: %s\nafter:  %s",
				move, before.Fen(), b.Fen())
		}
		if err := b.MakeUCIMove(move); err != nil {
			t.Fatalf("MakeUCIMove(%q) replay: %v", move, err)
		}
	}
}

func TestEnPassantMakeUnmake(t *testing.T) {
	b := loadBoard(t, StartingPositionFEN)
	for _, move := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
		if err := b.MakeUCIMove(move); err != nil {
			t.Fatal(err)
		}
	}
	if b.EnPassantSquare() != mustSquare("d6") {
		t.Fatalf("en passant square = %v, want d6", b.EnPassantSquare())
	}
	before := b.Copy()
	if err := b.MakeUCIMove("e5d6"); err != nil {
		t.Fatal(err)
	}
	if !b.IsSquareEmpty(mustSquare("d5")) {
		t.Errorf("captured pawn still on d5 after en passant")
	}
	if b.PieceAt(mustSquare("d6")) != MakePiece(Pawn, White) {
		t.Errorf("capturing pawn not on d6")
	}
	checkConsistency(t, &b)
	b.UnmakeMove()
	if !boardsEqual(&before, &b) {
		t.Errorf("unmake of en passant did not restore the board")
	}
	if b.PieceAt(mustSquare("d5")) != MakePiece(Pawn, Black) {
		t.Errorf("captured pawn not restored to d5")
	}
}

func TestPromotionMakeUnmake(t *testing.T) {
	b := loadBoard(t, "1n6/P6k/8/8/8/8/7K/8 w - - 0 1")
	for _, move := range []string{"a7a8q", "a7b8n"} {
		before := b.Copy()
		if err := b.MakeUCIMove(move); err != nil {
			t.Fatal(err)
		}
		checkConsistency(t, &b)
		end := mustSquare(move[2:4])
		wantKind := Queen
		if move[4] == 'n' {
			wantKind = Knight
		}
		if got := b.PieceAt(end); got != MakePiece(wantKind, White) {
			t.Errorf("%s left %v on %v", move, got, end)
		}
		if b.PieceBB(Pawn, White) != 0 {
			t.Errorf("pawn still on the board after %s", move)
		}
		b.UnmakeMove()
		checkConsistency(t, &b)
		if !boardsEqual(&before, &b) {
			t.Errorf("unmake of %s did not restore the board", move)
		}
	}
}

func TestCastlingRightsTransitions(t *testing.T) {
	// Moving a rook drops one right, moving the king drops both, and
	// capturing a rook on its home square drops the defender's right.
	b := loadBoard(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err := b.MakeUCIMove("a1a2"); err != nil {
		t.Fatal(err)
	}
	if b.CanCastleLong(White) || !b.CanCastleShort(White) {
		t.Errorf("rook move should clear only the long right")
	}
	if err := b.MakeUCIMove("e8e7"); err != nil {
		t.Fatal(err)
	}
	if b.CanCastleShort(Black) || b.CanCastleLong(Black) {
		t.Errorf("king move should clear both black rights")
	}
	b.UnmakeMove()
	if !b.CanCastleShort(Black) || !b.CanCastleLong(Black) {
		t.Errorf("unmake should restore black rights")
	}

	b = loadBoard(t, "r3k2r/8/8/8/8/8/6b1/R3K2R b KQkq - 0 1")
	if err := b.MakeUCIMove("g2h1"); err != nil {
		t.Fatal(err)
	}
	if b.CanCastleShort(White) {
		t.Errorf("capturing the h1 rook should clear white's short right")
	}
}

func TestThreefoldRepetition(t *testing.T) {
	b := loadBoard(t, StartingPositionFEN)
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i := 0; i < 2; i++ {
		for _, move := range shuffle {
			if b.IsThreefoldRepetition() {
				t.Fatalf("threefold reported too early")
			}
			if err := b.MakeUCIMove(move); err != nil {
				t.Fatal(err)
			}
		}
	}
	// The starting position has now occurred three times.
	if !b.IsThreefoldRepetition() {
		t.Errorf("threefold repetition not detected")
	}
	if !b.IsDraw() {
		t.Errorf("IsDraw should report the repetition")
	}
}

func TestFiftyMoveRule(t *testing.T) {
	b := loadBoard(t, "4k3/8/8/8/8/8/8/R3K3 w - - 99 80")
	if b.IsDrawByFiftyMoveRule() {
		t.Fatalf("draw reported at 99 half moves")
	}
	if err := b.MakeUCIMove("a1a2"); err != nil {
		t.Fatal(err)
	}
	if !b.IsDrawByFiftyMoveRule() {
		t.Errorf("draw not reported at 100 half moves")
	}

	// A pawn move resets the clock.
	b = loadBoard(t, "4k3/8/8/8/8/4P3/8/4K3 w - - 99 80")
	if err := b.MakeUCIMove("e3e4"); err != nil {
		t.Fatal(err)
	}
	if b.IsDrawByFiftyMoveRule() {
		t.Errorf("pawn move should reset the halfmove clock")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	data := []struct {
		fen  string
		want bool
	}{
		{"8/8/8/4k3/8/8/4K3/8 w - - 0 1", true},
		{"8/8/8/4k3/8/8/4KN2/8 w - - 0 1", true},
		{"8/8/8/4k3/8/8/4KB2/8 w - - 0 1", true},
		{"8/8/8/4k3/8/8/4KP2/8 w - - 0 1", false},
		{"8/8/8/4k3/8/8/4KR2/8 w - - 0 1", false},
		{"8/8/8/4k3/8/8/4KQ2/8 w - - 0 1", false},
		{"8/8/2nnn3/4k3/8/8/4K3/8 w - - 0 1", false},
		{StartingPositionFEN, false},
	}
	for _, d := range data {
		b := loadBoard(t, d.fen)
		if got := b.IsInsufficientMaterial(); got != d.want {
			t.Errorf("IsInsufficientMaterial(%q) = %v, want %v", d.fen, got, d.want)
		}
	}
}

func TestCheckStalemateCheckmate(t *testing.T) {
	b := loadBoard(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if !b.IsSideInCheck(White) {
		t.Errorf("white should be in check")
	}
	if !b.IsCheckmate(White) {
		t.Errorf("fool's mate not detected")
	}

	b = loadBoard(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if !b.IsStalemate() {
		t.Errorf("stalemate not detected")
	}
	if !b.IsDraw() {
		t.Errorf("stalemate should be a draw")
	}
	if b.IsCheckmate(Black) {
		t.Errorf("stalemate misreported as mate")
	}
}

func TestMakeUCIMoveErrors(t *testing.T) {
	b := loadBoard(t, StartingPositionFEN)
	for _, bad := range []string{"", "e2", "e2e", "e2e4e5x", "e9e4", "e7e8x"} {
		if err := b.MakeUCIMove(bad); !errors.Is(err, ErrInvalidMove) {
			t.Errorf("MakeUCIMove(%q) = %v, want ErrInvalidMove", bad, err)
		}
	}
}

func TestCopyIsIndependent(t *testing.T) {
	b := loadBoard(t, StartingPositionFEN)
	cp := b.Copy()
	if err := b.MakeUCIMove("e2e4"); err != nil {
		t.Fatal(err)
	}
	if cp.Hash() == b.Hash() {
		t.Errorf("copy shares state with the original")
	}
	if got := cp.Fen(); got != StartingPositionFEN {
		t.Errorf("copy changed after mutating the original: %q", got)
	}
}

func TestUCIMoveHistory(t *testing.T) {
	b := loadBoard(t, StartingPositionFEN)
	moves := []string{"e2e4", "e7e5", "g1f3"}
	for _, move := range moves {
		if err := b.MakeUCIMove(move); err != nil {
			t.Fatal(err)
		}
	}
	if got := b.UCIMoveHistory(); got != "e2e4 e7e5 g1f3" {
		t.Errorf("UCIMoveHistory = %q", got)
	}
	if got := len(b.MoveHistory()); got != 3 {
		t.Errorf("MoveHistory length = %d, want 3", got)
	}
}

// The incremental hash must match a from-scratch recomputation after
// any legal sequence, including moves that touch every special rule.
func TestIncrementalHashMatchesFullHash(t *testing.T) {
	b := loadBoard(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	var walk func(depth int)
	walk = func(depth int) {
		if got := b.fullHash(); got != b.Hash() {
			t.Fatalf("hash mismatch at %s: incremental 0x%x, full 0x%x", b.Fen(), b.Hash(), got)
		}
		if depth == 0 {
			return
		}
		legalMoves := b.LegalMoves()
		for _, m := range legalMoves.Slice() {
			b.MakeMove(m)
			walk(depth - 1)
			b.UnmakeMove()
		}
	}
	walk(3)
}
