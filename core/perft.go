package core

import (
	"fmt"
	"time"
)

// Perft counts the leaf nodes of the legal move tree at the given
// depth. Depth one returns the move count directly without walking
// the subtree.
func Perft(b *Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.LegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for _, m := range moves.Slice() {
		b.MakeMove(m)
		nodes += Perft(b, depth-1)
		b.UnmakeMove()
	}
	return nodes
}

// DividePerft prints the leaf count under each root move plus the
// total, the form used to track down generator bugs move by move.
func DividePerft(b *Board, depth int) uint64 {
	start := time.Now()
	var total uint64
	legalMoves := b.LegalMoves()
	for _, m := range legalMoves.Slice() {
		b.MakeMove(m)
		nodes := Perft(b, depth-1)
		b.UnmakeMove()
		fmt.Printf("%v: %d\n", m, nodes)
		total += nodes
	}
	fmt.Printf("total nodes: %d\n", total)
	fmt.Printf("ms: %d\n", time.Since(start).Milliseconds())
	return total
}

// PerftTest pairs a position with its known leaf count at a depth.
type PerftTest struct {
	FEN      string
	Depth    int
	Expected uint64
}

// PerftSuite holds positions with published perft values, exercising
// castling, en passant, promotions, pins and discovered checks.
var PerftSuite = []PerftTest{
	{StartingPositionFEN, 6, 119060324},
	{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 0", 5, 193690690},
	{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 0", 6, 11030083},
	{"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 5, 15833292},
	{"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 5, 89941194},
	{"8/k1p5/8/KP5r/8/8/6p1/4R2N w - - 0 1", 6, 64081091},
	{"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 5, 164075551},
	{"q6r/1k6/8/8/8/8/1K6/Q6R w - - 0 1", 5, 16871195},
	{"k7/pppppppp/8/8/8/8/PPPPPPPP/K7 w - - 0 1", 7, 303041957},
	{"r1bqk2r/ppp2ppp/2n1pn2/8/QbBP4/2N2N2/PP3PPP/R1B2RK1 w kq - 4 9", 5, 108181315},
	{"r2q1rk1/4bppp/1p2pn2/3pP3/2p2B2/4P2P/1PPNQPP1/R4RK1 b - - 0 15", 5, 63507755},
}

// RunPerftTests runs the whole battery, printing one line per
// position, and reports whether every count matched.
func RunPerftTests() bool {
	passed, failed := 0, 0
	for _, test := range PerftSuite {
		var board Board
		if err := board.LoadFEN(test.FEN); err != nil {
			fmt.Printf("test %s FAILED (%v)\n", test.FEN, err)
			failed++
			continue
		}
		total := Perft(&board, test.Depth)
		if total == test.Expected {
			fmt.Printf("test %s PASSED (%d)\n", test.FEN, total)
			passed++
		} else {
			fmt.Printf("test %s FAILED (expected %d actual %d)\n", test.FEN, test.Expected, total)
			failed++
		}
	}
	fmt.Printf("Tests run: %d. Passed: %d. Failed: %d\n", passed+failed, passed, failed)
	return failed == 0
}
