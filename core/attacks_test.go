package core

import (
	"math/rand"
	"testing"
)

func bbFromSquares(names ...string) Bitboard {
	var bb Bitboard
	for _, name := range names {
		sq, err := SquareFromString(name)
		if err != nil {
			panic(err)
		}
		bb |= SquareBB(sq)
	}
	return bb
}

func mustSquare(name string) Square {
	sq, err := SquareFromString(name)
	if err != nil {
		panic(err)
	}
	return sq
}

func TestKnightAttacks(t *testing.T) {
	data := []struct {
		sq   string
		want Bitboard
	}{
		{"b8", bbFromSquares("a6", "c6", "d7")},
		{"d4", bbFromSquares("b3", "b5", "c2", "c6", "e2", "e6", "f3", "f5")},
		{"h1", bbFromSquares("f2", "g3")},
		{"a1", bbFromSquares("b3", "c2")},
	}
	for _, d := range data {
		if got := KnightAttacks(mustSquare(d.sq)); got != d.want {
			t.Errorf("KnightAttacks(%s):\ngot\n%vwant\n%v", d.sq, got, d.want)
		}
	}
}

func TestKingAttacks(t *testing.T) {
	data := []struct {
		sq   string
		want Bitboard
	}{
		{"a8", bbFromSquares("a7", "b7", "b8")},
		{"e4", bbFromSquares("d3", "d4", "d5", "e3", "e5", "f3", "f4", "f5")},
		{"h1", bbFromSquares("g1", "g2", "h2")},
	}
	for _, d := range data {
		if got := KingAttacks(mustSquare(d.sq)); got != d.want {
			t.Errorf("KingAttacks(%s):\ngot\n%vwant\n%v", d.sq, got, d.want)
		}
	}
}

func TestPawnAttacks(t *testing.T) {
	data := []struct {
		sq    string
		color PieceColor
		want  Bitboard
	}{
		{"e2", White, bbFromSquares("d3", "f3")},
		{"a2", White, bbFromSquares("b3")},
		{"h7", Black, bbFromSquares("g6")},
		{"d5", Black, bbFromSquares("c4", "e4")},
	}
	for _, d := range data {
		if got := PawnAttacks(mustSquare(d.sq), d.color); got != d.want {
			t.Errorf("PawnAttacks(%s, %v):\ngot\n%vwant\n%v", d.sq, d.color, got, d.want)
		}
	}
}

func TestPawnAttacksBBMatchesPerSquareTables(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		pawns := Bitboard(rng.Uint64()) &^ (Rank1 | Rank8)
		for _, color := range [2]PieceColor{White, Black} {
			var want Bitboard
			for bb := pawns; bb != 0; {
				want |= PawnAttacks(PopMSB(&bb), color)
			}
			if got := PawnAttacksBB(pawns, color); got != want {
				t.Fatalf("PawnAttacksBB(0x%x, %v) = 0x%x, want 0x%x", pawns, color, got, want)
			}
		}
	}
}

// The magic-indexed tables must agree with a plain ray walk for any
// occupancy.
func TestMagicAttacksMatchRayWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		occ := Bitboard(rng.Uint64()) & Bitboard(rng.Uint64())
		for sq := Square(0); sq < 64; sq++ {
			wantRook := rayAttacks(occ, sq, Up, Down, Left, Right)
			if got := RookAttacks(sq, occ); got != wantRook {
				t.Fatalf("RookAttacks(%v, 0x%x):\ngot\n%vwant\n%v", sq, occ, got, wantRook)
			}
			wantBishop := rayAttacks(occ, sq, UpLeft, UpRight, DownLeft, DownRight)
			if got := BishopAttacks(sq, occ); got != wantBishop {
				t.Fatalf("BishopAttacks(%v, 0x%x):\ngot\n%vwant\n%v", sq, occ, got, wantBishop)
			}
			if got := QueenAttacks(sq, occ); got != wantRook|wantBishop {
				t.Fatalf("QueenAttacks(%v, 0x%x) disagrees with rook|bishop", sq, occ)
			}
		}
	}
}

func TestSquaresBetween(t *testing.T) {
	data := []struct {
		a, b string
		want Bitboard
	}{
		{"e1", "e8", bbFromSquares("e2", "e3", "e4", "e5", "e6", "e7")},
		{"a1", "h8", bbFromSquares("b2", "c3", "d4", "e5", "f6", "g7")},
		{"a1", "c1", bbFromSquares("b1")},
		{"a1", "b1", 0},
		{"a1", "b3", 0}, // no shared line
	}
	for _, d := range data {
		a, b := mustSquare(d.a), mustSquare(d.b)
		if got := SquaresBetween(a, b); got != d.want {
			t.Errorf("SquaresBetween(%s, %s):\ngot\n%vwant\n%v", d.a, d.b, got, d.want)
		}
		if got := SquaresBetween(b, a); got != d.want {
			t.Errorf("SquaresBetween(%s, %s):\ngot\n%vwant\n%v", d.b, d.a, got, d.want)
		}
	}
}
