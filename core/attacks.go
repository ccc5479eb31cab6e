package core

// attacks.go builds every precomputed attack table the move generator
// relies on: leaper tables, empty-board rays, the squares-between
// lookup and the magic-indexed sliding attack tables. All tables are
// filled once at init and never written again.

// Directions as square-index deltas. Up points toward rank 8, which is
// toward smaller indexes.
type Direction int

const (
	Up        Direction = -8
	Down      Direction = 8
	Left      Direction = -1
	Right     Direction = 1
	UpLeft    Direction = Up + Left
	UpRight   Direction = Up + Right
	DownLeft  Direction = Down + Left
	DownRight Direction = Down + Right
)

func (d Direction) IsCardinal() bool {
	return d == Up || d == Down || d == Left || d == Right
}

// edgeDistance holds, for one square, the number of squares to each
// board edge.
type edgeDistance struct {
	left, right, up, down             int
	upLeft, upRight, downLeft, downRight int
}

var edgeDistances [64]edgeDistance

func (e *edgeDistance) inDirection(d Direction) int {
	switch d {
	case Up:
		return e.up
	case Down:
		return e.down
	case Left:
		return e.left
	case Right:
		return e.right
	case UpLeft:
		return e.upLeft
	case UpRight:
		return e.upRight
	case DownLeft:
		return e.downLeft
	case DownRight:
		return e.downRight
	}
	return 0
}

var (
	knightAttacks    [64]Bitboard
	kingAttacks      [64]Bitboard
	whitePawnAttacks [64]Bitboard
	blackPawnAttacks [64]Bitboard

	// Empty-board rays from every square, one per direction.
	kingRays [64][8]struct {
		bb  Bitboard
		dir Direction
	}

	// between[a][b] holds the squares strictly between a and b when
	// they share a rank, file or diagonal, and 0 otherwise.
	between [64][64]Bitboard
)

var allDirections = [8]Direction{Up, Down, Left, Right, UpLeft, UpRight, DownLeft, DownRight}

// Fixed magic multipliers and shifts for the sliding attack tables,
// found offline by the magic search tool.
var rookMagics = [64]uint64{
	0xb7c8ffffbdf8ed79, 0x7cccb4acac99a09a, 0x277f8a1f457fa352, 0x7e7d01513baf5767, 0xea6fff8a18fecce7,
	0x05d24e354a272711, 0xcb734ff54bfdceab, 0xc796020f8482c023, 0xcd8c8f85cd8c7798, 0xeaa063aac121fd78,
	0xdc1e46605b34c09c, 0xcbacc491fc4f54bc, 0x8036e0e6d8f8d7b8, 0xd3b647d77960e7d8, 0x9b20d4fa1bc46876,
	0x44c4264f0b18de1e, 0x8855b001ac251d80, 0x9625d5292d2e3c8e, 0xdbda6f4a66e590a7, 0x829058c99069906d,
	0xc9c0b0ea9c5521fb, 0x4177cd4386a64fab, 0x324a8dbe2ff95405, 0x55cd15e172a8d76f, 0xfb64a8f2415d7821,
	0xe7e48fdaafbff944, 0xbbb74318d41d9980, 0x11ab8facd32cad62, 0x10fcc8bc23373750, 0x528b8b07f650b407,
	0x0e2ec3ddbe240271, 0x658d05b962e98275, 0xf70541a9e66a28a3, 0x79336c523e22a894, 0xe0543017e7f2ea61,
	0x626d5cde515429f3, 0xda285c3eb049a381, 0xb33e026abed080c8, 0x4fd05955da71f2bd, 0x6f5e84d217ad0bd7,
	0x96cd81400f2a7f68, 0x815be01fdbcb6d01, 0x66d6a657bfde74ac, 0xed07915ff915e160, 0x4267b33c3ccf4512,
	0xb945f45e60bc88c0, 0x6f25882bfdacac61, 0xc16006db41b8fc7e, 0x327dfffdbe7ae3aa, 0x7cf6fa0a0d05f415,
	0xc480c82b51c4a8df, 0x0f43028053a4e4b4, 0x5475cff715cffbd0, 0xdea9695deb61b438, 0xac8aea22a7dbf996,
	0x73aecf15f4cd6390, 0xd6f50be59bf640b1, 0xa587df828f4368ab, 0x3581646cb6083d6b, 0xe4ded3bf94deb829,
	0x1878781a0a5f7d3a, 0x7a1ca6b38e4a76a1, 0x3322c373d920ddc6, 0x62ca191005858111,
}

var rookShifts = [64]uint{
	50, 50, 50, 50, 51, 50, 50, 49, 51, 52, 51, 51, 51, 52, 52, 51,
	51, 52, 52, 52, 51, 51, 52, 50, 51, 52, 51, 51, 52, 51, 52, 50,
	51, 52, 52, 51, 51, 51, 52, 51, 51, 52, 51, 52, 51, 51, 52, 51,
	51, 52, 51, 51, 52, 52, 52, 50, 49, 50, 50, 50, 50, 50, 50, 49,
}

var bishopMagics = [64]uint64{
	0xb8d001f098f81e00, 0x0608526004064090, 0x584f1948600c9c91, 0xe2333ab7e2602083, 0xbb8eb4dc10882089,
	0x9aa25ead2c633000, 0x6e1bbba2880e8d21, 0xe361039861b637db, 0x464ecb40f41fe041, 0xe0c0f80f83c7830c,
	0x27e4caa0650d407f, 0x421b379212440abe, 0x23bcf95910410bce, 0xca7e6ba3a5100445, 0x869e968d7420139d,
	0x0ee4020cc9082543, 0x9b790e4c8a02b092, 0xd1eb1b0b0709a40b, 0x399de3efefb62600, 0x098ee6e703b6d575,
	0xe96c65008088e041, 0x399928d647fdeffb, 0xfe5924841912a45c, 0xfe14f07af8e50e04, 0x50349f0231d66c00,
	0xcf50a44c8eccf800, 0x320f04daf0528793, 0x16f2bedbffd3bddc, 0xb0987fefca7fbfd2, 0x5e244b495bad4658,
	0xcbfe038e2de72e2a, 0x1a1887c884c4e03b, 0xaf91c17679c0e63f, 0x37aa2398eb380684, 0x459c2357a2543de8,
	0x538185e1d430c2fa, 0x935571681f6fdbf7, 0xc25f97052e844918, 0x51a3a00c9757160b, 0x1f84963ba6f603c4,
	0x07fcb81d3861900f, 0x3e9c82fc08908805, 0x39938dcad7a938e1, 0xd0692149024012d8, 0x81e0cf3e5f758447,
	0xf763b7f04f3b4f05, 0xe96010e61600ce68, 0x28d424ea68102500, 0x3632c7bfbbff7760, 0x18ef575d72945d9d,
	0x15994bdf7befd422, 0xfcef1e05ee55acd1, 0xd7a4e6066ac05c8e, 0x81589a1a23410129, 0x8640b904cc7c8083,
	0xe774703dd07f8f7a, 0x6b02be82acde54f5, 0xbdf88210810427d1, 0x7de5c389dc68f251, 0xb1d8820280d514d7,
	0xf348042a41ee4af1, 0x019c01e38b70e474, 0x47632631826a015f, 0xe226625000cede4c,
}

var bishopShifts = [64]uint{
	57, 58, 58, 58, 58, 58, 58, 56, 58, 58, 58, 58, 58, 58, 58, 58,
	58, 58, 55, 55, 56, 55, 58, 58, 58, 58, 55, 52, 53, 55, 58, 58,
	58, 58, 55, 53, 53, 55, 58, 58, 58, 58, 55, 56, 55, 55, 58, 58,
	58, 58, 58, 58, 58, 58, 58, 58, 56, 58, 56, 58, 58, 58, 58, 56,
}

var (
	rookMasks   [64]Bitboard
	bishopMasks [64]Bitboard

	rookAttackTable   [64][]Bitboard
	bishopAttackTable [64][]Bitboard
)

func init() {
	initEdgeDistances()
	initLeaperAttacks()
	initKingRays()
	initBetween()
	initBlockerMasks()
	rookAttackTable = buildMagicTable(rookMasks, rookMagics, rookShifts,
		[]Direction{Up, Down, Left, Right})
	bishopAttackTable = buildMagicTable(bishopMasks, bishopMagics, bishopShifts,
		[]Direction{UpLeft, UpRight, DownLeft, DownRight})
}

func initEdgeDistances() {
	for sq := Square(0); sq < 64; sq++ {
		file := int(sq) % 8
		e := &edgeDistances[sq]
		e.left = file
		e.right = 7 - file
		e.up = int(sq) / 8
		e.down = (63 - int(sq)) / 8
		e.upLeft = min(e.up, e.left)
		e.upRight = min(e.up, e.right)
		e.downLeft = min(e.down, e.left)
		e.downRight = min(e.down, e.right)
	}
}

func initLeaperAttacks() {
	knightJumps := []struct{ d, minLeft, minRight, minUp, minDown int }{
		{-10, 2, 0, 1, 0}, {-17, 1, 0, 2, 0}, {-15, 0, 1, 2, 0}, {-6, 0, 2, 1, 0},
		{6, 2, 0, 0, 1}, {15, 1, 0, 0, 2}, {17, 0, 1, 0, 2}, {10, 0, 2, 0, 1},
	}
	for sq := Square(0); sq < 64; sq++ {
		e := edgeDistances[sq]
		var knight Bitboard
		for _, j := range knightJumps {
			if e.left >= j.minLeft && e.right >= j.minRight && e.up >= j.minUp && e.down >= j.minDown {
				knight |= SquareBB(sq + Square(j.d))
			}
		}
		knightAttacks[sq] = knight

		var king Bitboard
		for _, d := range allDirections {
			if e.inDirection(d) >= 1 {
				king |= SquareBB(sq + Square(d))
			}
		}
		kingAttacks[sq] = king

		var wp, bp Bitboard
		if e.up > 0 && e.left > 0 {
			wp |= SquareBB(sq + Square(UpLeft))
		}
		if e.up > 0 && e.right > 0 {
			wp |= SquareBB(sq + Square(UpRight))
		}
		if e.down > 0 && e.left > 0 {
			bp |= SquareBB(sq + Square(DownLeft))
		}
		if e.down > 0 && e.right > 0 {
			bp |= SquareBB(sq + Square(DownRight))
		}
		whitePawnAttacks[sq] = wp
		blackPawnAttacks[sq] = bp
	}
}

func initKingRays() {
	for sq := Square(0); sq < 64; sq++ {
		for i, d := range allDirections {
			kingRays[sq][i].bb = rayAttacks(0, sq, d)
			kingRays[sq][i].dir = d
		}
	}
}

func initBetween() {
	for sq := Square(0); sq < 64; sq++ {
		for _, d := range allDirections {
			var seen Bitboard
			dist := edgeDistances[sq].inDirection(d)
			for i := 1; i <= dist; i++ {
				target := sq + Square(int(d)*i)
				between[sq][target] = seen
				seen |= SquareBB(target)
			}
		}
	}
}

// rayAttacks walks from a square in the given directions, stopping at
// (and including) the first blocker along each ray.
func rayAttacks(blockers Bitboard, sq Square, dirs ...Direction) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		dist := edgeDistances[sq].inDirection(d)
		for i := 1; i <= dist; i++ {
			target := sq + Square(int(d)*i)
			attacks |= SquareBB(target)
			if blockers.Has(target) {
				break
			}
		}
	}
	return attacks
}

func initBlockerMasks() {
	for sq := Square(0); sq < 64; sq++ {
		for _, d := range allDirections {
			dist := edgeDistances[sq].inDirection(d)
			for i := 1; i <= dist; i++ {
				target := sq + Square(int(d)*i)
				if d.IsCardinal() {
					// A blocker at the far end of a ray never shortens
					// it, so edge squares are left out of the mask
					// unless the slider shares that edge line.
					if (target.File() == 1 && sq.File() != 1) ||
						(target.File() == 8 && sq.File() != 8) ||
						(target.Rank() == 1 && sq.Rank() != 1) ||
						(target.Rank() == 8 && sq.Rank() != 8) {
						continue
					}
					rookMasks[sq] |= SquareBB(target)
				} else {
					if target.Rank() == 1 || target.Rank() == 8 ||
						target.File() == 1 || target.File() == 8 {
						continue
					}
					bishopMasks[sq] |= SquareBB(target)
				}
			}
		}
	}
}

// blockerSubsets enumerates every subset of a blocker mask, including
// the empty one.
func blockerSubsets(mask Bitboard) []Bitboard {
	subsets := make([]Bitboard, 0, 1<<mask.Count())
	sub := Bitboard(0)
	for {
		subsets = append(subsets, sub)
		sub = (sub - mask) & mask
		if sub == 0 {
			break
		}
	}
	return subsets
}

// buildMagicTable fills the per-square attack arrays: each array is
// sized to the largest index any blocker subset hashes to, then every
// subset's ray attack set is stored at its magic index.
func buildMagicTable(masks [64]Bitboard, magics [64]uint64, shifts [64]uint, dirs []Direction) [64][]Bitboard {
	var table [64][]Bitboard
	for sq := Square(0); sq < 64; sq++ {
		subsets := blockerSubsets(masks[sq])
		maxIndex := uint64(0)
		for _, blockers := range subsets {
			idx := (uint64(blockers) * magics[sq]) >> shifts[sq]
			if idx > maxIndex {
				maxIndex = idx
			}
		}
		table[sq] = make([]Bitboard, maxIndex+1)
		for _, blockers := range subsets {
			idx := (uint64(blockers) * magics[sq]) >> shifts[sq]
			table[sq][idx] = rayAttacks(blockers, sq, dirs...)
		}
	}
	return table
}

// RookAttacks returns the squares a rook on sq attacks given the full
// occupancy.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	blockers := occ & rookMasks[sq]
	return rookAttackTable[sq][(uint64(blockers)*rookMagics[sq])>>rookShifts[sq]]
}

// BishopAttacks returns the squares a bishop on sq attacks given the
// full occupancy.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	blockers := occ & bishopMasks[sq]
	return bishopAttackTable[sq][(uint64(blockers)*bishopMagics[sq])>>bishopShifts[sq]]
}

// QueenAttacks is the union of the rook and bishop attack sets.
func QueenAttacks(sq Square, occ Bitboard) Bitboard {
	return RookAttacks(sq, occ) | BishopAttacks(sq, occ)
}

// PawnAttacksBB computes the attack targets of every pawn in the given
// bitboard at once.
func PawnAttacksBB(pawns Bitboard, color PieceColor) Bitboard {
	if color == White {
		return ((pawns &^ FileA) << 9) | ((pawns &^ FileH) << 7)
	}
	return ((pawns &^ FileA) >> 7) | ((pawns &^ FileH) >> 9)
}

// PawnAttacks returns the attack targets of a single pawn.
func PawnAttacks(sq Square, color PieceColor) Bitboard {
	if color == White {
		return whitePawnAttacks[sq]
	}
	return blackPawnAttacks[sq]
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set from sq, castling excluded.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// SquaresBetween returns the squares strictly between a and b along a
// shared rank, file or diagonal, or 0 when no line connects them.
func SquaresBetween(a, b Square) Bitboard {
	return between[a][b]
}
