package core

import "math/rand"

// Zobrist key layout: 12*64 piece-square keys, one side-to-move key,
// four castling-right keys and eight en-passant file keys. The table
// is generated once from a fixed seed so hashes are stable across
// runs, and is immutable afterwards.
const (
	zobristSideKey        = 12 * 64
	zobristWhiteShortKey  = zobristSideKey + 1
	zobristWhiteLongKey   = zobristSideKey + 2
	zobristBlackShortKey  = zobristSideKey + 3
	zobristBlackLongKey   = zobristSideKey + 4
	zobristEPFileKeyBase  = zobristSideKey + 4
	zobristKeyCount       = 12*64 + 1 + 4 + 8
	zobristSeed           = 0x20f1b3d5a9c8e671
)

var zobristKeys [zobristKeyCount]uint64

func init() {
	rng := rand.New(rand.NewSource(zobristSeed))
	for i := range zobristKeys {
		zobristKeys[i] = rng.Uint64()
	}
}

// pieceKey returns the key for a piece standing on a square. Piece
// slots are 0..5 for white and 6..11 for black.
func pieceKey(p Piece, sq Square) uint64 {
	slot := int(p.Kind())
	if p.Color() == Black {
		slot += 6
	}
	return zobristKeys[slot*64+int(sq)]
}

// epFileKey returns the key for an en-passant target on the given
// file (1..8).
func epFileKey(file int) uint64 {
	return zobristKeys[zobristEPFileKeyBase+file]
}

var castlingKeys = [4]int{
	zobristWhiteShortKey, zobristWhiteLongKey, zobristBlackShortKey, zobristBlackLongKey,
}

// fullHash recomputes the position's Zobrist hash from scratch. Used
// when loading a FEN; make/unmake keep the hash updated incrementally
// and must always agree with this function.
func (b *Board) fullHash() uint64 {
	var h uint64
	for sq := Square(0); sq < 64; sq++ {
		if p := b.squares[sq]; !p.IsNone() {
			h ^= pieceKey(p, sq)
		}
	}
	if b.SideToMove == Black {
		h ^= zobristKeys[zobristSideKey]
	}
	for i, right := range b.castlingRights {
		if right {
			h ^= zobristKeys[castlingKeys[i]]
		}
	}
	if b.epSquare != NoSquare {
		h ^= epFileKey(b.epSquare.File())
	}
	return h
}
