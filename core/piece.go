package core

// Piece kinds. The numeric values combine with the color bit to form
// an index into the board's bitboard array.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoKind PieceKind = 0x07
)

type PieceColor uint8

const (
	White PieceColor = 0x00
	Black PieceColor = 0x08
)

func (c PieceColor) Opposite() PieceColor {
	return c ^ Black
}

func (c PieceColor) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// A Piece packs kind and color into one byte: the low three bits hold
// the kind, bit three holds the color. The raw byte doubles as the
// index into the 14-slot bitboard array (white pieces 0..5, black
// pieces 8..13).
type Piece uint8

const NoPiece Piece = 0xFF

func MakePiece(kind PieceKind, color PieceColor) Piece {
	return Piece(uint8(kind) | uint8(color))
}

func (p Piece) Kind() PieceKind {
	return PieceKind(p & 0x07)
}

func (p Piece) Color() PieceColor {
	return PieceColor(p & 0x08)
}

func (p Piece) IsNone() bool {
	return p == NoPiece
}

func (p Piece) IsSlider() bool {
	k := p.Kind()
	return k == Bishop || k == Rook || k == Queen
}

// Index returns the slot of this piece's bitboard.
func (p Piece) Index() int {
	return int(p)
}

var pieceChars = [6]byte{'p', 'n', 'b', 'r', 'q', 'k'}

// PieceFromChar decodes a FEN piece letter; uppercase is white.
func PieceFromChar(c byte) Piece {
	color := Black
	if c >= 'A' && c <= 'Z' {
		color = White
		c += 'a' - 'A'
	}
	for kind, pc := range pieceChars {
		if pc == c {
			return MakePiece(PieceKind(kind), color)
		}
	}
	return NoPiece
}

func (p Piece) Char() byte {
	if p.IsNone() {
		return '.'
	}
	c := pieceChars[p.Kind()]
	if p.Color() == White {
		c -= 'a' - 'A'
	}
	return c
}

func (p Piece) String() string {
	return string(p.Char())
}

// promotionPiece maps a promotion move flag to the resulting piece.
func promotionPiece(flag MoveFlag, color PieceColor) Piece {
	switch flag {
	case PromotionKnight:
		return MakePiece(Knight, color)
	case PromotionBishop:
		return MakePiece(Bishop, color)
	case PromotionRook:
		return MakePiece(Rook, color)
	case PromotionQueen:
		return MakePiece(Queen, color)
	}
	return NoPiece
}
