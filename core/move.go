package core

// Move flags occupy the low four bits of a move.
type MoveFlag uint8

const (
	FlagNone MoveFlag = iota
	EnPassant
	ShortCastling
	LongCastling
	PromotionKnight
	PromotionBishop
	PromotionRook
	PromotionQueen
)

// A Move packs a start square, end square and flag into 16 bits:
//
//	000000 000000 0000
//	start  end    flag
type Move uint16

const NullMove Move = 0

func NewMove(start, end Square, flag MoveFlag) Move {
	return Move(uint16(start)<<10 | uint16(end)<<4 | uint16(flag))
}

func (m Move) Start() Square {
	return Square(m >> 10)
}

func (m Move) End() Square {
	return Square((m >> 4) & 0x3F)
}

func (m Move) Flag() MoveFlag {
	return MoveFlag(m & 0x0F)
}

func (m Move) IsPromotion() bool {
	return m.Flag() >= PromotionKnight
}

func (m Move) IsCastling() bool {
	f := m.Flag()
	return f == ShortCastling || f == LongCastling
}

// String renders the move in UCI coordinate form, e.g. "e2e4" or
// "e7e8q".
func (m Move) String() string {
	s := m.Start().String() + m.End().String()
	switch m.Flag() {
	case PromotionKnight:
		s += "n"
	case PromotionBishop:
		s += "b"
	case PromotionRook:
		s += "r"
	case PromotionQueen:
		s += "q"
	}
	return s
}

// maxMovesPerPosition bounds the number of legal moves in any reachable
// chess position.
const maxMovesPerPosition = 218

// A MoveList is a fixed-capacity move buffer, avoiding a heap
// allocation per generator call.
type MoveList struct {
	moves [maxMovesPerPosition]Move
	count int
}

func (l *MoveList) Add(m Move) {
	l.moves[l.count] = m
	l.count++
}

func (l *MoveList) AddMove(start, end Square, flag MoveFlag) {
	l.Add(NewMove(start, end, flag))
}

func (l *MoveList) Len() int {
	return l.count
}

func (l *MoveList) Empty() bool {
	return l.count == 0
}

func (l *MoveList) At(i int) Move {
	return l.moves[i]
}

// Slice returns the filled portion of the buffer. The slice aliases
// the list's backing array.
func (l *MoveList) Slice() []Move {
	return l.moves[:l.count]
}
