package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const StartingPositionFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Errors surfaced at the command boundary.
var (
	ErrInvalidFen  = errors.New("invalid fen")
	ErrInvalidMove = errors.New("invalid move")
)

// Castling right slots.
const (
	castleWhiteShort = iota
	castleWhiteLong
	castleBlackShort
	castleBlackLong
)

// Squares involved in castling and castling-right updates.
const (
	sqA8 Square = 0
	sqE8 Square = 4
	sqH8 Square = 7
	sqA1 Square = 56
	sqE1 Square = 60
	sqH1 Square = 63
)

// boardSnapshot captures everything MakeMove destroys, so UnmakeMove
// can restore the previous position exactly. One combined record per
// ply replaces the source's three parallel stacks.
type boardSnapshot struct {
	move           Move
	captured       Piece
	epSquare       Square
	castlingRights [4]bool
	halfMoveClock  uint8
	fullMoveNumber uint16
	whiteAttacking Bitboard
	blackAttacking Bitboard
}

// Board is the engine's position representation: one bitboard per
// piece-and-color plus a mailbox, which must always agree. The
// bitboards drive move generation and attack queries; the mailbox
// answers "what stands on this square" during make/unmake and move
// decoding.
type Board struct {
	bitboards [14]Bitboard
	squares   [64]Piece

	SideToMove PieceColor

	epSquare       Square
	castlingRights [4]bool
	halfMoveClock  uint8
	fullMoveNumber uint16

	whiteAttacking Bitboard
	blackAttacking Bitboard

	history     []boardSnapshot
	hashHistory []uint64
}

// Pieces returns the occupancy of one side.
func (b *Board) Pieces(color PieceColor) Bitboard {
	base := int(color)
	return b.bitboards[base] | b.bitboards[base+1] | b.bitboards[base+2] |
		b.bitboards[base+3] | b.bitboards[base+4] | b.bitboards[base+5]
}

// AllPieces returns the occupancy of both sides.
func (b *Board) AllPieces() Bitboard {
	return b.Pieces(White) | b.Pieces(Black)
}

// PieceBB returns the bitboard of one piece type and color.
func (b *Board) PieceBB(kind PieceKind, color PieceColor) Bitboard {
	return b.bitboards[MakePiece(kind, color).Index()]
}

// SlidingPieces returns one side's bishops, rooks and queens.
func (b *Board) SlidingPieces(color PieceColor) Bitboard {
	return b.PieceBB(Bishop, color) | b.PieceBB(Rook, color) | b.PieceBB(Queen, color)
}

// PieceAt returns the mailbox occupant of a square.
func (b *Board) PieceAt(sq Square) Piece {
	return b.squares[sq]
}

func (b *Board) IsSquareEmpty(sq Square) bool {
	return b.squares[sq].IsNone()
}

// KingSquare returns the square of the given side's king.
func (b *Board) KingSquare(color PieceColor) Square {
	return b.PieceBB(King, color).MSB()
}

// EnPassantSquare returns the current en-passant target, or NoSquare.
func (b *Board) EnPassantSquare() Square {
	return b.epSquare
}

func (b *Board) CanCastleShort(color PieceColor) bool {
	if color == White {
		return b.castlingRights[castleWhiteShort]
	}
	return b.castlingRights[castleBlackShort]
}

func (b *Board) CanCastleLong(color PieceColor) bool {
	if color == White {
		return b.castlingRights[castleWhiteLong]
	}
	return b.castlingRights[castleBlackLong]
}

// Hash returns the Zobrist hash of the current position.
func (b *Board) Hash() uint64 {
	if len(b.hashHistory) == 0 {
		return 0
	}
	return b.hashHistory[len(b.hashHistory)-1]
}

// AttackingSquares returns every square the given side attacks in the
// current position. The set is cached and refreshed on every committed
// make/unmake.
func (b *Board) AttackingSquares(color PieceColor) Bitboard {
	if color == White {
		return b.whiteAttacking
	}
	return b.blackAttacking
}

// Copy returns a deep copy sharing no state with the receiver.
func (b *Board) Copy() Board {
	nb := *b
	nb.history = append([]boardSnapshot(nil), b.history...)
	nb.hashHistory = append([]uint64(nil), b.hashHistory...)
	return nb
}

// LoadFEN replaces the whole board state with the position described
// by the FEN string. The string is parsed into a scratch board first,
// so on error the receiver is left untouched.
func (b *Board) LoadFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return fmt.Errorf("%w: expected 6 fields, got %d", ErrInvalidFen, len(fields))
	}

	var nb Board
	nb.epSquare = NoSquare
	for sq := range nb.squares {
		nb.squares[sq] = NoPiece
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFen, len(ranks))
	}
	for rankIdx, rank := range ranks {
		file := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			p := PieceFromChar(c)
			if p.IsNone() || file > 7 {
				return fmt.Errorf("%w: bad placement %q", ErrInvalidFen, fields[0])
			}
			sq := Square(rankIdx*8 + file)
			nb.squares[sq] = p
			nb.bitboards[p.Index()] |= SquareBB(sq)
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %q does not span 8 files", ErrInvalidFen, rank)
		}
	}

	switch fields[1] {
	case "w":
		nb.SideToMove = White
	case "b":
		nb.SideToMove = Black
	default:
		return fmt.Errorf("%w: bad side to move %q", ErrInvalidFen, fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			switch fields[2][i] {
			case 'K':
				nb.castlingRights[castleWhiteShort] = true
			case 'Q':
				nb.castlingRights[castleWhiteLong] = true
			case 'k':
				nb.castlingRights[castleBlackShort] = true
			case 'q':
				nb.castlingRights[castleBlackLong] = true
			default:
				return fmt.Errorf("%w: bad castling rights %q", ErrInvalidFen, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := SquareFromString(fields[3])
		if err != nil {
			return fmt.Errorf("%w: bad en passant square %q", ErrInvalidFen, fields[3])
		}
		nb.epSquare = sq
	}

	halfMove, err := strconv.Atoi(fields[4])
	if err != nil || halfMove < 0 {
		return fmt.Errorf("%w: bad halfmove clock %q", ErrInvalidFen, fields[4])
	}
	nb.halfMoveClock = uint8(halfMove)

	fullMove, err := strconv.Atoi(fields[5])
	if err != nil || fullMove < 0 {
		return fmt.Errorf("%w: bad fullmove number %q", ErrInvalidFen, fields[5])
	}
	nb.fullMoveNumber = uint16(fullMove)

	if nb.PieceBB(King, White).Count() != 1 || nb.PieceBB(King, Black).Count() != 1 {
		return fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFen)
	}

	nb.updateAttackingSquares()
	nb.hashHistory = []uint64{nb.fullHash()}
	*b = nb
	return nil
}

// Fen emits the current position as a FEN string, including the
// correct castling-rights subset.
func (b *Board) Fen() string {
	var sb strings.Builder
	for rank := 0; rank < 8; rank++ {
		if rank != 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.squares[rank*8+file]
			if p.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}

	if b.SideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	rights := ""
	for i, c := range []byte{'K', 'Q', 'k', 'q'} {
		if b.castlingRights[i] {
			rights += string(c)
		}
	}
	if rights == "" {
		rights = "-"
	}
	sb.WriteString(rights)

	if b.epSquare == NoSquare {
		sb.WriteString(" -")
	} else {
		sb.WriteString(" " + b.epSquare.String())
	}
	fmt.Fprintf(&sb, " %d %d", b.halfMoveClock, b.fullMoveNumber)
	return sb.String()
}

// MakeMove commits a move: it pushes a snapshot, moves pieces across
// the bitboards and mailbox, maintains en passant, castling rights and
// the clocks, flips the side to move, refreshes the attack caches and
// pushes the incrementally updated hash.
func (b *Board) MakeMove(m Move) {
	start, end, flag := m.Start(), m.End(), m.Flag()
	moved := b.squares[start]
	us := moved.Color()

	capSq := end
	if flag == EnPassant {
		if us == White {
			capSq = end + 8
		} else {
			capSq = end - 8
		}
	}
	captured := b.squares[capSq]

	b.history = append(b.history, boardSnapshot{
		move:           m,
		captured:       captured,
		epSquare:       b.epSquare,
		castlingRights: b.castlingRights,
		halfMoveClock:  b.halfMoveClock,
		fullMoveNumber: b.fullMoveNumber,
		whiteAttacking: b.whiteAttacking,
		blackAttacking: b.blackAttacking,
	})

	hash := b.Hash()
	if b.epSquare != NoSquare {
		hash ^= epFileKey(b.epSquare.File())
	}
	oldRights := b.castlingRights

	if captured.IsNone() && moved.Kind() != Pawn {
		b.halfMoveClock++
	} else {
		b.halfMoveClock = 0
	}
	if us == Black {
		b.fullMoveNumber++
	}

	// The right to capture en passant lapses after any reply; a fresh
	// target appears only behind a double pawn push.
	b.epSquare = NoSquare
	if moved.Kind() == Pawn && (end-start == 16 || start-end == 16) {
		b.epSquare = (start + end) / 2
	}

	// Castling moves the rook as well.
	if flag == ShortCastling {
		rookFrom := sqH1
		if us == Black {
			rookFrom = sqH8
		}
		hash ^= b.shiftPiece(rookFrom, end-1)
	} else if flag == LongCastling {
		rookFrom := sqA1
		if us == Black {
			rookFrom = sqA8
		}
		hash ^= b.shiftPiece(rookFrom, end+1)
	}

	// Castling rights: a king move clears both of its side's rights; a
	// rook moving from, or being captured on, its home square clears
	// one.
	if moved.Kind() == King {
		if us == White {
			b.castlingRights[castleWhiteShort] = false
			b.castlingRights[castleWhiteLong] = false
		} else {
			b.castlingRights[castleBlackShort] = false
			b.castlingRights[castleBlackLong] = false
		}
	}
	for _, sq := range [2]Square{start, capSq} {
		switch sq {
		case sqH1:
			b.castlingRights[castleWhiteShort] = false
		case sqA1:
			b.castlingRights[castleWhiteLong] = false
		case sqH8:
			b.castlingRights[castleBlackShort] = false
		case sqA8:
			b.castlingRights[castleBlackLong] = false
		}
	}
	for i := range oldRights {
		if oldRights[i] != b.castlingRights[i] {
			hash ^= zobristKeys[castlingKeys[i]]
		}
	}

	if !captured.IsNone() {
		b.bitboards[captured.Index()] &^= SquareBB(capSq)
		b.squares[capSq] = NoPiece
		hash ^= pieceKey(captured, capSq)
	}

	if m.IsPromotion() {
		promoted := promotionPiece(flag, us)
		b.bitboards[moved.Index()] &^= SquareBB(start)
		b.bitboards[promoted.Index()] |= SquareBB(end)
		b.squares[start] = NoPiece
		b.squares[end] = promoted
		hash ^= pieceKey(moved, start) ^ pieceKey(promoted, end)
	} else {
		hash ^= b.shiftPiece(start, end)
	}

	b.SideToMove = b.SideToMove.Opposite()
	hash ^= zobristKeys[zobristSideKey]
	if b.epSquare != NoSquare {
		hash ^= epFileKey(b.epSquare.File())
	}

	b.updateAttackingSquares()
	b.hashHistory = append(b.hashHistory, hash)
}

// shiftPiece moves the occupant of start to the empty square end and
// returns the hash delta.
func (b *Board) shiftPiece(start, end Square) uint64 {
	p := b.squares[start]
	b.bitboards[p.Index()] &^= SquareBB(start)
	b.bitboards[p.Index()] |= SquareBB(end)
	b.squares[start] = NoPiece
	b.squares[end] = p
	return pieceKey(p, start) ^ pieceKey(p, end)
}

// UnmakeMove reverses the most recent MakeMove, restoring the board
// bit for bit.
func (b *Board) UnmakeMove() {
	snap := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.hashHistory = b.hashHistory[:len(b.hashHistory)-1]

	m := snap.move
	start, end, flag := m.Start(), m.End(), m.Flag()
	b.SideToMove = b.SideToMove.Opposite()
	us := b.SideToMove

	if m.IsPromotion() {
		promoted := b.squares[end]
		pawn := MakePiece(Pawn, us)
		b.bitboards[promoted.Index()] &^= SquareBB(end)
		b.bitboards[pawn.Index()] |= SquareBB(start)
		b.squares[end] = NoPiece
		b.squares[start] = pawn
	} else {
		b.shiftPiece(end, start)
	}

	if flag == ShortCastling {
		rookHome := sqH1
		if us == Black {
			rookHome = sqH8
		}
		b.shiftPiece(end-1, rookHome)
	} else if flag == LongCastling {
		rookHome := sqA1
		if us == Black {
			rookHome = sqA8
		}
		b.shiftPiece(end+1, rookHome)
	}

	if !snap.captured.IsNone() {
		capSq := end
		if flag == EnPassant {
			// The captured pawn stood beside the destination, not on it.
			if us == White {
				capSq = end + 8
			} else {
				capSq = end - 8
			}
		}
		b.bitboards[snap.captured.Index()] |= SquareBB(capSq)
		b.squares[capSq] = snap.captured
	}

	b.epSquare = snap.epSquare
	b.castlingRights = snap.castlingRights
	b.halfMoveClock = snap.halfMoveClock
	b.fullMoveNumber = snap.fullMoveNumber
	b.whiteAttacking = snap.whiteAttacking
	b.blackAttacking = snap.blackAttacking
}

// MakeUCIMove decodes a coordinate-notation move string against the
// current position and plays it. A king stepping two files is read as
// castling when the matching right is still set; a pawn landing on the
// en-passant target is read as an en-passant capture.
func (b *Board) MakeUCIMove(move string) error {
	if len(move) != 4 && len(move) != 5 {
		return fmt.Errorf("%w: %q", ErrInvalidMove, move)
	}
	start, err := SquareFromString(move[0:2])
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMove, move)
	}
	end, err := SquareFromString(move[2:4])
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMove, move)
	}

	flag := FlagNone
	p := b.squares[start]
	switch {
	case p.Kind() == Pawn && end == b.epSquare:
		flag = EnPassant
	case p.Kind() == King && end == start+2 && b.CanCastleShort(p.Color()):
		flag = ShortCastling
	case p.Kind() == King && end == start-2 && b.CanCastleLong(p.Color()):
		flag = LongCastling
	}

	if len(move) == 5 {
		switch move[4] {
		case 'n':
			flag = PromotionKnight
		case 'b':
			flag = PromotionBishop
		case 'r':
			flag = PromotionRook
		case 'q':
			flag = PromotionQueen
		default:
			return fmt.Errorf("%w: bad promotion piece in %q", ErrInvalidMove, move)
		}
	}

	b.MakeMove(NewMove(start, end, flag))
	return nil
}

// LegalMoves generates every legal move for the side to move.
func (b *Board) LegalMoves() MoveList {
	return generateLegalMoves(b)
}

// LegalCaptures generates the legal moves that capture a piece.
func (b *Board) LegalCaptures() MoveList {
	moves := generateLegalMoves(b)
	var captures MoveList
	for _, m := range moves.Slice() {
		if !b.squares[m.End()].IsNone() || m.Flag() == EnPassant {
			captures.Add(m)
		}
	}
	return captures
}

// IsSideInCheck reports whether the given side's king is attacked.
func (b *Board) IsSideInCheck(side PieceColor) bool {
	return b.AttackingSquares(side.Opposite())&b.PieceBB(King, side) != 0
}

func (b *Board) IsCheckmate(side PieceColor) bool {
	moves := b.LegalMoves()
	return b.SideToMove == side && b.IsSideInCheck(side) && moves.Empty()
}

func (b *Board) IsStalemate() bool {
	moves := b.LegalMoves()
	return !b.IsSideInCheck(b.SideToMove) && moves.Empty()
}

// IsInsufficientMaterial applies a coarse rule: no pawns, rooks or
// queens on the board and at most two knights and two bishops per
// side. It ignores bishop color complexes, an accepted approximation.
func (b *Board) IsInsufficientMaterial() bool {
	for _, color := range [2]PieceColor{White, Black} {
		if b.PieceBB(Pawn, color) != 0 || b.PieceBB(Rook, color) != 0 || b.PieceBB(Queen, color) != 0 {
			return false
		}
		if b.PieceBB(Knight, color).Count() > 2 || b.PieceBB(Bishop, color).Count() > 2 {
			return false
		}
	}
	return true
}

// IsThreefoldRepetition scans the hash history for any position that
// occurred at least three times. Linear over the game, which is fine
// at game lengths.
func (b *Board) IsThreefoldRepetition() bool {
	counts := make(map[uint64]int, len(b.hashHistory))
	for _, h := range b.hashHistory {
		counts[h]++
		if counts[h] >= 3 {
			return true
		}
	}
	return false
}

func (b *Board) IsDrawByFiftyMoveRule() bool {
	return b.halfMoveClock >= 100
}

func (b *Board) IsDraw() bool {
	return b.IsDrawByFiftyMoveRule() || b.IsStalemate() ||
		b.IsInsufficientMaterial() || b.IsThreefoldRepetition()
}

// updateAttackingSquares refreshes both attack caches from the piece
// placement.
func (b *Board) updateAttackingSquares() {
	occ := b.AllPieces()
	b.whiteAttacking = b.attackSet(White, occ)
	b.blackAttacking = b.attackSet(Black, occ)
}

// attackSet computes every square one side attacks given an occupancy.
// Passing an occupancy with the enemy king removed lets sliders x-ray
// through it, which king-move generation needs.
func (b *Board) attackSet(side PieceColor, occ Bitboard) Bitboard {
	attacks := PawnAttacksBB(b.PieceBB(Pawn, side), side)
	for knights := b.PieceBB(Knight, side); knights != 0; {
		attacks |= KnightAttacks(PopMSB(&knights))
	}
	for bishops := b.PieceBB(Bishop, side); bishops != 0; {
		attacks |= BishopAttacks(PopMSB(&bishops), occ)
	}
	for rooks := b.PieceBB(Rook, side); rooks != 0; {
		attacks |= RookAttacks(PopMSB(&rooks), occ)
	}
	for queens := b.PieceBB(Queen, side); queens != 0; {
		attacks |= QueenAttacks(PopMSB(&queens), occ)
	}
	for kings := b.PieceBB(King, side); kings != 0; {
		attacks |= KingAttacks(PopMSB(&kings))
	}
	return attacks
}

// MoveHistory returns the moves played since the position was loaded.
func (b *Board) MoveHistory() []Move {
	moves := make([]Move, len(b.history))
	for i, snap := range b.history {
		moves[i] = snap.move
	}
	return moves
}

// UCIMoveHistory renders the move history as a space-separated UCI
// move list.
func (b *Board) UCIMoveHistory() string {
	parts := make([]string, len(b.history))
	for i, snap := range b.history {
		parts[i] = snap.move.String()
	}
	return strings.Join(parts, " ")
}

// String renders the board with rank 8 at the top, for the "d"
// command and debugging.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sb.WriteByte(b.squares[rank*8+file].Char())
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, " %d\n", 8-rank)
	}
	sb.WriteString("\na b c d e f g h\n")
	return sb.String()
}
