package core

// movegen.go produces strictly legal moves in one generator pass: a
// single walk over the king's eight rays yields pin lines and sliding
// checkers, a check-resolution mask constrains every non-king move,
// and king moves are tested against the enemy attack set with the
// king lifted off the board so sliders x-ray through it.

// genContext carries the per-call state of one generation pass.
type genContext struct {
	board *Board
	side  PieceColor

	pinned   Bitboard
	pinLines [64]Bitboard

	// Destinations that resolve the current check. AllSquares when the
	// king is not in check, 0 on double check.
	checkResolutions Bitboard

	moves MoveList
}

func generateLegalMoves(b *Board) MoveList {
	ctx := genContext{
		board:            b,
		side:             b.SideToMove,
		checkResolutions: AllSquares,
	}
	ctx.computePinsAndCheckers()

	ctx.genPawnMoves()
	ctx.genKnightMoves()
	ctx.genSliderMoves(Bishop)
	ctx.genSliderMoves(Rook)
	ctx.genSliderMoves(Queen)
	ctx.genKingMoves()

	return ctx.moves
}

// computePinsAndCheckers walks the eight rays from the king once. For
// each ray holding an enemy slider able to attack along it, zero own
// pieces in between means a checker, exactly one means a pin. The
// check-resolution mask is derived from the checkers found here plus
// any knight or pawn giving check.
func (ctx *genContext) computePinsAndCheckers() {
	b := ctx.board
	side := ctx.side
	kingSq := b.KingSquare(side)
	enemySliders := b.SlidingPieces(side.Opposite())

	var slidingCheckers, slidingEvasion Bitboard

	for _, ray := range kingRays[kingSq] {
		if ray.bb&enemySliders == 0 {
			continue
		}
		var ownBetween int
		var ownSquare Square
		var seen Bitboard
		dist := edgeDistances[kingSq].inDirection(ray.dir)
		for i := 1; i <= dist; i++ {
			sq := kingSq + Square(int(ray.dir)*i)
			p := b.squares[sq]
			if p.IsNone() {
				seen |= SquareBB(sq)
				continue
			}
			if p.Color() == side {
				ownBetween++
				if ownBetween > 1 {
					break
				}
				ownSquare = sq
				continue
			}
			attacksAlongRay := p.Kind() == Queen ||
				(p.Kind() == Rook && ray.dir.IsCardinal()) ||
				(p.Kind() == Bishop && !ray.dir.IsCardinal())
			if attacksAlongRay {
				if ownBetween == 0 {
					slidingCheckers |= SquareBB(sq)
					slidingEvasion |= seen | SquareBB(sq)
				} else {
					ctx.pinned |= SquareBB(ownSquare)
					ctx.pinLines[ownSquare] = seen | SquareBB(sq)
				}
			}
			break
		}
	}

	nonSlidingCheckers := KnightAttacks(kingSq)&b.PieceBB(Knight, side.Opposite()) |
		PawnAttacks(kingSq, side)&b.PieceBB(Pawn, side.Opposite())

	switch {
	case slidingCheckers == 0 && nonSlidingCheckers == 0:
		ctx.checkResolutions = AllSquares
	case slidingCheckers.Count() > 1,
		slidingCheckers != 0 && nonSlidingCheckers != 0:
		// Double check: only the king may move.
		ctx.checkResolutions = 0
	case slidingCheckers != 0:
		ctx.checkResolutions = slidingEvasion
	default:
		// A knight or pawn check cannot be blocked, only captured.
		ctx.checkResolutions = nonSlidingCheckers
	}
}

// pinLine returns the squares a piece on sq may move to without
// exposing its king, AllSquares when it is not pinned.
func (ctx *genContext) pinLine(sq Square) Bitboard {
	if ctx.pinned.Has(sq) {
		return ctx.pinLines[sq]
	}
	return AllSquares
}

// addTargets emits one move per set bit of the destination bitboard.
func (ctx *genContext) addTargets(start Square, targets Bitboard, flag MoveFlag) {
	for targets != 0 {
		ctx.moves.AddMove(start, PopMSB(&targets), flag)
	}
}

func (ctx *genContext) genPawnMoves() {
	b := ctx.board
	side := ctx.side
	pawns := b.PieceBB(Pawn, side)
	empty := ^b.AllPieces()
	enemy := b.Pieces(side.Opposite())

	// Bulk target bitboards paired with the start-square offset that
	// reconstructs the moving pawn from each destination.
	var singlePushes, doublePushes, leftCaptures, rightCaptures Bitboard
	var pushBack, doubleBack, leftBack, rightBack Square
	var promotionRank Bitboard
	dir := 1
	if side == White {
		singlePushes = (pawns << 8) & empty
		doublePushes = (singlePushes << 8) & empty & Rank4
		leftCaptures = ((pawns &^ FileA) << 9) & enemy
		rightCaptures = ((pawns &^ FileH) << 7) & enemy
		pushBack, doubleBack, leftBack, rightBack = 8, 16, 9, 7
		promotionRank = Rank8
	} else {
		singlePushes = (pawns >> 8) & empty
		doublePushes = (singlePushes >> 8) & empty & Rank5
		leftCaptures = ((pawns &^ FileA) >> 7) & enemy
		rightCaptures = ((pawns &^ FileH) >> 9) & enemy
		pushBack, doubleBack, leftBack, rightBack = -8, -16, -7, -9
		promotionRank = Rank1
		dir = -1
	}

	emit := func(targets Bitboard, startOffset Square) {
		promotions := targets & promotionRank
		targets &^= promotionRank
		for targets != 0 {
			end := PopMSB(&targets)
			start := end + startOffset
			if ctx.allows(start, end) {
				ctx.moves.AddMove(start, end, FlagNone)
			}
		}
		for promotions != 0 {
			end := PopMSB(&promotions)
			start := end + startOffset
			if ctx.allows(start, end) {
				ctx.moves.AddMove(start, end, PromotionQueen)
				ctx.moves.AddMove(start, end, PromotionRook)
				ctx.moves.AddMove(start, end, PromotionBishop)
				ctx.moves.AddMove(start, end, PromotionKnight)
			}
		}
	}

	emit(singlePushes, pushBack)
	emit(doublePushes, doubleBack)
	emit(leftCaptures, leftBack)
	emit(rightCaptures, rightBack)

	ctx.genEnPassantMoves(pawns, dir)
}

// allows applies the pin line and check-resolution mask to one pawn
// move.
func (ctx *genContext) allows(start, end Square) bool {
	target := SquareBB(end)
	return ctx.checkResolutions&target != 0 && ctx.pinLine(start)&target != 0
}

// genEnPassantMoves emits en-passant captures. Their legality is
// verified by playing the move and testing for check, which also
// covers the horizontal pin through both pawns that the ray pass
// cannot see.
func (ctx *genContext) genEnPassantMoves(pawns Bitboard, dir int) {
	b := ctx.board
	ep := b.epSquare
	if ep == NoSquare {
		return
	}
	candidates := pawns & (SquareBB(ep+Square(9*dir)) | SquareBB(ep+Square(7*dir)))
	for candidates != 0 {
		start := PopMSB(&candidates)
		if SquareBB(start)&FileA != 0 && SquareBB(ep)&FileH != 0 {
			continue
		}
		if SquareBB(start)&FileH != 0 && SquareBB(ep)&FileA != 0 {
			continue
		}
		move := NewMove(start, ep, EnPassant)
		b.MakeMove(move)
		legal := !b.IsSideInCheck(ctx.side)
		b.UnmakeMove()
		if legal {
			ctx.moves.Add(move)
		}
	}
}

func (ctx *genContext) genKnightMoves() {
	b := ctx.board
	own := b.Pieces(ctx.side)
	for knights := b.PieceBB(Knight, ctx.side); knights != 0; {
		start := PopMSB(&knights)
		targets := KnightAttacks(start) &^ own & ctx.pinLine(start) & ctx.checkResolutions
		ctx.addTargets(start, targets, FlagNone)
	}
}

func (ctx *genContext) genSliderMoves(kind PieceKind) {
	b := ctx.board
	own := b.Pieces(ctx.side)
	occ := b.AllPieces()
	for sliders := b.PieceBB(kind, ctx.side); sliders != 0; {
		start := PopMSB(&sliders)
		var attacks Bitboard
		switch kind {
		case Bishop:
			attacks = BishopAttacks(start, occ)
		case Rook:
			attacks = RookAttacks(start, occ)
		case Queen:
			attacks = QueenAttacks(start, occ)
		}
		targets := attacks &^ own & ctx.pinLine(start) & ctx.checkResolutions
		ctx.addTargets(start, targets, FlagNone)
	}
}

func (ctx *genContext) genKingMoves() {
	b := ctx.board
	side := ctx.side
	start := b.KingSquare(side)
	own := b.Pieces(side)

	// Recompute the enemy attack set with the king off the board:
	// sliders then attack the squares behind the king along a checking
	// ray, which must stay off limits.
	unsafe := b.attackSet(side.Opposite(), b.AllPieces()&^SquareBB(start))
	targets := KingAttacks(start) &^ own &^ unsafe
	ctx.addTargets(start, targets, FlagNone)

	if b.IsSideInCheck(side) {
		return
	}
	enemyAttacks := b.AttackingSquares(side.Opposite())
	if b.CanCastleShort(side) &&
		b.IsSquareEmpty(start+1) && b.IsSquareEmpty(start+2) &&
		enemyAttacks&(SquareBB(start+1)|SquareBB(start+2)) == 0 {
		ctx.moves.AddMove(start, start+2, ShortCastling)
	}
	if b.CanCastleLong(side) &&
		b.IsSquareEmpty(start-1) && b.IsSquareEmpty(start-2) && b.IsSquareEmpty(start-3) &&
		enemyAttacks&(SquareBB(start-1)|SquareBB(start-2)) == 0 {
		ctx.moves.AddMove(start, start-2, LongCastling)
	}
}
