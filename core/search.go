package core

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Wide enough for any score, narrow enough that negating never
	// overflows.
	posInf = 1 << 30
	negInf = -posInf

	// Base of the mate-score band. A side with no moves and its king
	// in check at ply p scores -(mateBase - p), so mates closer to the
	// root are more extreme and order correctly under negamax.
	mateBase = posInf - 1024

	// Number of slots in the transposition table.
	ttEntries = 1 << 21

	// Score that pins the transposition table's stored best move to
	// the front of the move order.
	ttMoveScore = 1 << 20

	promotionBonus = 500
)

// ErrSearchTimeout reports that a time-limited search was interrupted
// before depth one completed.
var ErrSearchTimeout = errors.New("search timed out before any depth completed")

// Transposition table node kinds.
type nodeKind uint8

const (
	nodeEmpty nodeKind = iota
	nodeUpperBound
	nodeLowerBound
	nodeExact
)

type ttEntry struct {
	kind     nodeKind
	hash     uint64
	depth    uint8
	eval     int32
	bestMove Move
}

// DebugStats counts search work for the front-end's report lines.
type DebugStats struct {
	PositionsEvaluated uint64
	TTWrites           uint64
	TTHits             uint64
}

// SearchResult is the outcome of one completed search depth.
type SearchResult struct {
	SideToMove    PieceColor
	BestMove      Move
	Eval          int
	DepthSearched int
	Stats         DebugStats
}

// StandardEval converts the side-to-move centipawn score into a
// white-positive pawn-unit figure for display.
func (r SearchResult) StandardEval() float64 {
	eval := r.Eval
	if r.SideToMove == Black {
		eval = -eval
	}
	return float64(eval) / 100
}

// SearchContext owns everything one search needs: the transposition
// table, the cooperative interrupt flag and the work counters. Tests
// and engines instantiate independent contexts; nothing here is
// process-global.
type SearchContext struct {
	tt        []ttEntry
	interrupt atomic.Bool
	stats     DebugStats
}

func NewSearchContext() *SearchContext {
	return &SearchContext{tt: make([]ttEntry, ttEntries)}
}

// Reset clears the transposition table and counters between games.
func (s *SearchContext) Reset() {
	for i := range s.tt {
		s.tt[i] = ttEntry{}
	}
	s.stats = DebugStats{}
	s.interrupt.Store(false)
}

func (s *SearchContext) probe(hash uint64) *ttEntry {
	entry := &s.tt[hash%ttEntries]
	if entry.kind == nodeEmpty || entry.hash != hash {
		return nil
	}
	return entry
}

func (s *SearchContext) store(kind nodeKind, hash uint64, depth int, eval int, bestMove Move) {
	// An interrupted evaluation returns garbage; keep it out of the
	// table.
	if s.interrupt.Load() {
		return
	}
	s.stats.TTWrites++
	s.tt[hash%ttEntries] = ttEntry{
		kind:     kind,
		hash:     hash,
		depth:    uint8(depth),
		eval:     int32(eval),
		bestMove: bestMove,
	}
}

// moveScore ranks a move for ordering: the table's stored best move
// first, then captures by victim value, with a bonus for promotions.
func (s *SearchContext) moveScore(b *Board, m, ttMove Move) int {
	if m == ttMove && m != NullMove {
		return ttMoveScore
	}
	score := 0
	captured := b.PieceAt(m.End())
	if m.Flag() == EnPassant {
		captured = MakePiece(Pawn, b.SideToMove.Opposite())
	}
	if !captured.IsNone() {
		score += PieceValue(captured.Kind())
	}
	if m.IsPromotion() {
		score += promotionBonus
	}
	return score
}

// orderMoves sorts the list in place by descending score.
func (s *SearchContext) orderMoves(b *Board, moves *MoveList, ttMove Move) {
	slice := moves.Slice()
	scores := make([]int, len(slice))
	for i, m := range slice {
		scores[i] = s.moveScore(b, m, ttMove)
	}
	for i := 1; i < len(slice); i++ {
		for j := i; j > 0 && scores[j-1] < scores[j]; j-- {
			slice[j-1], slice[j] = slice[j], slice[j-1]
			scores[j-1], scores[j] = scores[j], scores[j-1]
		}
	}
}

// evaluate is the negamax recursion. Scores are from the perspective
// of the side to move; the recursive call negates the child value and
// flips the window. Returns 0 eagerly once the interrupt flag is set.
func (s *SearchContext) evaluate(b *Board, depth, ply, alpha, beta int) int {
	if s.interrupt.Load() {
		return 0
	}

	hash := b.Hash()
	var ttMove Move
	if entry := s.probe(hash); entry != nil {
		ttMove = entry.bestMove
		if int(entry.depth) >= depth {
			eval := int(entry.eval)
			switch {
			case entry.kind == nodeExact:
				s.stats.TTHits++
				return eval
			case entry.kind == nodeLowerBound && eval > beta:
				s.stats.TTHits++
				return eval
			case entry.kind == nodeUpperBound && eval <= alpha:
				s.stats.TTHits++
				return eval
			}
		}
	}

	if depth == 0 {
		return s.quiescence(b, ply, alpha, beta)
	}

	moves := b.LegalMoves()
	if moves.Empty() {
		if b.IsDraw() {
			return 0
		}
		if b.IsSideInCheck(b.SideToMove) {
			return -(mateBase - ply)
		}
		return 0
	}
	s.orderMoves(b, &moves, ttMove)

	kind := nodeUpperBound
	bestMove := NullMove
	for _, m := range moves.Slice() {
		b.MakeMove(m)
		eval := -s.evaluate(b, depth-1, ply+1, -beta, -alpha)
		b.UnmakeMove()
		if s.interrupt.Load() {
			return 0
		}
		if eval >= beta {
			// A move this good will be avoided by the opponent one
			// level up; cutoffs are deliberately not cached.
			return beta
		}
		if eval > alpha {
			kind = nodeExact
			alpha = eval
			bestMove = m
		}
	}

	if kind == nodeExact {
		s.store(nodeExact, hash, depth, alpha, bestMove)
	}
	return alpha
}

// quiescence extends the leaves over captures until the position is
// quiet, so the horizon never cuts a capture sequence in half. It
// terminates because every recursion removes a piece.
func (s *SearchContext) quiescence(b *Board, ply, alpha, beta int) int {
	if s.interrupt.Load() {
		return 0
	}
	s.stats.PositionsEvaluated++
	standPat := StaticEval(b)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	captures := b.LegalCaptures()
	s.orderMoves(b, &captures, NullMove)
	for _, m := range captures.Slice() {
		b.MakeMove(m)
		eval := -s.quiescence(b, ply+1, -beta, -alpha)
		b.UnmakeMove()
		if eval >= beta {
			return beta
		}
		if eval > alpha {
			alpha = eval
		}
	}
	return alpha
}

// BestMove runs a fixed-depth search and returns the principal move
// with its evaluation. With no legal moves available the returned
// BestMove is NullMove and the eval is the terminal score.
func (s *SearchContext) BestMove(b *Board, depth int) SearchResult {
	if depth < 1 {
		depth = 1
	}
	s.stats = DebugStats{}
	result, _ := s.searchRoot(b, depth)
	return result
}

// searchRoot searches every root move with a full window. The second
// return value reports whether the depth ran to completion rather
// than being interrupted.
func (s *SearchContext) searchRoot(b *Board, depth int) (SearchResult, bool) {
	result := SearchResult{SideToMove: b.SideToMove, DepthSearched: depth}

	moves := b.LegalMoves()
	if moves.Empty() {
		if !b.IsDraw() && b.IsSideInCheck(b.SideToMove) {
			result.Eval = -mateBase
		}
		result.Stats = s.stats
		return result, true
	}

	var ttMove Move
	if entry := s.probe(b.Hash()); entry != nil {
		ttMove = entry.bestMove
	}
	s.orderMoves(b, &moves, ttMove)

	bestMove, bestEval := NullMove, negInf
	for _, m := range moves.Slice() {
		b.MakeMove(m)
		eval := -s.evaluate(b, depth-1, 1, negInf, posInf)
		b.UnmakeMove()
		if s.interrupt.Load() {
			return result, false
		}
		if eval > bestEval {
			bestMove, bestEval = m, eval
		}
	}

	s.store(nodeExact, b.Hash(), depth, bestEval, bestMove)
	result.BestMove = bestMove
	result.Eval = bestEval
	result.Stats = s.stats
	return result, true
}

// TimeLimitedSearch runs iterative deepening on a background goroutine
// and publishes the result of each completed depth. When the budget
// runs out the interrupt flag is set and the goroutine joined; the
// last fully completed depth wins. Cancellation is cooperative: the
// flag is read at every evaluate entry, so the search stops within
// bounded work after the deadline.
func (s *SearchContext) TimeLimitedSearch(b *Board, limit time.Duration) (SearchResult, error) {
	s.stats = DebugStats{}
	s.interrupt.Store(false)

	var (
		mu        sync.Mutex
		published *SearchResult
	)
	searchBoard := b.Copy()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for depth := 1; ; depth++ {
			result, completed := s.searchRoot(&searchBoard, depth)
			if !completed {
				return
			}
			mu.Lock()
			published = &result
			mu.Unlock()
			// Mate found: deeper iterations cannot improve on it.
			if result.Eval >= mateBase-512 || result.Eval <= -(mateBase-512) {
				return
			}
		}
	}()

	select {
	case <-done:
		// The search ended on its own (forced mate found).
	case <-time.After(limit):
		s.interrupt.Store(true)
		<-done
	}
	s.interrupt.Store(false)

	mu.Lock()
	defer mu.Unlock()
	if published == nil {
		return SearchResult{}, ErrSearchTimeout
	}
	return *published, nil
}
