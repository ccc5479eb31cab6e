package core

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"
)

// GameResult is the outcome of a finished game or rollout.
type GameResult uint8

const (
	WhiteWon GameResult = iota
	BlackWon
	DrawnGame
)

func (r GameResult) String() string {
	switch r {
	case WhiteWon:
		return "1-0"
	case BlackWon:
		return "0-1"
	}
	return "1/2-1/2"
}

// MctsNodeStats accumulates rollout outcomes for one position. A node
// exists once the position has been visited.
type MctsNodeStats struct {
	WhiteWins uint32
	BlackWins uint32
	Draws     uint32
}

func (n *MctsNodeStats) Visits() uint64 {
	return uint64(n.WhiteWins) + uint64(n.BlackWins) + uint64(n.Draws)
}

// MctsContext owns one Monte Carlo search tree: a node map keyed by
// Zobrist hash, the rollout RNG and the background iteration task.
// The tree is touched only by its own goroutine; callers interact
// through Start, Stop and the stop flag.
type MctsContext struct {
	nodes   map[uint64]*MctsNodeStats
	visited []uint64
	rng     *rand.Rand

	stop atomic.Bool
	done chan struct{}
}

func NewMctsContext() *MctsContext {
	return &MctsContext{
		nodes: make(map[uint64]*MctsNodeStats),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *MctsContext) node(hash uint64) *MctsNodeStats {
	n, ok := c.nodes[hash]
	if !ok {
		n = &MctsNodeStats{}
		c.nodes[hash] = n
	}
	return n
}

// Start launches the iteration loop on a background goroutine. The
// board is copied at entry, so the caller's board stays safe to read
// concurrently.
func (c *MctsContext) Start(b *Board) {
	c.stop.Store(false)
	c.done = make(chan struct{})
	board := b.Copy()
	go c.run(board)
}

// Stop signals the background loop and waits for it to exit.
func (c *MctsContext) Stop() {
	if c.done == nil {
		return
	}
	c.stop.Store(true)
	<-c.done
	c.done = nil
}

func (c *MctsContext) run(board Board) {
	defer close(c.done)
	rootHash := board.Hash()
	for !c.stop.Load() {
		iterationBoard := board.Copy()
		c.iterate(&iterationBoard)
		if iterations := c.node(rootHash).Visits(); iterations%1000 == 0 && iterations > 0 {
			c.printStats(rootHash)
		}
	}
	c.printStats(rootHash)
}

// iterate runs one selection-expansion-rollout-backpropagation cycle.
// Selection walks down the tree by UCT; the first unvisited child is
// expanded and rolled out immediately. The board is a scratch copy,
// so moves are only unmade inside the scoring loop.
func (c *MctsContext) iterate(b *Board) {
	c.visited = c.visited[:0]
	c.visited = append(c.visited, b.Hash())
	side := b.SideToMove

	legalMoves := b.LegalMoves()
	for !legalMoves.Empty() && !b.IsDraw() {
		bestScore := -1.0
		selected := legalMoves.At(0)
		parentVisits := float64(c.node(c.visited[len(c.visited)-1]).Visits())

		for _, m := range legalMoves.Slice() {
			b.MakeMove(m)
			childHash := b.Hash()
			child := c.node(childHash)

			if child.Visits() == 0 {
				// Unvisited child: expand and roll out from here.
				result := c.rollout(b.Copy())
				c.visited = append(c.visited, childHash)
				c.backpropagate(result)
				return
			}

			winRatio := float64(child.WhiteWins)
			if side == Black {
				winRatio = float64(child.BlackWins)
			}
			winRatio /= float64(child.Visits())
			exploration := math.Sqrt2 * math.Sqrt(math.Log(parentVisits)/float64(child.Visits()))
			if score := winRatio + exploration; score > bestScore {
				bestScore = score
				selected = m
			}
			b.UnmakeMove()
		}

		b.MakeMove(selected)
		c.visited = append(c.visited, b.Hash())
		legalMoves = b.LegalMoves()
	}

	// Terminal position reached through already-expanded nodes.
	c.backpropagate(gameOutcome(b))
}

// rollout plays uniformly random legal moves on its own board copy
// until the game ends.
func (c *MctsContext) rollout(b Board) GameResult {
	for {
		moves := b.LegalMoves()
		if moves.Empty() || b.IsDraw() {
			return gameOutcome(&b)
		}
		b.MakeMove(moves.At(c.rng.Intn(moves.Len())))
	}
}

func gameOutcome(b *Board) GameResult {
	if b.IsCheckmate(White) {
		return BlackWon
	}
	if b.IsCheckmate(Black) {
		return WhiteWon
	}
	return DrawnGame
}

// backpropagate bumps the matching counter on every node of the
// visited path, the new leaf included.
func (c *MctsContext) backpropagate(result GameResult) {
	for _, hash := range c.visited {
		n := c.node(hash)
		switch result {
		case WhiteWon:
			n.WhiteWins++
		case BlackWon:
			n.BlackWins++
		default:
			n.Draws++
		}
	}
}

func (c *MctsContext) printStats(rootHash uint64) {
	root := c.node(rootHash)
	visits := root.Visits()
	if visits == 0 {
		return
	}
	fmt.Printf("mcts iterations %d w %.4f b %.4f d %.4f\n",
		visits,
		float64(root.WhiteWins)/float64(visits),
		float64(root.BlackWins)/float64(visits),
		float64(root.Draws)/float64(visits))
}
