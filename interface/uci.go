package inter

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mako/core"
)

const (
	EngineName   = "Mako 0.1"
	EngineAuthor = "Mako authors"
)

// RunCommandLoop reads line-oriented commands from stdin and drives
// the engine core. It speaks a UCI-flavored protocol: position and
// perft follow UCI conventions, "go time" is a non-standard
// time-budget search, and d/test/mcts are debugging commands.
func RunCommandLoop() {
	reader := bufio.NewReader(os.Stdin)

	var board core.Board
	if err := board.LoadFEN(core.StartingPositionFEN); err != nil {
		log.Fatalf("loading start position: %v", err)
	}
	search := core.NewSearchContext()
	var mcts *core.MctsContext

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		command := strings.TrimSpace(line)

		switch {
		case command == "uci":
			fmt.Printf("id name %v\n", EngineName)
			fmt.Printf("id author %v\n", EngineAuthor)
			fmt.Printf("uciok\n")
		case command == "isready":
			fmt.Printf("readyok\n")
		case command == "ucinewgame":
			search.Reset()
			if err := board.LoadFEN(core.StartingPositionFEN); err != nil {
				log.Printf("loading start position: %v", err)
			}
		case strings.HasPrefix(command, "position"):
			if err := positionCommand(&board, command); err != nil {
				fmt.Println(err)
			}
		case strings.HasPrefix(command, "go"):
			goCommand(&board, search, command)
		case command == "d":
			fmt.Println(board.String())
			fmt.Printf("FEN: %v\n", board.Fen())
			fmt.Printf("Hash: 0x%x\n", board.Hash())
			fmt.Println("--- Evaluation ---")
			fmt.Println(core.Evaluate(&board))
		case command == "test":
			if !core.RunPerftTests() {
				os.Exit(1)
			}
		case command == "mcts":
			if mcts != nil {
				mcts.Stop()
			}
			mcts = core.NewMctsContext()
			mcts.Start(&board)
		case command == "stop":
			if mcts != nil {
				mcts.Stop()
				mcts = nil
			}
		case command == "quit":
			if mcts != nil {
				mcts.Stop()
			}
			return
		case command == "":
		default:
			fmt.Println("Invalid command")
		}
	}
}

// positionCommand handles "position startpos|fen <FEN> [moves ...]".
func positionCommand(board *core.Board, command string) error {
	args := strings.TrimSpace(strings.TrimPrefix(command, "position"))

	var moveArgs string
	if strings.HasPrefix(args, "startpos") {
		if err := board.LoadFEN(core.StartingPositionFEN); err != nil {
			return err
		}
		moveArgs = strings.TrimPrefix(args, "startpos")
	} else if strings.HasPrefix(args, "fen") {
		args = strings.TrimSpace(strings.TrimPrefix(args, "fen"))
		fields := strings.Fields(args)
		if len(fields) < 6 {
			return fmt.Errorf("%w: %q", core.ErrInvalidFen, args)
		}
		if err := board.LoadFEN(strings.Join(fields[:6], " ")); err != nil {
			return err
		}
		moveArgs = strings.Join(fields[6:], " ")
	} else {
		return fmt.Errorf("unknown position mode %q", args)
	}

	moveArgs = strings.TrimSpace(moveArgs)
	if moveArgs == "" {
		return nil
	}
	moveArgs = strings.TrimSpace(strings.TrimPrefix(moveArgs, "moves"))
	for _, move := range strings.Fields(moveArgs) {
		if err := board.MakeUCIMove(move); err != nil {
			return err
		}
	}
	return nil
}

// goCommand handles "go depth <n>", "go time <ms>" and "go perft <n>".
func goCommand(board *core.Board, search *core.SearchContext, command string) {
	fields := strings.Fields(command)
	if len(fields) != 3 {
		fmt.Println("Invalid command")
		return
	}
	value, err := strconv.Atoi(fields[2])
	if err != nil || value < 0 {
		fmt.Printf("Invalid %v value %q\n", fields[1], fields[2])
		return
	}

	switch fields[1] {
	case "depth":
		result := search.BestMove(board, value)
		printSearchResult(result)
	case "time":
		result, err := search.TimeLimitedSearch(board, time.Duration(value)*time.Millisecond)
		if errors.Is(err, core.ErrSearchTimeout) {
			fmt.Println("no depth completed within the time limit")
			return
		}
		printSearchResult(result)
	case "perft":
		core.DividePerft(board, value)
	default:
		fmt.Println("Invalid command")
	}
}

func printSearchResult(result core.SearchResult) {
	fmt.Printf("bestmove %v\n", result.BestMove)
	fmt.Printf("eval %v\n", result.StandardEval())
	fmt.Printf("depth %d\n", result.DepthSearched)
	fmt.Printf("positions evaluated: %d\n", result.Stats.PositionsEvaluated)
	fmt.Printf("TT writes: %d\n", result.Stats.TTWrites)
	fmt.Printf("TT hits: %d\n", result.Stats.TTHits)
}
