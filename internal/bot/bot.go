package bot

import (
	"context"
	"errors"
	"fmt"
	"math"

	"connect4ai/internal/board"
	"connect4ai/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultDepth = 4

// MinPlayDepth is the shallowest search that still picks a column. Depth 0
// only evaluates the position, which suits analysis but not play.
const MinPlayDepth = 1

var ErrInvalidConfig = errors.New("invalid bot configuration")

type Options struct {
	Depth       int
	Piece       board.Piece
	Perspective Perspective
	// Parallel searches the root columns concurrently.
	Parallel bool
}

type Bot struct {
	depth    int
	parallel bool
	searcher Searcher
}

func New(opts Options) (*Bot, error) {
	if opts.Depth < 0 {
		return nil, fmt.Errorf("%w: negative depth %d", ErrInvalidConfig, opts.Depth)
	}
	if opts.Piece != board.One && opts.Piece != board.Two {
		return nil, fmt.Errorf("%w: piece must be 1 or 2, got %d", ErrInvalidConfig, opts.Piece)
	}
	return &Bot{
		depth:    opts.Depth,
		parallel: opts.Parallel,
		searcher: NewSearcher(opts.Piece, opts.Perspective),
	}, nil
}

func (b *Bot) Piece() board.Piece {
	return b.searcher.Maximizer
}

func (b *Bot) Depth() int {
	return b.depth
}

func (b *Bot) Perspective() Perspective {
	return b.searcher.Perspective
}

// BestMove searches bd with the bot as the maximizing side. Column is
// NoMove when bd is already decided or full. The only error is ctx's, when it
// ends before the search does; a search already running is not interrupted.
func (b *Bot) BestMove(ctx context.Context, bd board.Board) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Column: NoMove}, err
	}

	var res Result
	if b.parallel && b.depth > 0 && !IsTerminal(&bd) {
		var err error
		if res, err = b.searchRootParallel(ctx, bd); err != nil {
			return Result{Column: NoMove}, err
		}
	} else {
		res = b.searcher.Search(bd, b.depth, true, math.Inf(-1), math.Inf(1))
	}

	logger.Log.Debug("Bot selected move",
		zap.Int("column", res.Column),
		zap.Float64("score", res.Score),
		zap.Int("depth", b.depth),
		zap.Bool("parallel", b.parallel),
	)
	return res, nil
}

// searchRootParallel gives every root column its own goroutine and a full
// window, then reduces in column order so ties keep the lowest column.
func (b *Bot) searchRootParallel(ctx context.Context, bd board.Board) (Result, error) {
	moves := bd.ValidMoves()
	scores := make([]float64, len(moves))

	g, gctx := errgroup.WithContext(ctx)
	for i, col := range moves {
		child := b.searcher.child(bd, col, b.searcher.Maximizer)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = b.searcher.Search(child, b.depth-1, false, math.Inf(-1), math.Inf(1)).Score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best := Result{Column: moves[0], Score: math.Inf(-1)}
	for i, col := range moves {
		if scores[i] > best.Score {
			best = Result{Column: col, Score: scores[i]}
		}
	}
	return best, nil
}
