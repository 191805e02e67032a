package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"connect4ai/internal/board"
	"connect4ai/internal/bot"
	"connect4ai/internal/config"
	"connect4ai/internal/services"
	"connect4ai/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	depth := flag.Int("depth", cfg.Game.SearchDepth, "search depth for the AI")
	aiFirst := flag.Bool("ai-first", false, "let the AI make the opening move")
	verbose := flag.Bool("v", false, "log search details to stderr")
	flag.Parse()

	if *verbose {
		if err := logger.Init(cfg.Server.Env); err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	opts := cfg.BotOptions()
	opts.Depth = *depth
	c, err := newConsole(opts, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Printf("Invalid bot configuration: %v\n", err)
		os.Exit(1)
	}

	if err := c.run(context.Background(), !*aiFirst); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}

type console struct {
	games *services.GameService
	in    *bufio.Scanner
	out   io.Writer
}

// newConsole rejects -depth values below bot.MinPlayDepth; such a bot can
// evaluate positions but never answers a move.
func newConsole(opts bot.Options, in io.Reader, out io.Writer) (*console, error) {
	if opts.Depth < bot.MinPlayDepth {
		return nil, fmt.Errorf("-depth must be at least %d, got %d", bot.MinPlayDepth, opts.Depth)
	}
	aiBot, err := bot.New(opts)
	if err != nil {
		return nil, err
	}
	games, err := services.NewGameService(aiBot, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return &console{
		games: games,
		in:    bufio.NewScanner(in),
		out:   out,
	}, nil
}

// run plays games until the player declines another one.
func (c *console) run(ctx context.Context, playerFirst bool) error {
	for {
		if err := c.play(ctx, playerFirst); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Would you like to play again? (yes/no)")
		answer, err := c.readLine()
		if err != nil {
			return err
		}
		if strings.ToLower(answer) != "yes" {
			fmt.Fprintln(c.out, "Thanks for playing!")
			return nil
		}
	}
}

func (c *console) play(ctx context.Context, playerFirst bool) error {
	game, err := c.games.NewGame(ctx, playerFirst)
	if err != nil {
		return err
	}
	defer c.games.DeleteGame(game.GameID)

	current := game.Board
	for {
		fmt.Fprintln(c.out, current.String())
		fmt.Fprintf(c.out, "Make your selection (0-%d): ", board.Columns-1)
		line, err := c.readLine()
		if err != nil {
			return err
		}
		col, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(c.out, "Invalid move. Try another column.")
			continue
		}

		result, err := c.games.MakeMove(ctx, game.GameID, col)
		if errors.Is(err, board.ErrInvalidMove) {
			fmt.Fprintln(c.out, "Invalid move. Try another column.")
			continue
		}
		if err != nil {
			return err
		}

		current = result.BoardAfterAI
		if result.AIMove != nil {
			fmt.Fprintf(c.out, "AI plays column %d\n", *result.AIMove)
		}
		if result.GameOver {
			fmt.Fprintln(c.out, current.String())
			fmt.Fprintln(c.out, result.Message)
			return nil
		}
	}
}

func (c *console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}
