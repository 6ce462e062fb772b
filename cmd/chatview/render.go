package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/MikeSquared-Agency/chatview/internal/archive"
	"github.com/MikeSquared-Agency/chatview/internal/config"
	"github.com/MikeSquared-Agency/chatview/internal/grouping"
	"github.com/MikeSquared-Agency/chatview/internal/render"
	"github.com/MikeSquared-Agency/chatview/internal/session"
	"github.com/MikeSquared-Agency/chatview/internal/transcript"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Print an exported chat (.zip or .txt) as chat bubbles",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "more", Usage: "Show one more page than last time"},
			&cli.BoolFlag{Name: "reset", Usage: "Start again from the first page"},
			&cli.BoolFlag{Name: "all", Usage: "Show the whole conversation"},
			&cli.StringFlag{Name: "layout", Usage: "Side assignment: alternate or self", Value: "alternate"},
			&cli.StringFlag{Name: "self", Usage: "Participant drawn on the right with --layout self (default CHATVIEW_SELF_NAME)"},
			&cli.IntFlag{Name: "width", Usage: "Output width in columns", Value: 80},
			&cli.IntFlag{Name: "page-size", Usage: "Messages per page (default CHATVIEW_PAGE_SIZE)"},
		},
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one FILE argument")
	}
	path := c.Args().First()

	cfg := config.Load()
	setupLogging(os.Stderr, cfg.LogLevel)

	layout, err := grouping.ParseLayout(c.String("layout"))
	if err != nil {
		return err
	}
	self := cfg.SelfName
	if c.IsSet("self") {
		self = c.String("self")
	}
	pageSize := cfg.PageSize
	if c.IsSet("page-size") {
		pageSize = c.Int("page-size")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	file, err := archive.Load(path, data, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}
	conv := transcript.ParseBytes(file.Text)
	total := len(conv)

	state, err := session.LoadState(cfg.StatePath)
	if err != nil {
		return err
	}

	var win grouping.Window
	switch {
	case c.Bool("all"):
		win = grouping.Window{Start: 0, End: total}
	case c.Bool("reset"):
		win = state.Reset(path, pageSize)
	case c.Bool("more"):
		win = state.Advance(path, total, pageSize)
	default:
		win = state.Window(path, pageSize)
	}
	win = win.Clamp(total)

	entries := grouping.View(conv, win.Start, win.End, grouping.Options{Layout: layout, Self: self})
	fmt.Fprint(c.App.Writer, render.New(c.Int("width")).Render(file.Title, entries, win, total))

	if c.Bool("reset") || c.Bool("more") {
		if err := state.Save(); err != nil {
			return fmt.Errorf("save cursor: %w", err)
		}
	}
	return nil
}
