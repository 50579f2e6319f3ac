package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/config"
	"github.com/eitchtee/Kindle2Markdown/internal/covers"
	"github.com/eitchtee/Kindle2Markdown/internal/services"
	"github.com/eitchtee/Kindle2Markdown/internal/watcher"
)

// WatchCommand keeps the markdown output in sync with the clippings file,
// re-running the conversion whenever the file changes.
type WatchCommand struct {
	ClippingsPath string
	OutputDir     string
	CoverCacheDir string
	Locale        string
	FetchCovers   bool
	Deduplicate   bool
	Debounce      time.Duration
}

func NewWatchCommand() *WatchCommand {
	return &WatchCommand{}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	fs.StringVar(&cmd.ClippingsPath, "file", "", "Path to Kindle 'My Clippings.txt' file (required)")
	fs.StringVar(&cmd.OutputDir, "output", "./markdown", "Output directory for the markdown files")
	fs.BoolVar(&cmd.FetchCovers, "covers", false, "Fetch book covers from OpenLibrary")
	fs.StringVar(&cmd.CoverCacheDir, "cover-cache", "./covers", "Directory for the local cover cache")
	fs.BoolVar(&cmd.Deduplicate, "dedupe", true, "Collapse highlights with overlapping position ranges, keeping the most recent")
	fs.StringVar(&cmd.Locale, "locale", "en", "Locale of the Kindle firmware that wrote the clippings file")
	fs.DurationVar(&cmd.Debounce, "debounce", 2*time.Second, "How long to wait after the last change before converting")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Watch a Kindle 'My Clippings.txt' file and regenerate markdown on change.\n")
		fmt.Fprintf(os.Stderr, "Useful with a Kindle mounted over USB: plug it in and the notes update.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s watch -file \"%s\" -output ~/Obsidian/Highlights\n", os.Args[0], config.DefaultClippingsPath)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ClippingsPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *WatchCommand) Run() error {
	service := &services.ConvertService{
		Parser:      clippings.NewParserWithLocale(clippings.LocaleByName(cmd.Locale)),
		OutputDir:   cmd.OutputDir,
		Deduplicate: cmd.Deduplicate,
	}

	if cmd.FetchCovers {
		cache, err := covers.NewCache(cmd.CoverCacheDir, covers.NewOpenLibraryClient())
		if err != nil {
			return fmt.Errorf("failed to initialize cover cache: %w", err)
		}
		service.CoverCache = cache
		service.CoverWorkers = 3
	}

	convert := func(ctx context.Context) {
		summary, err := service.Convert(ctx, cmd.ClippingsPath)
		if err != nil {
			log.Printf("Conversion failed: %v", err)
			return
		}
		log.Printf("Converted %d books (%d clippings) into %s",
			summary.Books, summary.Clippings, cmd.OutputDir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Println("\nStopping watcher...")
		cancel()
	}()

	// Convert once at startup so output exists before the first change.
	if _, err := os.Stat(cmd.ClippingsPath); err == nil {
		convert(ctx)
	} else {
		log.Printf("Waiting for %s to appear", cmd.ClippingsPath)
	}

	w := watcher.New(cmd.ClippingsPath, convert)
	w.Debounce = cmd.Debounce

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
