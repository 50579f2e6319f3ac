// Package cli implements the flag-based subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/config"
	"github.com/eitchtee/Kindle2Markdown/internal/covers"
	"github.com/eitchtee/Kindle2Markdown/internal/database"
	"github.com/eitchtee/Kindle2Markdown/internal/services"
)

// ConvertCommand converts a "My Clippings.txt" file into per-book markdown
// notes, optionally with covers, deduplication and database persistence.
type ConvertCommand struct {
	ClippingsPath string
	OutputDir     string
	DatabasePath  string
	CoverCacheDir string
	Locale        string
	FetchCovers   bool
	Deduplicate   bool
	SaveToDB      bool
	Verbose       bool
	DryRun        bool
}

func NewConvertCommand() *ConvertCommand {
	return &ConvertCommand{}
}

func (cmd *ConvertCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)

	fs.StringVar(&cmd.ClippingsPath, "file", "", "Path to Kindle 'My Clippings.txt' file (required)")
	fs.StringVar(&cmd.OutputDir, "output", "./markdown", "Output directory for the markdown files")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local library database")
	fs.BoolVar(&cmd.SaveToDB, "save", false, "Also save parsed books into the local library database")
	fs.BoolVar(&cmd.FetchCovers, "covers", false, "Fetch book covers from OpenLibrary")
	fs.StringVar(&cmd.CoverCacheDir, "cover-cache", "./covers", "Directory for the local cover cache")
	fs.BoolVar(&cmd.Deduplicate, "dedupe", true, "Collapse highlights with overlapping position ranges, keeping the most recent")
	fs.StringVar(&cmd.Locale, "locale", "en", "Locale of the Kindle firmware that wrote the clippings file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and report without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s convert -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Convert a Kindle 'My Clippings.txt' export into one markdown note per book.\n\n")
		fmt.Fprintf(os.Stderr, "The clippings file is typically found at:\n")
		fmt.Fprintf(os.Stderr, "  %s\n\n", config.DefaultClippingsPath)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Convert from a connected Kindle device:\n")
		fmt.Fprintf(os.Stderr, "  %s convert -file \"%s\" -output ~/Obsidian/Highlights\n\n", os.Args[0], config.DefaultClippingsPath)
		fmt.Fprintf(os.Stderr, "  # Convert with covers and keep a local library:\n")
		fmt.Fprintf(os.Stderr, "  %s convert -file \"My Clippings.txt\" -covers -save\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview what would be converted:\n")
		fmt.Fprintf(os.Stderr, "  %s convert -file \"My Clippings.txt\" -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ClippingsPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *ConvertCommand) Run() error {
	fmt.Println("Kindle Clippings Conversion")
	fmt.Println("===========================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No files will be written")
		fmt.Println()
	}

	if _, err := os.Stat(cmd.ClippingsPath); os.IsNotExist(err) {
		return fmt.Errorf("clippings file not found: %s", cmd.ClippingsPath)
	}

	fmt.Printf("File: %s\n", cmd.ClippingsPath)

	if cmd.DryRun {
		return cmd.runDryRun()
	}

	absOutputDir, err := filepath.Abs(cmd.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for output: %w", err)
	}
	cmd.OutputDir = absOutputDir

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

	if cmd.SaveToDB {
		db, err := database.NewDatabase(cmd.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		service.DB = db
	}

	fmt.Printf("Output: %s\n\n", cmd.OutputDir)

	summary, err := service.Convert(context.Background(), cmd.ClippingsPath)
	if err != nil {
		return err
	}

	fmt.Println("=== Conversion Summary ===")
	fmt.Printf("Books: %d\n", summary.Books)
	fmt.Printf("Clippings exported: %d\n", summary.Clippings)
	if cmd.Deduplicate {
		fmt.Printf("Overlapping duplicates removed: %d\n", summary.Duplicates)
	}
	if cmd.FetchCovers {
		fmt.Printf("Covers cached: %d\n", summary.CoversFetched)
	}
	if cmd.SaveToDB {
		fmt.Printf("New highlights saved to library: %d\n", summary.HighlightsSaved)
	}
	if summary.Export.BooksFailed > 0 {
		fmt.Printf("%d books failed to export\n", summary.Export.BooksFailed)
	}

	fmt.Println("\nDone!")
	return nil
}

func (cmd *ConvertCommand) runDryRun() error {
	file, err := os.Open(cmd.ClippingsPath)
	if err != nil {
		return fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer file.Close()

	parser := clippings.NewParserWithLocale(clippings.LocaleByName(cmd.Locale))
	books, err := parser.Parse(file)
	if err != nil {
		return fmt.Errorf("failed to parse clippings: %w", err)
	}

	totalClippings := 0
	duplicates := 0
	for i := range books {
		before := len(books[i].Clippings)
		if cmd.Deduplicate {
			books[i].Clippings = clippings.Deduplicate(books[i].Clippings)
		}
		duplicates += before - len(books[i].Clippings)
		totalClippings += len(books[i].Clippings)
	}

	fmt.Printf("\nFound %d books with %d total clippings\n", len(books), totalClippings)
	if cmd.Deduplicate {
		fmt.Printf("Overlapping duplicates that would be removed: %d\n", duplicates)
	}

	if cmd.Verbose {
		fmt.Println("\n=== Books Found ===")
		for i, book := range books {
			authorStr := book.PrimaryAuthor()
			if authorStr == "" {
				authorStr = "(no author)"
			}
			fmt.Printf("%d. \"%s\" by %s (%d clippings)\n",
				i+1, book.Title, authorStr, len(book.Clippings))
		}
	}

	fmt.Println("\nDry run complete. Use without -dry-run to convert.")
	return nil
}
