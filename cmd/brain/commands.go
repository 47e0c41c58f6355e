package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/search"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func addCommand(c *cli.Context) error {
	solution := c.String("solution")
	if path := c.Path("solution-file"); path != "" {
		if c.IsSet("solution") {
			return fmt.Errorf("--solution and --solution-file are mutually exclusive")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read solution file: %w", err)
		}
		solution = string(data)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.AddNote(c.Context, core.NoteInput{
		Problem:     c.String("problem"),
		Solution:    solution,
		Explanation: c.String("explanation"),
		Tags:        core.ParseTags(c.String("tags")),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Added note %d\n", id)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var monitor search.SearchMonitor
	if c.Bool("explain") {
		monitor = &search.LogMonitor{Logger: slog.Default()}
	}
	results, err := db.SearchWithMonitor(c.Context, query, c.Int("k"), monitor)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "No matching notes.")
		return nil
	}
	for i, result := range results {
		fmt.Fprintf(c.App.Writer, "%d. [%d] %.1f%%  %s\n",
			i+1, result.Note.Id, result.Score*100, result.Note.Problem)
		if len(result.Note.Tags) > 0 {
			fmt.Fprintf(c.App.Writer, "   tags: %s\n", strings.Join(result.Note.Tags, ", "))
		}
	}
	return nil
}

func getCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	note, err := db.GetNote(c.Context, id)
	if err != nil {
		return err
	}
	printNote(c.App.Writer, note)
	return nil
}

func deleteCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteNote(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted note %d\n", id)
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var notes []*core.Note
	if tag := c.String("tag"); tag != "" {
		notes, err = db.NotesByTag(c.Context, tag)
		if limit := c.Int("limit"); err == nil && limit > 0 && len(notes) > limit {
			notes = notes[len(notes)-limit:]
		}
	} else {
		notes, err = db.RecentNotes(c.Context, c.Int("limit"))
	}
	if err != nil {
		return err
	}

	for _, note := range notes {
		fmt.Fprintf(c.App.Writer, "[%d] %s  %s\n",
			note.Id, note.CreatedAt.Local().Format("2006-01-02 15:04"), note.Problem)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	var inputs []core.NoteInput
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ids, err := db.ImportNotes(c.Context, inputs)
	if err != nil {
		return fmt.Errorf("import stopped after %d notes: %w", len(ids), err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d notes\n", len(ids))
	return nil
}

func reconcileCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.Reconcile(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Orphan vectors removed: %d\n", report.OrphanVectorsRemoved)
	fmt.Fprintf(c.App.Writer, "Vectors rebuilt: %d\n", report.VectorsRebuilt)
	fmt.Fprintf(c.App.Writer, "Stale vectors refreshed: %d\n", report.StaleVectorsRefreshed)
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg := loadedConfig(c)
	reembedConfig := cfg.ReembedConfig()
	if c.IsSet("batch-size") {
		reembedConfig.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("report-interval") {
		reembedConfig.ReportInterval = c.Int("report-interval")
	}
	if c.IsSet("max-retries") {
		reembedConfig.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		reembedConfig.RetryDelay = c.Duration("retry-delay")
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	host := cfg.Embedding.Host
	if host == "" {
		host = "(offline hashing embedder)"
	}
	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.DataDir)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := db.Reembed(c.Context, reembedConfig, c.App.ErrWriter); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Store:      %s\n", stats.Identity)
	fmt.Fprintf(c.App.Writer, "Notes:      %d\n", stats.Notes)
	fmt.Fprintf(c.App.Writer, "Vectors:    %d\n", stats.Vectors)
	fmt.Fprintf(c.App.Writer, "Dimensions: %d\n", stats.Dimensions)
	return nil
}

func parseID(c *cli.Context) (core.ID, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one note id")
	}
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid note id %q", c.Args().First())
	}
	return core.ID(id), nil
}

func printNote(w io.Writer, note *core.Note) {
	fmt.Fprintf(w, "Id:          %d\n", note.Id)
	fmt.Fprintf(w, "Created:     %s\n", note.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Tags:        %s\n", strings.Join(note.Tags, ", "))
	fmt.Fprintf(w, "Problem:     %s\n", note.Problem)
	fmt.Fprintf(w, "Explanation: %s\n", note.Explanation)
	fmt.Fprintf(w, "Solution:\n%s\n", note.Solution)
}
