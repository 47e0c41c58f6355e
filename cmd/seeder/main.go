package main

import (
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"slices"

	"github.com/poiesic/secondbrain"
	"github.com/poiesic/secondbrain/core"
	"gopkg.in/yaml.v3"
)

var demoNotes = []core.NoteInput{
	{
		Problem:     "pandas SettingWithCopyWarning when assigning to a filtered DataFrame",
		Solution:    "df.loc[df[\"score\"] > 0.5, \"label\"] = \"high\"",
		Explanation: "Chained indexing can return a copy, so the assignment may never reach the original frame. A single .loc call writes in place.",
		Tags:        []string{"python", "pandas"},
	},
	{
		Problem:     "IndexError: list index out of range while removing items in a loop",
		Solution:    "items = [item for item in items if keep(item)]",
		Explanation: "The range was computed from the original length. Building a new list avoids mutating the one being iterated.",
		Tags:        []string{"python"},
	},
	{
		Problem:     "git merge conflict in package-lock.json",
		Solution:    "git checkout --theirs package-lock.json\nnpm install",
		Explanation: "Lock files are generated. Take one side and let npm rebuild it instead of merging by hand.",
		Tags:        []string{"git", "npm"},
	},
}

var (
	seedFileName = flag.String("src", "", "YAML file of seed notes")
	dataDir      = flag.String("db", "./brain_db", "data directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// notesFromFile returns an iterator over the notes listed in a YAML file.
func notesFromFile(filename string) (iter.Seq[core.NoteInput], error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var notes []core.NoteInput
	if err := yaml.Unmarshal(data, &notes); err != nil {
		return nil, err
	}
	return slices.Values(notes), nil
}

// importBatched reads from a source iterator and imports notes in batches.
func importBatched(ctx context.Context, db *secondbrain.Database, source iter.Seq[core.NoteInput], batchSize int) (int, error) {
	batch := make([]core.NoteInput, 0, batchSize)
	total := 0

	for note := range source {
		batch = append(batch, note)
		if len(batch) == batchSize {
			ids, err := db.ImportNotes(ctx, batch)
			total += len(ids)
			if err != nil {
				return total, err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining notes
	if len(batch) > 0 {
		ids, err := db.ImportNotes(ctx, batch)
		total += len(ids)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func main() {
	ctx := context.Background()

	db, err := secondbrain.Open(ctx, *dataDir)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	// Determine source of seed data
	source := slices.Values(demoNotes)
	if *seedFileName != "" {
		source, err = notesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	}

	total, err := importBatched(ctx, db, source, 5)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded notes", "count", total, "dir", *dataDir)
}
