package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckhand-io/deckhand/internal/ingest"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Ingest the upload stashed before sign-in, if any",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	if ownerID == "" {
		return fmt.Errorf("--owner (or DECKHAND_OWNER) is required to resume an upload")
	}

	store, err := pendingStore()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	blobs, records, err := newStores(ctx)
	if err != nil {
		return err
	}
	defer blobs.Close()
	defer records.Close()
	pipeline := newPipeline(blobs, records)

	consumed, err := store.Consume(func(f ingest.SourceFile) error {
		title := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		doc, err := pipeline.CreateDocument(ctx, ownerID, title, []ingest.SourceFile{f})
		if err != nil {
			return err
		}
		fmt.Printf("Created presentation %s (%q) with %d slides\n", doc.ID, doc.Title, doc.SlideCount)
		return nil
	})
	if err != nil {
		return err
	}
	if !consumed {
		fmt.Println("No pending upload.")
	}
	return nil
}
