package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deckhand-io/deckhand/internal/gcp"
	"github.com/deckhand-io/deckhand/internal/ingest"
	"github.com/deckhand-io/deckhand/internal/pending"
)

var (
	envFile string
	ownerID string
)

var rootCmd = &cobra.Command{
	Use:   "deckctl",
	Short: "Deckhand presentation ingestion CLI",
	Long: `deckctl uploads PDFs and images as presentations, resumes uploads that
were stashed before sign-in, and watches slides arrive while the server
finishes processing in the background.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			return godotenv.Load(envFile)
		}
		// Best effort: a missing default .env is fine.
		_ = godotenv.Load()
		if ownerID == "" {
			ownerID = os.Getenv("DECKHAND_OWNER")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file path")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", "", "owner user ID (defaults to DECKHAND_OWNER)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newRecordStore serves the record-only commands; commands that touch
// stored artifacts use newStores instead.
func newRecordStore(ctx context.Context) (*gcp.RecordStore, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID must be set")
	}
	return gcp.NewRecordStore(ctx, projectID)
}

func newStores(ctx context.Context) (*gcp.BlobStore, *gcp.RecordStore, error) {
	bucket := gcp.GetEnv("SLIDES_BUCKET", "")
	if bucket == "" {
		return nil, nil, fmt.Errorf("SLIDES_BUCKET must be set")
	}

	blobs, err := gcp.NewBlobStore(ctx, bucket)
	if err != nil {
		return nil, nil, err
	}
	records, err := newRecordStore(ctx)
	if err != nil {
		blobs.Close()
		return nil, nil, err
	}
	return blobs, records, nil
}

func newPipeline(blobs *gcp.BlobStore, records *gcp.RecordStore) *ingest.LocalPipeline {
	return &ingest.LocalPipeline{
		Blobs:    blobs,
		Records:  records,
		Renderer: ingest.FitzRenderer{},
	}
}

func pendingStore() (*pending.Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return pending.NewStore(filepath.Join(base, "deckhand"))
}
