package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckhand-io/deckhand/internal/ingest"
)

var (
	uploadTitle    string
	remoteEndpoint string
	remoteToken    string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]...",
	Short: "Create a presentation from a PDF or a set of images",
	Long: `Ingests the given files into a new presentation. By default processing
happens in-process; with --remote a PDF is staged to storage and handed
to the process-pdf function, which answers once the first slide is
ready and publishes the rest in the background.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "presentation title (defaults to the file name)")
	uploadCmd.Flags().StringVar(&remoteEndpoint, "remote", "", "process-pdf function URL for server-side processing")
	uploadCmd.Flags().StringVar(&remoteToken, "token", "", "bearer credential for --remote (defaults to DECKHAND_TOKEN)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	files := make([]ingest.SourceFile, 0, len(args))
	for _, arg := range args {
		data, err := os.ReadFile(arg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", arg, err)
		}
		files = append(files, ingest.SourceFile{
			Name: filepath.Base(arg),
			Data: data,
		})
	}

	title := uploadTitle
	if title == "" {
		title = strings.TrimSuffix(files[0].Name, filepath.Ext(files[0].Name))
	}

	if ownerID == "" {
		// Not signed in. Stash the file the way the web client does
		// before an auth redirect and pick it up later with resume.
		if len(files) > 1 {
			return fmt.Errorf("sign in (set --owner) to upload more than one file at a time")
		}
		store, err := pendingStore()
		if err != nil {
			return err
		}
		if err := store.Save(files[0]); err != nil {
			return err
		}
		fmt.Printf("Not signed in. %s saved; run 'deckctl resume --owner <id>' after signing in.\n", files[0].Name)
		return nil
	}

	ctx := cmd.Context()
	blobs, records, err := newStores(ctx)
	if err != nil {
		return err
	}
	defer blobs.Close()
	defer records.Close()

	if remoteEndpoint != "" {
		if len(files) > 1 {
			return fmt.Errorf("server-side processing takes a single PDF")
		}
		token := remoteToken
		if token == "" {
			token = os.Getenv("DECKHAND_TOKEN")
		}
		client := &ingest.RemoteClient{
			Blobs:    blobs,
			Records:  records,
			Endpoint: remoteEndpoint,
			Token:    token,
		}
		doc, err := client.CreateDocument(ctx, ownerID, title, files[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created presentation %s (%q): %d of %d slides ready, rest processing\n",
			doc.ID, doc.Title, len(doc.Slides), doc.SlideCount)
		return nil
	}

	doc, err := newPipeline(blobs, records).CreateDocument(ctx, ownerID, title, files)
	if err != nil {
		return err
	}

	fmt.Printf("Created presentation %s (%q) with %d slides\n", doc.ID, doc.Title, doc.SlideCount)
	return nil
}
