package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckhand-io/deckhand/internal/ingest"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List presentations for the signed-in owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ownerID == "" {
			return fmt.Errorf("--owner (or DECKHAND_OWNER) is required")
		}
		ctx := cmd.Context()
		records, err := newRecordStore(ctx)
		if err != nil {
			return err
		}
		defer records.Close()

		docs, err := records.ListDocuments(ctx, ownerID)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			fmt.Printf("%s  %s  (%d slides, created %s)\n",
				doc.ID, doc.Title, doc.SlideCount, doc.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Show a presentation and its slides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		records, err := newRecordStore(ctx)
		if err != nil {
			return err
		}
		defer records.Close()

		doc, err := records.GetDocument(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", doc.ID, doc.Title)
		for _, slide := range doc.Slides {
			fmt.Printf("  #%d %s %s\n", slide.Order, slide.Title, slide.ImageURL)
		}
		return nil
	},
}

var annotateTitle, annotateDescription string

var annotateCmd = &cobra.Command{
	Use:   "annotate [slide-id]",
	Short: "Set a slide's title and description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		records, err := newRecordStore(ctx)
		if err != nil {
			return err
		}
		defer records.Close()
		return records.UpdateSlide(ctx, args[0], annotateTitle, annotateDescription)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a presentation, its slides and its stored artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		blobs, records, err := newStores(ctx)
		if err != nil {
			return err
		}
		defer blobs.Close()
		defer records.Close()
		return ingest.DeleteDocumentAndArtifacts(ctx, blobs, records, args[0])
	},
}

func init() {
	annotateCmd.Flags().StringVar(&annotateTitle, "title", "", "slide title")
	annotateCmd.Flags().StringVar(&annotateDescription, "description", "", "slide description")
	rootCmd.AddCommand(listCmd, showCmd, annotateCmd, deleteCmd)
}
