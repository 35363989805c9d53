package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deckhand-io/deckhand/internal/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch [document-id]",
	Short: "Print slides as they arrive for a presentation",
	Long: `Subscribes to slide insertions for one presentation. Useful while the
server is still publishing background pages: the stream is a delivery
hint, not a completion signal, so interrupt with Ctrl-C when done.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	documentID := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := newRecordStore(ctx)
	if err != nil {
		return err
	}
	defer records.Close()

	slides, unsubscribe := notify.WatchSlides(ctx, records.SlidesQuery(documentID))
	defer unsubscribe()

	fmt.Printf("Watching slides for %s (Ctrl-C to stop)...\n", documentID)
	for slide := range slides {
		fmt.Printf("  #%d %s %s\n", slide.Order, slide.Title, slide.ImageURL)
	}
	return nil
}
