package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/sequencer"
	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/log"
)

type playOptions struct {
	delayMs int64
	from    int
}

func playCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play <tour>",
		Short: "Play a tour in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := catalog.Default().Tour(api.TourID(args[0]))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(
				cmd.Context(), syscall.SIGINT, syscall.SIGTERM,
			)
			defer stop()
			return play(ctx, cmd.OutOrStdout(), t, opts,
				sequencer.NewTimer)
		},
	}
	cmd.Flags().Int64Var(&opts.delayMs, "delay", 0,
		"Override the tour's auto-advance delay in milliseconds")
	cmd.Flags().IntVar(&opts.from, "from", -1,
		"Jump to this step index before playing")
	return cmd
}

// play runs a sequencer over t, rendering every state it reaches until the
// last step is shown or ctx is done
func play(
	ctx context.Context, w io.Writer, t *api.Tour, opts playOptions,
	makeTimer sequencer.TimerConstructor,
) error {
	delay := t.Delay()
	if opts.delayMs > 0 {
		delay = time.Duration(opts.delayMs) * time.Millisecond
	}

	states := make(chan api.SequencerState, len(t.Steps)+2)
	seq, err := sequencer.New(sequencer.Config{
		Steps:     t.Steps,
		Delay:     delay,
		Unstarted: t.Unstarted,
		NewTimer:  makeTimer,
		OnChange: func(st api.SequencerState) {
			select {
			case states <- st:
			default:
			}
		},
	})
	if err != nil {
		return err
	}
	defer seq.Close()

	if opts.from >= 0 {
		if err := seq.JumpTo(opts.from); err != nil {
			return err
		}
	}
	slog.Debug("Tour playing",
		log.TourID(t.ID),
		slog.Duration("delay", delay))

	// a tour already at its last step does not enter playing
	if err := seq.Start(); err != nil {
		return err
	}
	last := seq.State()
	if _, err := fmt.Fprint(w, renderStep(t, last)); err != nil {
		return err
	}
	if !last.Playing {
		return nil
	}

	shown := last.Version
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-states:
			if st.Version <= shown {
				continue
			}
			shown = st.Version
			if _, err := fmt.Fprint(w, renderStep(t, st)); err != nil {
				return err
			}
			if !st.Playing {
				return nil
			}
		}
	}
}
