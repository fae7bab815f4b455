package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/scrubdeck/scrubdeck/key"
	"github.com/scrubdeck/scrubdeck/log"
	"github.com/scrubdeck/scrubdeck/playback"
	"github.com/scrubdeck/scrubdeck/player"
	"github.com/scrubdeck/scrubdeck/resume"
	"github.com/scrubdeck/scrubdeck/tui"
	"github.com/scrubdeck/scrubdeck/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type playFlags struct {
	title    string
	from     float64
	resume   bool
	noResume bool
	noTUI    bool
	headers  map[string]string
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("title", "t", "", "Title shown instead of the file name or URL")
	playCmd.Flags().Float64P("from", "f", -1, "Start position in seconds, overriding any remembered position")
	playCmd.Flags().BoolP("continue", "c", false, "Resume from the remembered position without asking")
	playCmd.Flags().Bool("no-resume", false, "Neither restore nor remember the playback position")
	playCmd.Flags().Bool("no-tui", false, "Print a progress line instead of the interactive interface")
	playCmd.Flags().StringToStringP("header", "H", nil, "HTTP header sent with remote streams, as Name=Value")

	playCmd.MarkFlagsMutuallyExclusive("from", "continue")
	playCmd.MarkFlagsMutuallyExclusive("no-resume", "continue")
}

var playCmd = &cobra.Command{
	Use:     "play <file|url>",
	Short:   "Play a local file or a remote stream",
	Aliases: []string{"p"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := playFlags{
			title:    lo.Must(cmd.Flags().GetString("title")),
			from:     lo.Must(cmd.Flags().GetFloat64("from")),
			resume:   lo.Must(cmd.Flags().GetBool("continue")),
			noResume: lo.Must(cmd.Flags().GetBool("no-resume")),
			noTUI:    lo.Must(cmd.Flags().GetBool("no-tui")),
			headers:  lo.Must(cmd.Flags().GetStringToString("header")),
		}

		if flags.noResume {
			viper.Set(key.ResumeEnable, false)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handleErr(play(ctx, args[0], flags))
	},
}

func newSource(target string, flags playFlags) (playback.Source, error) {
	src := playback.Source{
		URL:         target,
		Title:       flags.title,
		IsLocalFile: player.IsLocal(target),
		Headers:     flags.headers,
	}

	if src.IsLocalFile {
		abs, err := filepath.Abs(target)
		if err != nil {
			return src, err
		}
		src.URL = abs
		if src.Title == "" {
			src.Title = filepath.Base(abs)
		}
	}

	return src, nil
}

func play(ctx context.Context, target string, flags playFlags) error {
	opts, err := playback.OptionsFromConfig()
	if err != nil {
		return err
	}

	src, err := newSource(target, flags)
	if err != nil {
		return err
	}

	store, err := openResumeStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warnf("close resume store: %v", err)
		}
	}()

	saved, err := resume.Lookup(ctx, store, src.URL)
	if err != nil {
		return err
	}

	src.ResumeFromSeconds, err = startPosition(saved, flags.from, opts.ResumeThreshold, confirmResume(flags.resume))
	if err != nil {
		return err
	}

	core := playback.New(opts)
	engine := player.NewMPV(player.Config{
		Binary:    viper.GetString(key.PlayerBinary),
		Interval:  playback.PeriodicInterval(),
		SocketDir: where.Temp(),
	}, core)
	core.Attach(engine)
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warnf("close mpv: %v", err)
		}
	}()

	interval := time.Duration(viper.GetInt(key.ResumeSaveInterval)) * time.Second
	saver := newProgressSaver(resume.NewRecorder(store, interval), src)
	core.Observe(saver.observe)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return core.Run(gctx)
	})
	g.Go(func() error {
		return saver.run(gctx)
	})

	log.With(log.Fields{"url": src.URL, "from": src.ResumeFromSeconds}).Info("playing")
	core.LoadSource(src)

	g.Go(func() error {
		// the interface owns the session; leaving it stops everything else
		defer cancel()

		var err error
		if flags.noTUI {
			err = headless(gctx, core)
		} else {
			err = tui.Run(gctx, core, tui.OptionsFromConfig(src.Title))
		}

		if snapshot, snapErr := core.Snapshot(); snapErr == nil {
			saver.flush(snapshot)
		}
		return err
	})

	return g.Wait()
}
