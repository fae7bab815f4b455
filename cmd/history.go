package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/scrubdeck/scrubdeck/color"
	"github.com/scrubdeck/scrubdeck/icon"
	"github.com/scrubdeck/scrubdeck/resume"
	"github.com/scrubdeck/scrubdeck/style"
	"github.com/scrubdeck/scrubdeck/timefmt"
	"github.com/scrubdeck/scrubdeck/util"
	"github.com/spf13/cobra"
)

func withStore(run func(ctx context.Context, store resume.Store) error) error {
	store, err := openResumeStore()
	if err != nil {
		return err
	}
	defer util.Ignore(store.Close)

	return run(context.Background(), store)
}

func historyLine(state *resume.State) string {
	name := state.Title
	if name == "" {
		name = state.URL
	}

	mark := icon.Mark
	if state.Finished {
		mark = icon.Success
	}

	return fmt.Sprintf(
		"%s %s %s %s",
		icon.Get(mark),
		style.Fg(color.Purple)(name),
		timefmt.Label(state.PosSeconds, state.DurationSeconds),
		style.Faint(fmt.Sprintf("(%.0f%%, %s)", state.Fraction()*100, state.UpdatedAt.Local().Format("2006-01-02 15:04"))),
	)
}

func resumeSchema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		return "resume." + t.Name()
	}
	return reflector.Reflect([]*resume.State{})
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().Bool("schema", false, "Print the JSON Schema of the --json output")
	historyCmd.MarkFlagsMutuallyExclusive("json", "schema")
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List remembered playback positions",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(resumeSchema()))
			return
		}

		asJson := lo.Must(cmd.Flags().GetBool("json"))

		handleErr(withStore(func(ctx context.Context, store resume.Store) error {
			states, err := store.List(ctx)
			if err != nil {
				return err
			}

			if asJson {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(states)
			}

			if len(states) == 0 {
				cmd.Println("No remembered positions")
				return nil
			}

			for _, state := range states {
				cmd.Println(historyLine(state))
			}
			return nil
		}))
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove <file|url>",
	Short:   "Forget the remembered position of one item",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src, err := newSource(args[0], playFlags{})
		handleErr(err)

		handleErr(withStore(func(ctx context.Context, store resume.Store) error {
			return store.Delete(ctx, src.URL)
		}))
		fmt.Printf("%s forgot %s\n", icon.Get(icon.Success), style.Fg(color.Purple)(src.URL))
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every remembered position",
	Run: func(cmd *cobra.Command, args []string) {
		var removed int

		handleErr(withStore(func(ctx context.Context, store resume.Store) error {
			states, err := store.List(ctx)
			if err != nil {
				return err
			}

			for _, state := range states {
				if err := store.Delete(ctx, state.URL); err != nil {
					return err
				}
				removed++
			}
			return nil
		}))

		fmt.Printf("%s removed %s\n", icon.Get(icon.Success), util.Quantify(removed, "position", "positions"))
	},
}
