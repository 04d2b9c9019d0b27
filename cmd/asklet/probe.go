package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/config"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/oracle"
	"github.com/cognicore/asklet/pkg/asklet/slug"
)

var (
	probeSource       string
	probeMatrix       string
	probeDB           string
	probeSession      string
	probeSeed         uint64
	probeTarget       string
	probeClearSession bool
)

const probeHelp = `Commands:
  choose                      start a round with a random target
  target [id]                 show or force the target
  ask <attribute>             ask for a belief
  describe <n> [exclude...]   ask for up to n hints
  confirm <candidate>         check a guess
  quit                        leave`

// probeCmd drives one oracle by hand, standing in for the engine
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Question an oracle interactively",
	Long:  "Load an oracle and question it the way the guessing engine would.\n\n" + probeHelp,
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeSource, "source", "", "matrix, domain or shell")
	probeCmd.Flags().StringVar(&probeMatrix, "matrix", "", "matrix YAML file")
	probeCmd.Flags().StringVar(&probeDB, "db", "", "domain database path")
	probeCmd.Flags().StringVar(&probeSession, "session", "", "shell session marker file")
	probeCmd.Flags().Uint64Var(&probeSeed, "seed", 0, "random seed (0 picks one)")
	probeCmd.Flags().StringVar(&probeTarget, "target", "", "force the first round's target")
	probeCmd.Flags().BoolVar(&probeClearSession, "clear-session", false, "start the shell with a new identity")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyProbeFlags(cmd, cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	console := newLineReader(os.Stdin)
	loader := config.Loader{
		Config:       *cfg,
		In:           console,
		Out:          os.Stdout,
		Logger:       logger,
		ClearSession: probeClearSession,
	}
	comp, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	defer comp.Close()

	if comp.Shell != nil {
		fmt.Printf("Session %s\n", comp.Shell.ID())
	}

	if probeTarget != "" {
		if err := comp.Oracle.SetTarget(ctx, probeTarget); err != nil {
			return fmt.Errorf("set target: %w", err)
		}
	}

	return repl(ctx, comp.Oracle, console, os.Stdout)
}

func applyProbeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = probeSource
	}
	if flags.Changed("matrix") {
		cfg.Matrix = probeMatrix
		if !flags.Changed("source") {
			cfg.Source = config.SourceMatrix
		}
	}
	if flags.Changed("db") {
		cfg.Database = probeDB
		if !flags.Changed("source") && !flags.Changed("matrix") {
			cfg.Source = config.SourceDomain
		}
	}
	if flags.Changed("session") {
		cfg.SessionFile = probeSession
	}
	if flags.Changed("seed") {
		cfg.Seed = probeSeed
	}
}

// repl reads commands from in until quit or end of input.
func repl(ctx context.Context, o oracle.Oracle, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			fmt.Fprintln(out, "\nGoodbye!")
			if err == io.EOF {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}

		if err := execute(ctx, o, fields[0], fields[1:], out); err != nil {
			if errors.Is(err, internalerr.ErrInputClosed) {
				break
			}
			logger.Debug("command failed", zap.String("command", fields[0]), zap.Error(err))
			fmt.Fprintln(out, "Error:", err)
		}
	}

	fmt.Fprintln(out, "\nGoodbye!")
	return nil
}

func execute(ctx context.Context, o oracle.Oracle, command string, args []string, out io.Writer) error {
	switch command {
	case "choose":
		if err := o.ChooseSecret(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "New round started.")

	case "target":
		if len(args) == 0 {
			if o.Target() == "" {
				fmt.Fprintln(out, "No target yet.")
			} else {
				fmt.Fprintln(out, o.Target())
			}
			return nil
		}
		if err := o.SetTarget(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		fmt.Fprintln(out, "Target set to", o.Target())

	case "ask":
		if len(args) == 0 {
			return fmt.Errorf("usage: ask <attribute>")
		}
		b, err := o.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%g\n", float64(b))

	case "describe":
		if len(args) == 0 {
			return fmt.Errorf("usage: describe <n> [exclude...]")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("describe: %q is not a count", args[0])
		}
		hints, err := o.Describe(ctx, n, args[1:])
		if err != nil {
			return err
		}
		if len(hints) == 0 {
			fmt.Fprintln(out, "Nothing to tell.")
		}
		for _, h := range hints {
			fmt.Fprintf(out, "  • %s (%s): %g\n", slug.Name(h.Attribute), h.Attribute, float64(h.Belief))
		}

	case "confirm":
		if len(args) == 0 {
			return fmt.Errorf("usage: confirm <candidate>")
		}
		ok, err := o.Confirm(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(out, "Yes, that's it!")
		} else {
			fmt.Fprintln(out, "No.")
		}

	case "help":
		fmt.Fprintln(out, probeHelp)

	default:
		return fmt.Errorf("unknown command %q (try help)", command)
	}
	return nil
}
