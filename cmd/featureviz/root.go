package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TuftsBCB/featureviz/cmd/util"
)

// app is the state shared by all commands once the root command has loaded
// the configuration.
type app struct {
	loader  *util.Loader
	cfgFile string

	conf *util.Config
	log  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{loader: util.NewLoader(nil)}

	root := &cobra.Command{
		Use:   "featureviz",
		Short: "Superimpose molecules on their FEATURE alignments",
		Long: `featureviz finds the rotation that lines up the points FEATURE aligned
between two molecules, and poses Jmol viewers of those molecules to match.

Examples:
  featureviz fit 1qhi.ptf 2ayr.ptf 1qhi-2ayr.align
  featureviz autopose --lock 0 1qhi.ptf 2ayr.ptf 1qhi-2ayr.align
  featureviz serve --addr :8085 1qhi.ptf 2ayr.ptf 1qhi-2ayr.align`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	fs := root.PersistentFlags()
	fs.StringVar(&a.cfgFile, "config", "",
		"config file (default is featureviz.yaml in ., "+
			"$HOME/.config/featureviz or /etc/featureviz)")
	fs.BoolP("verbose", "v", false,
		"verbose output (equivalent to --log-level=debug)")
	fs.String("log-level", util.DefaultLogLevel,
		"log level (debug, info, warn, error)")
	fs.String("log-format", util.DefaultLogFormat, "log format (console, json)")

	root.AddCommand(
		newFitCmd(a),
		newAutoPoseCmd(a),
		newServeCmd(a),
	)
	return root
}

// init binds the flags of the command about to run, loads the configuration
// and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	v := a.loader.Viper()
	pfs := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"verbose":    "verbose",
		"log_level":  "log-level",
		"log_format": "log-format",
	} {
		if err := v.BindPFlag(key, pfs.Lookup(name)); err != nil {
			return err
		}
	}
	if err := util.BindFlags(cmd, v); err != nil {
		return err
	}

	conf, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	log, err := util.NewLogger(conf.LogLevel, conf.LogFormat, conf.Verbose)
	if err != nil {
		return err
	}
	a.conf, a.log = conf, log.Named("featureviz")
	if used := a.loader.ConfigFileUsed(); len(used) > 0 {
		a.log.Debug("using config file", zap.String("file", used))
	}
	return nil
}

// inputs loads the point and alignment files named on the command line.
func (a *app) inputs(args []string) (*util.Inputs, error) {
	return util.LoadInputs(a.log, a.conf, args[0], args[1], args[2])
}
