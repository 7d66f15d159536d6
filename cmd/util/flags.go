package util

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type commonFlag struct {
	// The configuration key the flag is bound to.
	key string
	set func(fs *pflag.FlagSet)
}

var commonFlags = map[string]*commonFlag{
	"format": {
		key: "format",
		set: func(fs *pflag.FlagSet) {
			fs.StringP("format", "f", DefaultFormat,
				"Output format: text, json or yaml.")
		},
	},
	"lock": {
		key: "lock",
		set: func(fs *pflag.FlagSet) {
			fs.IntSlice("lock", nil,
				"Index (0 or 1) of a molecule that must not move.\n"+
					"May be given twice, which is an error for any alignment.")
		},
	},
	"cutoff": {
		key: "cutoff",
		set: func(fs *pflag.FlagSet) {
			fs.String("cutoff", "",
				"Alignments scoring above this are cut off. By default,\n"+
					"nothing in the alignment file is cut off.")
		},
	},
	"orientation": {
		key: "orientation",
		set: func(fs *pflag.FlagSet) {
			fs.String("orientation", DefaultOrientation,
				"The fixed viewer's orientation, as Jmol reports it.")
		},
	},
	"addr": {
		key: "server.addr",
		set: func(fs *pflag.FlagSet) {
			fs.String("addr", DefaultAddr,
				"The address to accept viewer connections on.")
		},
	},
	"poses": {
		key: "server.poses_file",
		set: func(fs *pflag.FlagSet) {
			fs.String("poses", DefaultPosesFile,
				"The YAML file that named poses are saved to.")
		},
	},
}

// FlagUse adds the named common flags to a command.
func FlagUse(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		fl, ok := commonFlags[name]
		if !ok {
			panic(fmt.Sprintf("unknown common flag '%s'", name))
		}
		fl.set(cmd.Flags())
	}
}

// BindFlags binds every common flag of cmd to its configuration key in v.
// It must be called for the command that is about to run, since several
// commands share flag names.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		fl, ok := commonFlags[f.Name]
		if !ok || err != nil {
			return
		}
		if berr := v.BindPFlag(fl.key, f); berr != nil {
			err = fmt.Errorf("binding flag '%s': %w", f.Name, berr)
		}
	})
	return err
}
