package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/featureviz/cmd/util"
	"github.com/TuftsBCB/featureviz/jmol"
	"github.com/TuftsBCB/featureviz/pose"
)

// autoPoseOutput lists the scripts an auto pose ran on each viewer.
type autoPoseOutput struct {
	Fit     fitOutput       `json:"fit" yaml:"fit"`
	Scripts [2]viewerScript `json:"scripts" yaml:"scripts"`
}

type viewerScript struct {
	Molecule string   `json:"molecule" yaml:"molecule"`
	Role     string   `json:"role" yaml:"role"`
	Commands []string `json:"commands" yaml:"commands"`
}

func (o autoPoseOutput) writeText(w io.Writer) error {
	for i, s := range o.Scripts {
		fmt.Fprintf(w, "# viewer %d: %s (%s)\n", i, s.Molecule, s.Role)
		if _, err := fmt.Fprintln(w, pose.Script(s.Commands).String()); err != nil {
			return err
		}
	}
	return nil
}

func newAutoPoseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autopose ptf-file ptf-file alignment-file",
		Short: "Print the Jmol scripts that superimpose the two molecules",
		Long: `autopose prints the Jmol scripts that pose two viewers so that the
highlighted alignments line up. The fixed viewer's orientation is taken from
--orientation, which should be the output of "show orientation" for it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.inputs(args)
			if err != nil {
				return err
			}

			recs := [2]*jmol.Recorder{
				jmol.NewRecorder(a.conf.Orientation),
				jmol.NewRecorder(a.conf.Orientation),
			}
			res, err := pose.AutoPose(cmd.Context(), a.log,
				[2]pose.Viewer{recs[0], recs[1]},
				in.Alignments, a.conf.Locked())
			if err != nil {
				return err
			}

			out := autoPoseOutput{
				Fit: newFitOutput(in.Molecules, res.Correspondence, res.Fit),
			}
			for i, rec := range recs {
				role := "moving"
				if i == res.Correspondence.Fixed {
					role = "fixed"
				}
				out.Scripts[i] = viewerScript{
					Molecule: in.Molecules[i].Title(),
					Role:     role,
					Commands: append([]string{}, rec.Commands()...),
				}
			}
			return util.Encode(cmd.OutOrStdout(), a.conf.Format, out,
				out.writeText)
		},
	}
	util.FlagUse(cmd, "format", "lock", "cutoff", "orientation")
	return cmd
}
