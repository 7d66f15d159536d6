package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TuftsBCB/featureviz/align"
	"github.com/TuftsBCB/featureviz/cmd/util"
	"github.com/TuftsBCB/featureviz/ptf"
	"github.com/TuftsBCB/featureviz/rmsd"
)

// fitOutput is what fit prints, in any format.
type fitOutput struct {
	Moving     string        `json:"moving" yaml:"moving"`
	Fixed      string        `json:"fixed" yaml:"fixed"`
	Pairs      int           `json:"pairs" yaml:"pairs"`
	Rotation   [3][3]float64 `json:"rotation" yaml:"rotation"`
	PCenter    [3]float64    `json:"moving_center" yaml:"moving_center"`
	QCenter    [3]float64    `json:"fixed_center" yaml:"fixed_center"`
	RMSD       float64       `json:"rmsd" yaml:"rmsd"`
	Degenerate bool          `json:"degenerate" yaml:"degenerate"`
	Reflected  bool          `json:"reflected" yaml:"reflected"`
}

func newFitOutput(mols [2]*ptf.Molecule, c align.Correspondence,
	fit rmsd.Fit) fitOutput {

	return fitOutput{
		Moving:     mols[c.Moving].Title(),
		Fixed:      mols[c.Fixed].Title(),
		Pairs:      len(c.P),
		Rotation:   fit.Rotation.Rows(),
		PCenter:    fit.PCenter,
		QCenter:    fit.QCenter,
		RMSD:       fit.RMSD,
		Degenerate: fit.Degenerate,
		Reflected:  fit.Reflected,
	}
}

func (o fitOutput) writeText(w io.Writer) error {
	fmt.Fprintf(w, "moving: %s\n", o.Moving)
	fmt.Fprintf(w, "fixed: %s\n", o.Fixed)
	fmt.Fprintf(w, "pairs: %d\n", o.Pairs)
	fmt.Fprintf(w, "rotation:\n")
	for _, row := range o.Rotation {
		fmt.Fprintf(w, "\t% .6f % .6f % .6f\n", row[0], row[1], row[2])
	}
	fmt.Fprintf(w, "moving center: %.3f %.3f %.3f\n",
		o.PCenter[0], o.PCenter[1], o.PCenter[2])
	fmt.Fprintf(w, "fixed center: %.3f %.3f %.3f\n",
		o.QCenter[0], o.QCenter[1], o.QCenter[2])
	_, err := fmt.Fprintf(w, "rmsd: %.6f\n", o.RMSD)
	if o.Degenerate {
		_, err = fmt.Fprintln(w, "degenerate: the rotation is not unique")
	}
	return err
}

func newFitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit ptf-file ptf-file alignment-file",
		Short: "Print the rotation superimposing one molecule onto the other",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.inputs(args)
			if err != nil {
				return err
			}
			c, err := align.Select(in.Alignments, a.conf.Locked())
			if err != nil {
				return err
			}
			fit, err := rmsd.Kabsch(c.P, c.Q)
			if err != nil {
				return err
			}
			if fit.Degenerate {
				a.log.Warn("correspondence points are collinear or coincident",
					zap.Int("pairs", len(c.P)))
			}

			out := newFitOutput(in.Molecules, c, fit)
			return util.Encode(cmd.OutOrStdout(), a.conf.Format, out,
				out.writeText)
		},
	}
	util.FlagUse(cmd, "format", "lock", "cutoff")
	return cmd
}
