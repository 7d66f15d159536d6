/*
featureviz superimposes two molecules using the points FEATURE aligned between
them. Each molecule is read from a point file (.ptf, optionally gzipped) and
the alignments are read from a FEATURE alignment file, where each line names a
point from each molecule and the score of the pair. Lower scores are better.

Usage:
	featureviz fit ptf-file ptf-file alignment-file
	featureviz autopose ptf-file ptf-file alignment-file
	featureviz serve ptf-file ptf-file alignment-file

Details

fit finds the rotation that best superimposes the highlighted points of one
molecule onto the other, using the Kabsch algorithm, and prints it along with
the RMSD of the fit. By default the second molecule is fixed; use --lock to
fix one of them explicitly.

autopose prints the Jmol script that would move the viewer of the moving
molecule to line up with the viewer of the fixed one.

serve waits for two JSmol pages to connect over a websocket at /viewer, poses
them as autopose would and saves the result as "Default Pose". While it runs:

	POST /autopose              poses the viewers again
	GET  /poses                 lists saved poses
	POST /poses?name=N          saves the current view of both viewers
	POST /poses/restore?name=N  restores a saved pose

Configuration is read from featureviz.yaml (in the current directory,
$HOME/.config/featureviz or /etc/featureviz) and from environment variables
prefixed with FEATUREVIZ_. Flags take precedence over both.
*/
package main
