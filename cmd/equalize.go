package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgcore-cli/internal/pipeline"
)

var equalizeClip float64

var equalizeCmd = &cobra.Command{
	Use:   "equalize <input> <output>",
	Short: "Global histogram equalization",
	Long: `Equalizes the histogram of the whole image. Grayscale images are
equalized on one plane and replicated; color images keep hue and
saturation and only the HSV value channel is remapped.

A positive --clip caps every histogram bin at clip × (pixels / 256)
before the mapping is built, limiting how much contrast is added.`,
	Args: cobra.ExactArgs(2),
	RunE: runEqualize,
}

func init() {
	equalizeCmd.Flags().Float64Var(&equalizeClip, "clip", 0, "clip limit (0 = unclipped)")
	rootCmd.AddCommand(equalizeCmd)
}

func runEqualize(cmd *cobra.Command, args []string) error {
	prof, err := loadProfile()
	if err != nil {
		return err
	}
	params := pipeline.Params{ClipLimit: equalizeClip}
	logVerbose("equalize: clip=%g", params.ClipLimit)
	return runSingle(cmd, "equalize", args[0], args[1], prof, params)
}
