package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgcore-cli/internal/codec"
	"github.com/AnyUserName/imgcore-cli/internal/encoder"
	"github.com/AnyUserName/imgcore-cli/internal/pipeline"
	"github.com/AnyUserName/imgcore-cli/internal/profile"
)

// runSingle decodes in, applies op and writes the result to out, whose
// extension picks the output format.
func runSingle(cmd *cobra.Command, opName, in, out string, prof profile.Profile, params pipeline.Params) error {
	op, err := pipeline.Lookup(opName)
	if err != nil {
		return err
	}
	reg := encoder.NewRegistry()
	if _, err := reg.ForPath(out); err != nil {
		return err
	}

	start := time.Now()
	img, err := codec.Decode(in)
	if err != nil {
		return err
	}
	logVerbose("decoded %s: %dx%d, %d planes", in, img.Width(), img.Height(), img.NumPlanes())

	ctx, cancel := operationContext(cmd.Context())
	defer cancel()
	res, done, err := op(ctx, img, params)
	if err != nil {
		return fmt.Errorf("%s: %w", opName, err)
	}
	if !done {
		return cancelledError(ctx, opName)
	}
	logVerbose("%s finished in %s", opName, time.Since(start).Round(time.Millisecond))

	if err := codec.Save(res, out, prof.Quality, reg); err != nil {
		return err
	}
	logVerbose("wrote %s", out)
	return nil
}
