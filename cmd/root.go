package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgcore-cli/internal/profile"
)

var (
	version     = "0.1.0"
	verbose     bool
	profileName string
	presetsPath string
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "imgcore",
	Short: "Histogram equalization, superpixels and HDR fusion for still images",
	Long: `imgcore applies classic image processing operations to files:

  equalize  global histogram equalization (optionally clipped)
  clahe     adaptive, contrast limited histogram equalization
  slic      SLIC superpixel segmentation with contours and centers
  hdr       exposure fusion of a bracketed stack into one image
  batch     run equalize, clahe or slic over a directory tree

Parameters come from a named profile (default, strong, fine), optionally
extended by a JSON presets file; explicit flags win over both.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVarP(&profileName, "profile", "p", profile.DefaultName, "parameter profile")
	pf.StringVar(&presetsPath, "presets", "", "JSON file with additional or overriding profiles")
	pf.DurationVar(&timeout, "timeout", 0, "abort the operation after this long (0 = no limit)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgcore %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[imgcore] "+format+"\n", args...)
	}
}

// loadProfile resolves --profile against the built-ins and --presets.
func loadProfile() (profile.Profile, error) {
	set := profile.Builtins()
	if presetsPath != "" {
		var err error
		set, err = profile.LoadFile(presetsPath, set)
		if err != nil {
			return profile.Profile{}, err
		}
	}
	p := set.Get(profileName)
	if _, known := set[profileName]; !known {
		logVerbose("unknown profile %q, using %s defaults", profileName, profile.DefaultName)
	}
	return p, nil
}

// operationContext is cancelled on SIGINT and after --timeout.
func operationContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// cancelledError explains why an operation returned without a result.
func cancelledError(ctx context.Context, what string) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: timed out after %s", what, timeout)
	}
	return fmt.Errorf("%s: cancelled", what)
}
