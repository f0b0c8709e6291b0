package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"snpeprep/internal/app"
	"snpeprep/internal/commands"
	"snpeprep/internal/config"
	"snpeprep/internal/domain"
)

// VersionInfo holds build information.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

//nolint:gochecknoglobals // Package-level version info set from ldflags
var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
	BuiltBy: "unknown",
}

// SetVersionInfo updates the build information.
func SetVersionInfo(v, c, d, b string) {
	versionInfo.Version = v
	versionInfo.Commit = c
	versionInfo.Date = d
	versionInfo.BuiltBy = b
}

// GetVersionInfo returns the current version information.
func GetVersionInfo() VersionInfo {
	return versionInfo
}

const versionTemplate = `{{.Name}} version {{.Version}}
`

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	var cfgFile string

	info := GetVersionInfo()
	cmd := &cobra.Command{
		Use:   "snpeprep",
		Short: "Prepare the SNPE MobileNet v3 tutorial assets",
		Long: `snpeprep prepares the MobileNet v3 (large, minimalistic) tutorial inside
the SNPE SDK pointed to by SNPE_ROOT. It copies sample images and labels into
the model's data directory, generates raw inputs and file lists, and converts
the TFLite model to DLC, quantizing it for the dsp, aip and all runtimes.`,
		Version: fmt.Sprintf("%s\n  commit: %s\n  built: %s\n  built by: %s",
			info.Version, info.Commit, info.Date, info.BuiltBy),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd.Context(), v, cfgFile, cmd.Flags().Changed("config"), stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(versionTemplate)

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/snpeprep/config.yaml)")
	flags.StringP("runtime", "r", "",
		fmt.Sprintf("The runtime to be used [%s] (default %s)", domain.SupportedRuntimesString(), domain.DefaultRuntime))
	flags.StringP("htp_soc", "l", "",
		fmt.Sprintf("Specify SoC to generate HTP Offline Cache (bare flag means %s)", domain.DefaultHTPSoC))
	flags.Lookup("htp_soc").NoOptDefVal = domain.DefaultHTPSoC
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.String("log-format", "", "Log format: text, json or auto (default auto)")
	flags.Bool("dry-run", false, "Validate and print the planned tool invocations without running them")
	flags.Bool("ignore-tool-errors", false, "Only warn when an external tool fails")

	if err := config.Configure(v); err != nil {
		cobra.CheckErr(err)
	}
	for key, name := range map[string]string{
		config.KeyRuntime:          "runtime",
		config.KeyHTPSoC:           "htp_soc",
		config.KeyVerbose:          "verbose",
		config.KeyLogFormat:        "log-format",
		config.KeyDryRun:           "dry-run",
		config.KeyIgnoreToolErrors: "ignore-tool-errors",
	} {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(name)))
	}

	return cmd
}

// normalizeSoCArgs rewrites the optional-value forms of -l/--htp_soc
// ("-l sm8650", "--htp_soc sm8650", "-lsm8650") to "--htp_soc=sm8650".
// pflag never lets a NoOptDefVal flag consume the next token, so without
// this the value would be left behind as a positional argument.
func normalizeSoCArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(out, args[i:]...)
		case arg == "-l" || arg == "--htp_soc":
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				out = append(out, "--htp_soc="+args[i+1])
				i++
				continue
			}
		case strings.HasPrefix(arg, "-l") && !strings.HasPrefix(arg, "-l="):
			out = append(out, "--htp_soc="+arg[len("-l"):])
			continue
		}
		out = append(out, arg)
	}
	return out
}

func runSetup(ctx context.Context, v *viper.Viper, cfgFile string, explicit bool, stdout, stderr io.Writer) error {
	path := cfgFile
	if path == "" {
		// Without a home directory there is simply no default file.
		if p, err := config.DefaultConfigPath(); err == nil {
			path = p
		}
	}
	if err := config.ReadConfigFile(v, path, explicit); err != nil {
		return err
	}

	settings, err := config.Load(v)
	if err != nil {
		return err
	}

	application, err := app.NewApp(ctx, settings, app.WithOutput(stdout, stderr))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	var recorder commands.InvocationRecorder
	if r, ok := application.Runner.(commands.InvocationRecorder); ok {
		recorder = r
	}

	setupCmd := commands.NewSetupCommand(application.Orchestrator, recorder, stdout, application.Logger)
	return setupCmd.Execute(ctx, commands.SetupRequest{
		SDKRoot:          settings.SDKRoot,
		Runtime:          settings.Runtime,
		RuntimeGiven:     settings.RuntimeGiven,
		HTPSoC:           settings.HTPSoC,
		DryRun:           settings.DryRun,
		IgnoreToolErrors: settings.IgnoreToolErrors,
	})
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(normalizeSoCArgs(args))
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

// Execute runs the root command and exits with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
