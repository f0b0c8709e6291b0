package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snpeprep/internal/domain"
	"snpeprep/internal/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// isolate keeps the user's config file and environment out of the run.
func isolate(t *testing.T, sdkRoot string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SNPE_ROOT", sdkRoot)
	for _, key := range []string{
		"SNPEPREP_RUNTIME", "SNPEPREP_HTP_SOC", "SNPEPREP_DRY_RUN",
		"SNPEPREP_IGNORE_TOOL_ERRORS", "SNPEPREP_VERBOSE", "SNPEPREP_LOG_FORMAT",
		"SNPEPREP_TOOLS_PYTHON", "SNPEPREP_TOOLS_CONVERTER", "SNPEPREP_TOOLS_QUANTIZER",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestRootCmd_Structure(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, "snpeprep", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.Runnable())
	assert.Empty(t, cmd.Commands())

	for _, name := range []string{"runtime", "htp_soc", "config", "verbose", "log-format", "dry-run", "ignore-tool-errors"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "r", cmd.Flags().Lookup("runtime").Shorthand)
	assert.Equal(t, "l", cmd.Flags().Lookup("htp_soc").Shorthand)
	assert.Equal(t, domain.DefaultHTPSoC, cmd.Flags().Lookup("htp_soc").NoOptDefVal)
}

func TestRun_Version(t *testing.T) {
	res := execute(t, "--version")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "snpeprep version dev")
}

func TestRun_MissingSDKRoot(t *testing.T) {
	isolate(t, "")

	res := execute(t, "--dry-run")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR: SNPE_ROOT not setup.  Please run the SDK env setup script.")
}

func TestRun_SDKRootNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sdk")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	isolate(t, file)

	res := execute(t, "--dry-run")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR: SNPE_ROOT ("+file+") is not a dir")
}

func TestRun_InvalidRuntime(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	isolate(t, layout.SDKRoot)

	res := execute(t, "--dry-run", "-r", "tpu")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR: tpu not a valid runtime. See help.")
}

func TestRun_MissingModelDir(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.SDKTree{SkipModel: true})
	isolate(t, layout.SDKRoot)

	res := execute(t, "--dry-run")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, layout.ModelDir()+" does not exist.  Your SDK may be faulty.")
}

func TestRun_UnexpectedArgument(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "lone argument", args: []string{"--dry-run", "extra"}},
		{name: "after htp_soc with a value", args: []string{"--dry-run", "-r", "dsp", "--htp_soc=sm8550", "extra"}},
		{name: "before a bare htp_soc", args: []string{"--dry-run", "-r", "dsp", "extra", "-l"}},
		{name: "after a consumed soc", args: []string{"--dry-run", "-r", "dsp", "-l", "sm8650", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
			isolate(t, layout.SDKRoot)

			res := execute(t, tt.args...)

			assert.Equal(t, 1, res.code)
			assert.Contains(t, res.stderr, `ERROR: unknown command "extra"`)
			assert.Empty(t, res.stdout)
		})
	}
}

func TestRun_EmptyRuntime(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	isolate(t, layout.SDKRoot)

	res := execute(t, "--dry-run", "-r", "")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR:  not a valid runtime. See help.")
}

func TestRun_EmptyRuntimeChecksSDKRootFirst(t *testing.T) {
	isolate(t, "")

	res := execute(t, "--dry-run", "--runtime=")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR: SNPE_ROOT not setup.")
}

func TestRun_IsolatedFromSettingsEnvironment(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	t.Setenv("SNPEPREP_IGNORE_TOOL_ERRORS", "true")
	t.Setenv("SNPEPREP_LOG_FORMAT", "xml")
	isolate(t, layout.SDKRoot)

	res := execute(t, "--dry-run")

	require.Equal(t, 0, res.code, res.stderr)
}

func TestRun_DryRunPlans(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{
			name:        "default runtime is cpu without quantization",
			args:        nil,
			contains:    []string{"runtime: cpu", "name: snpe-tflite-to-dlc", "MobilenetV3/Predictions/Softmax"},
			notContains: []string{"snpe-dlc-quantize", "htpSoc"},
		},
		{
			name:     "bare htp_soc selects the default soc",
			args:     []string{"-r", "dsp", "--htp_soc"},
			contains: []string{"runtime: dsp", "htpSoc: sm8550", "--enable_htp", "- sm8550"},
		},
		{
			name:     "htp_soc value after a space",
			args:     []string{"-r", "dsp", "-l", "sm8650"},
			contains: []string{"htpSoc: sm8650", "--enable_htp", "- sm8650"},
		},
		{
			name:     "attached short htp_soc value",
			args:     []string{"-r", "dsp", "-lsm8650"},
			contains: []string{"htpSoc: sm8650", "--enable_htp", "- sm8650"},
		},
		{
			name:     "long htp_soc value after a space",
			args:     []string{"-r", "dsp", "--htp_soc", "sm8450"},
			contains: []string{"htpSoc: sm8450", "- sm8450"},
		},
		{
			name:     "short htp_soc value with equals",
			args:     []string{"-r", "dsp", "-l=sm8650"},
			contains: []string{"htpSoc: sm8650", "- sm8650"},
		},
		{
			name:     "bare htp_soc followed by another flag",
			args:     []string{"-l", "-r", "dsp"},
			contains: []string{"runtime: dsp", "htpSoc: sm8550", "- sm8550"},
		},
		{
			name:        "htp_soc value with equals",
			args:        []string{"--runtime=all", "--htp_soc=sm8650"},
			contains:    []string{"runtime: all", "- sm8650"},
			notContains: []string{"--enable_hta"},
		},
		{
			name:        "aip enables hta",
			args:        []string{"-r", "aip"},
			contains:    []string{"snpe-dlc-quantize", "--enable_hta"},
			notContains: []string{"--enable_htp"},
		},
		{
			name:        "dsp without soc quantizes with no accelerator flag",
			args:        []string{"-r", "dsp"},
			contains:    []string{"snpe-dlc-quantize"},
			notContains: []string{"--enable_htp", "--enable_hta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
			isolate(t, layout.SDKRoot)

			res := execute(t, append([]string{"--dry-run", "--log-format", "json"}, tt.args...)...)

			require.Equal(t, 0, res.code, res.stderr)
			assert.Contains(t, res.stdout, "sdkRoot: "+layout.SDKRoot)
			assert.Contains(t, res.stdout, "create_mobilenetv3_mini_raws.py")
			for _, want := range tt.contains {
				assert.Contains(t, res.stdout, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, res.stdout, unwanted)
			}
			assert.NoDirExists(t, layout.DataDir())
			assert.NoDirExists(t, layout.DLCDir())
		})
	}
}

func TestNormalizeSoCArgs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"-l"}, []string{"-l"}},
		{[]string{"-l", "sm8650"}, []string{"--htp_soc=sm8650"}},
		{[]string{"--htp_soc", "sm8650", "-r", "dsp"}, []string{"--htp_soc=sm8650", "-r", "dsp"}},
		{[]string{"-lsm8650"}, []string{"--htp_soc=sm8650"}},
		{[]string{"-l=sm8650"}, []string{"-l=sm8650"}},
		{[]string{"-l", "-r", "dsp"}, []string{"-l", "-r", "dsp"}},
		{[]string{"--htp_soc=sm8550", "extra"}, []string{"--htp_soc=sm8550", "extra"}},
		{[]string{"--", "-l", "x"}, []string{"--", "-l", "x"}},
		{[]string{"--log-format", "json"}, []string{"--log-format", "json"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeSoCArgs(tt.in), "%v", tt.in)
	}
}

func TestRun_ToolOverridesFromEnvironment(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	isolate(t, layout.SDKRoot)
	t.Setenv("SNPEPREP_TOOLS_PYTHON", "python3")

	res := execute(t, "--dry-run")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "name: python3")
}

func TestRun_ConfigFile(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	isolate(t, layout.SDKRoot)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("runtime: aip\ntools:\n  quantizer: my-quantize\n"), 0o600))

	res := execute(t, "--dry-run", "--config", cfgPath)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "runtime: aip")
	assert.Contains(t, res.stdout, "name: my-quantize")
}

func TestRun_FlagOverridesConfigFile(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	isolate(t, layout.SDKRoot)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("runtime: aip\n"), 0o600))

	res := execute(t, "--dry-run", "--config", cfgPath, "-r", "gpu")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "runtime: gpu")
}

func TestRun_MissingExplicitConfigFile(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	isolate(t, layout.SDKRoot)

	res := execute(t, "--dry-run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR: failed to read config file")
}

func TestRun_InvalidLogFormat(t *testing.T) {
	layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
	isolate(t, layout.SDKRoot)

	res := execute(t, "--dry-run", "--log-format", "xml")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ERROR: xml not a valid log format")
}

func TestRun_WithTools(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses the true and false executables")
	}

	t.Run("successful tools", func(t *testing.T) {
		layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
		isolate(t, layout.SDKRoot)
		t.Setenv("SNPEPREP_TOOLS_PYTHON", "true")
		t.Setenv("SNPEPREP_TOOLS_CONVERTER", "true")
		t.Setenv("SNPEPREP_TOOLS_QUANTIZER", "true")

		res := execute(t, "-r", "dsp", "--log-format", "json")

		require.Equal(t, 0, res.code, res.stderr)
		assert.FileExists(t, filepath.Join(layout.DataDir(), "chairs.jpg"))
		assert.FileExists(t, filepath.Join(layout.DataDir(), domain.LabelsFilename))
		assert.DirExists(t, layout.CroppedDir())
		assert.DirExists(t, layout.DLCDir())
		assert.Contains(t, res.stderr, "Setup mobilenet v3 mini completed")
	})

	t.Run("failing tools", func(t *testing.T) {
		layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
		isolate(t, layout.SDKRoot)
		t.Setenv("SNPEPREP_TOOLS_PYTHON", "false")
		t.Setenv("SNPEPREP_TOOLS_CONVERTER", "false")
		t.Setenv("SNPEPREP_TOOLS_QUANTIZER", "false")

		res := execute(t, "-r", "dsp", "--log-format", "json")

		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "ERROR: 5 external tool invocation(s) failed")
		assert.DirExists(t, layout.DLCDir())
	})

	t.Run("ignored tool failures", func(t *testing.T) {
		layout := testutil.NewSDKTree(t, testutil.DefaultSDKTree())
		isolate(t, layout.SDKRoot)
		t.Setenv("SNPEPREP_TOOLS_PYTHON", "false")
		t.Setenv("SNPEPREP_TOOLS_CONVERTER", "false")
		t.Setenv("SNPEPREP_TOOLS_QUANTIZER", "false")

		res := execute(t, "-r", "dsp", "--ignore-tool-errors", "--log-format", "json")

		assert.Equal(t, 0, res.code, res.stderr)
		assert.NotContains(t, res.stderr, "ERROR:")
	})
}
