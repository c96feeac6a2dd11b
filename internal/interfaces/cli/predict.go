package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ecowarn/internal/app"
	"github.com/turtacn/ecowarn/internal/application/assessment"
	"github.com/turtacn/ecowarn/internal/config"
	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/pkg/client"
)

const (
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiReset = "\033[0m"
)

// PredictionView is what predict prints, whichever path produced it.
type PredictionView struct {
	RequestID    string       `json:"request_id" yaml:"request_id"`
	Medium       string       `json:"medium" yaml:"medium"`
	Compound     string       `json:"compound" yaml:"compound"`
	Species      string       `json:"species,omitempty" yaml:"species,omitempty"`
	Tissue       string       `json:"tissue,omitempty" yaml:"tissue,omitempty"`
	MDA          EndpointView `json:"mda" yaml:"mda"`
	ROS          EndpointView `json:"ros" yaml:"ros"`
	Verdict      string       `json:"verdict" yaml:"verdict"`
	VerdictLabel string       `json:"verdict_label" yaml:"verdict_label"`
	DurationMs   float64      `json:"duration_ms" yaml:"duration_ms"`
	Cached       bool         `json:"cached" yaml:"cached"`
	Source       string       `json:"source" yaml:"source"`

	verbose bool
}

// EndpointView is one endpoint class and its label.
type EndpointView struct {
	Class int    `json:"class" yaml:"class"`
	Label string `json:"label" yaml:"label"`
}

// PotentialRisk reports whether the verdict warns.
func (v *PredictionView) PotentialRisk() bool {
	return v.Verdict == exposure.VerdictPotentialRisk.String()
}

// RenderText prints the two endpoint lines and the coloured verdict.
func (v *PredictionView) RenderText(color bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "MDA: %d (%s)  key: (%s)\n", v.MDA.Class, v.MDA.Label, exposure.EndpointMDA.Legend())
	fmt.Fprintf(&sb, "ROS: %d (%s)  key: (%s)\n", v.ROS.Class, v.ROS.Label, exposure.EndpointROS.Legend())

	verdict := v.VerdictLabel
	if color {
		c := ansiGreen
		if v.PotentialRisk() {
			c = ansiRed
		}
		verdict = c + verdict + ansiReset
	}
	fmt.Fprintf(&sb, "Early Warning Result: %s\n", verdict)

	if v.verbose {
		fmt.Fprintf(&sb, "\nrequest_id:  %s\n", v.RequestID)
		fmt.Fprintf(&sb, "source:      %s\n", v.Source)
		fmt.Fprintf(&sb, "duration_ms: %.3f\n", v.DurationMs)
		fmt.Fprintf(&sb, "cached:      %t\n", v.Cached)
	}
	return sb.String()
}

// TableHeaders implements the table output.
func (v *PredictionView) TableHeaders() []string {
	return []string{"ENDPOINT", "CLASS", "LABEL"}
}

// TableRows implements the table output.
func (v *PredictionView) TableRows() [][]string {
	return [][]string{
		{"MDA", fmt.Sprint(v.MDA.Class), v.MDA.Label},
		{"ROS", fmt.Sprint(v.ROS.Class), v.ROS.Label},
		{"VERDICT", "", v.VerdictLabel},
	}
}

func viewFromResult(res *assessment.Result) *PredictionView {
	return &PredictionView{
		RequestID:    res.RequestID,
		Medium:       res.Scenario.Medium.String(),
		Compound:     res.Scenario.Compound,
		Species:      res.Scenario.Species,
		Tissue:       res.Scenario.Tissue,
		MDA:          EndpointView{Class: res.MDA.Class, Label: res.MDA.Label},
		ROS:          EndpointView{Class: res.ROS.Class, Label: res.ROS.Label},
		Verdict:      res.Verdict.String(),
		VerdictLabel: res.VerdictLabel,
		DurationMs:   res.DurationMs,
		Cached:       res.Cached,
		Source:       "local",
	}
}

func viewFromRemote(res *client.PredictionResult, server string) *PredictionView {
	return &PredictionView{
		RequestID:    res.RequestID,
		Medium:       res.Scenario.Medium,
		Compound:     res.Scenario.Compound,
		Species:      res.Scenario.Species,
		Tissue:       res.Scenario.Tissue,
		MDA:          EndpointView{Class: res.MDA.Class, Label: res.MDA.Label},
		ROS:          EndpointView{Class: res.ROS.Class, Label: res.ROS.Label},
		Verdict:      res.Verdict,
		VerdictLabel: res.VerdictLabel,
		DurationMs:   res.DurationMs,
		Cached:       res.Cached,
		Source:       server,
	}
}

type predictOptions struct {
	input        exposure.ScenarioInput
	referenceDir string
	format       string
}

// NewPredictCmd creates the predict command.
func NewPredictCmd() *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the early-warning verdict of an exposure scenario",
		Long: "Encode the scenario against the reference tables of the medium, train the\n" +
			"MDA and ROS classifiers and report both classes with the combined verdict.\n" +
			"Categories use the full column names shown by 'ecowarn vocabulary'.",
		Example: "  ecowarn predict --medium aquatic --compound Compounds_Tebuconazole \\\n" +
			"    --concentration 12.5 --exposure-time 3 --tissue Tissues_Gill",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runPredict(cmd, cliCtx, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input.Medium, "medium", "", "medium: aquatic or soil [REQUIRED]")
	f.StringVar(&opts.input.Compound, "compound", "", "compound column name [REQUIRED]")
	f.StringVar(&opts.input.Concentration, "concentration", "", "exposure concentration [REQUIRED]")
	f.StringVar(&opts.input.ExposureTime, "exposure-time", "", "exposure time [REQUIRED]")
	f.StringVar(&opts.input.Species, "species", "", "species column name")
	f.StringVar(&opts.input.Tissue, "tissue", "", "tissue column name")
	f.StringVar(&opts.referenceDir, "reference-dir", "", "directory of reference tables (overrides config)")
	f.StringVar(&opts.format, "reference-format", "", "reference table format: xlsx or csv (overrides config)")
	_ = cmd.MarkFlagRequired("medium")
	_ = cmd.MarkFlagRequired("compound")

	return cmd
}

func runPredict(cmd *cobra.Command, cliCtx *CLIContext, opts *predictOptions) error {
	scenario, err := exposure.ParseScenario(opts.input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	var view *PredictionView
	if cliCtx.Remote() {
		res, err := cliCtx.Client.Predictions().Create(ctx, &client.PredictionRequest{
			Medium:        scenario.Medium.String(),
			Compound:      scenario.Compound,
			Concentration: scenario.Concentration,
			ExposureTime:  scenario.ExposureTime,
			Species:       scenario.Species,
			Tissue:        scenario.Tissue,
		})
		if err != nil {
			return err
		}
		view = viewFromRemote(res, cliCtx.ServerAddr)
	} else {
		cfg := *cliCtx.Config
		if opts.referenceDir != "" {
			cfg.Reference.Source = config.SourceFilesystem
			cfg.Reference.Dir = opts.referenceDir
		}
		if opts.format != "" {
			cfg.Reference.Format = opts.format
		}
		rt, err := app.NewRuntime(&cfg, cliCtx.Logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.Service.Assess(ctx, scenario)
		if err != nil {
			return err
		}
		view = viewFromResult(res)
	}

	view.verbose = cliCtx.Verbose
	return PrintResult(cmd, view)
}

//Personal.AI order the ending
