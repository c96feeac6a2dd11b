package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
)

// noSelection stands in for the empty species and tissue choice.
const noSelection = "(no selection)"

// VocabularyView lists the selectable categories of one medium.
type VocabularyView struct {
	Medium    string   `json:"medium" yaml:"medium"`
	Compounds []string `json:"compounds" yaml:"compounds"`
	Species   []string `json:"species" yaml:"species"`
	Tissues   []string `json:"tissues" yaml:"tissues"`
}

// RenderText prints one block per category.
func (v *VocabularyView) RenderText(bool) string {
	var sb strings.Builder
	sb.WriteString("Medium: " + v.Medium + "\n")
	writeSection(&sb, "Compounds", v.Compounds)
	writeSection(&sb, "Species", v.Species)
	writeSection(&sb, "Tissues", v.Tissues)
	return sb.String()
}

func writeSection(sb *strings.Builder, title string, labels []string) {
	sb.WriteString("\n" + title + ":\n")
	for _, l := range labels {
		sb.WriteString("  " + displayLabel(l) + "\n")
	}
}

func displayLabel(l string) string {
	if l == "" {
		return noSelection
	}
	return l
}

// TableHeaders implements the table output.
func (v *VocabularyView) TableHeaders() []string { return []string{"CATEGORY", "LABEL"} }

// TableRows implements the table output.
func (v *VocabularyView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Compounds)+len(v.Species)+len(v.Tissues))
	add := func(category string, labels []string) {
		for _, l := range labels {
			rows = append(rows, []string{category, displayLabel(l)})
		}
	}
	add("compound", v.Compounds)
	add("species", v.Species)
	add("tissue", v.Tissues)
	return rows
}

// NewVocabularyCmd creates the vocabulary command.
func NewVocabularyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "vocabulary <aquatic|soil>",
		Aliases:   []string{"vocab"},
		Short:     "List the compounds, species and tissues a medium accepts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{exposure.MediumAquatic.String(), exposure.MediumSoil.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			medium, err := exposure.ParseMedium(args[0])
			if err != nil {
				return err
			}

			if cliCtx.Remote() {
				ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
				defer cancel()
				v, err := cliCtx.Client.Vocabularies().Get(ctx, medium.String())
				if err != nil {
					return err
				}
				return PrintResult(cmd, &VocabularyView{Medium: v.Medium, Compounds: v.Compounds, Species: v.Species, Tissues: v.Tissues})
			}

			v := exposure.VocabularyFor(medium)
			return PrintResult(cmd, &VocabularyView{Medium: medium.String(), Compounds: v.Compounds, Species: v.Species, Tissues: v.Tissues})
		},
	}
}

//Personal.AI order the ending
