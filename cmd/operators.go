package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fission-dev/fission/internal/domain/operators"
)

// operatorsCmd represents the operators command.
var operatorsCmd = newOperatorsCmd()

func newOperatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List the available mutation operators",
		Long: `Print the catalog of mutation operators together with a sample
rewrite for each, taken from the operator's self-test examples.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var buffer bytes.Buffer

			table := tablewriter.NewWriter(&buffer)
			table.SetHeader([]string{"Operator", "Sample rewrite"})
			table.SetBorder(false)
			table.SetCenterSeparator("")
			table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

			for _, name := range catalog.Names() {
				op, ok := catalog.Get(name)
				if !ok {
					continue
				}

				table.Append([]string{name, sampleRewrite(op.Examples())})
			}

			table.Render()
			cmd.Print(buffer.String())

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(operatorsCmd)
}

// sampleRewrite condenses an operator's first example into one line.
func sampleRewrite(examples []operators.Example) string {
	if len(examples) == 0 {
		return "(none)"
	}

	first := examples[0]

	return fmt.Sprintf("%s => %s", condense(first.Input), condense(first.Want))
}

func condense(snippet string) string {
	const maxWidth = 40

	flat := strings.Join(strings.Fields(snippet), " ")
	if len(flat) > maxWidth {
		flat = flat[:maxWidth-3] + "..."
	}

	return flat
}
