package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/attnviz/internal/attention"
)

var weightsCmd = &cobra.Command{
	Use:   "weights [tokens...]",
	Short: "Print a head's attention matrix as a shaded table",
	Long: `Prints the synthetic attention weights of one head. Rows are query tokens,
columns are key tokens, and each row sums to one. Brighter cells carry more
weight; the strongest key of every row is underlined.`,
	RunE: runWeights,
}

func init() {
	weightsCmd.Flags().Int("head", 0, "head index")
	weightsCmd.Flags().Int64("seed", 0, "noise seed (defaults to config seed)")
	rootCmd.AddCommand(weightsCmd)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	titleStyle  = lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder(), false, false, true, false)
)

func runWeights(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	head, _ := cmd.Flags().GetInt("head")
	if head < 0 {
		return fmt.Errorf("head must be non-negative, got %d", head)
	}
	seed := cfg.Seed
	if s, _ := cmd.Flags().GetInt64("seed"); s != 0 {
		seed = s
	}
	tokens := cfg.Tokens
	if t := splitTokens(args); len(t) > 0 {
		tokens = t
	}

	m := attention.NewModel(head+1, len(tokens), attention.NewSource(seed))
	h, _ := m.Head(head)
	fmt.Println(renderWeights(h, tokens))
	return nil
}

// renderWeights lays the matrix out with one column per key token.
func renderWeights(h attention.Head, tokens []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Head %d: %s", h.Index, h.Pattern)))
	b.WriteString("\n")
	if len(tokens) == 0 {
		b.WriteString("(no tokens)")
		return b.String()
	}

	width := 6
	for _, t := range tokens {
		width = max(width, lipgloss.Width(t))
	}
	label := labelStyle.Width(width + 2)
	cell := cellStyle.Width(width + 2)

	row := []string{label.Render("")}
	for _, t := range tokens {
		row = append(row, headerStyle.Width(width+2).Render(t))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
	b.WriteString("\n")

	for i, weights := range h.Weights {
		best := h.Weights.Argmax(i)
		row := []string{label.Render(tokens[i])}
		for j, w := range weights {
			style := cell.Foreground(shade(w))
			if j == best {
				style = style.Underline(true)
			}
			row = append(row, style.Render(fmt.Sprintf("%.3f", w)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// shade maps a weight in [0,1] to a grey ramp.
func shade(w float64) lipgloss.Color {
	level := 0x55 + int(w*float64(0xff-0x55))
	if level > 0xff {
		level = 0xff
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", level, level, level))
}
