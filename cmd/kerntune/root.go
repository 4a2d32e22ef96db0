package main

import (
	"fmt"
	"os"

	"github.com/kerntune/kerntune/pkg/kerntune/output"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	personaFlag  string
	formatFlag   string
	categoryFlag []string
	priorityFlag string
	quiet        bool
	verbose      bool

	rootCmd = &cobra.Command{
		Use:   "kerntune",
		Short: "Analyze and tune Linux kernel parameters",
		Long: `Kerntune inspects the running system and proposes kernel parameter
changes tuned to the hardware and workload. Proposals are applied
transactionally: every applied batch is recorded with its pre-change
values and can be undone.

Running kerntune without a subcommand analyzes the system and prints
the proposals without changing anything.

Examples:
  kerntune                        # Analyze and show proposals
  kerntune --persona gamer        # Analyze with the gamer persona
  kerntune apply                  # Apply proposals (asks for confirmation)
  kerntune apply -y -o json       # Apply without prompting, JSON output
  kerntune undo                   # Undo the most recent transaction
  kerntune history                # Show recorded transactions
  kerntune reset -y               # Revert everything kerntune applied`,
		Args:          cobra.NoArgs,
		RunE:          runAnalyze,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/kerntune/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&personaFlag, "persona", "p", "", "workload persona: gamer, developer, server, general")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "o", "", "output format: pretty, plain, json, yaml")
	rootCmd.PersistentFlags().StringSliceVarP(&categoryFlag, "category", "c", nil, "limit to categories (can be specified multiple times)")
	rootCmd.PersistentFlags().StringVar(&priorityFlag, "priority", "", "limit to this priority or stronger")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// runAnalyze collects a snapshot, runs the rule registry, and prints the
// resulting proposals without applying anything.
func runAnalyze(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.close()

	set := app.pipeline.Analyze(app.persona)
	proposals, err := filterProposals(set.Proposals())
	if err != nil {
		return err
	}

	doc := &output.Document{
		Persona:   string(app.persona),
		System:    output.BuildSystem(app.pipeline.Snapshot()),
		Proposals: output.BuildProposals(proposals),
	}
	return render(app.format, doc)
}

// filterProposals applies the --category and --priority flags.
func filterProposals(proposals []types.Proposal) ([]types.Proposal, error) {
	if len(categoryFlag) == 0 && priorityFlag == "" {
		return proposals, nil
	}

	categories := make(map[types.Category]bool, len(categoryFlag))
	for _, s := range categoryFlag {
		cat, err := types.ParseCategory(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --category: %w", err)
		}
		categories[cat] = true
	}

	var floor types.Priority
	if priorityFlag != "" {
		p, err := types.ParsePriority(priorityFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid --priority: %w", err)
		}
		floor = p
	}

	var kept []types.Proposal
	for _, p := range proposals {
		if len(categories) > 0 && !categories[p.Category] {
			continue
		}
		if floor != "" && p.Priority != floor && !p.Priority.StrongerThan(floor) {
			continue
		}
		kept = append(kept, p)
	}
	return kept, nil
}

// printInfo prints a message unless quiet mode is enabled.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
