package cmd

import (
	"codeassist/internal/cli"
	pkgstrings "codeassist/pkg/strings"

	"github.com/spf13/cobra"
)

var (
	modelsSet    string
	modelsSelect bool
)

// authModelsCmd lists the available models or switches the active one.
var authModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List or change the Oracle Code Assist model",
	Long: `List the models available to your account, or change the model used
for both plan and act mode. Requires a signed-in user.

Examples:
  codeassist auth models                        # List models
  codeassist auth models --select               # Pick a model interactively
  codeassist auth models --set oca/gpt-4.1      # Switch to a model`,
	RunE: runAuthModels,
}

func init() {
	authModelsCmd.Flags().StringVar(&modelsSet, "set", "", "Model id to switch to")
	authModelsCmd.Flags().BoolVar(&modelsSelect, "select", false, "Pick a model interactively")
	authModelsCmd.MarkFlagsMutuallyExclusive("set", "select")
}

func runAuthModels(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	env, err := newAuthEnv(ctx, cmd, modelsSelect)
	if err != nil {
		return err
	}
	defer env.Close()

	if modelsSet != "" || modelsSelect {
		return authError(env.orch.ChangeModel(ctx, modelsSet))
	}

	models, current, err := env.orch.Models(ctx)
	if err != nil {
		return authError(err)
	}

	table := cli.NewPlainTableWriter(cmd.OutOrStdout())
	table.SetHeaders("model", "context window", "max tokens", "images", "active", "description")
	for _, id := range models.IDs() {
		info := models[id]
		active := ""
		if id == current {
			active = "*"
		}
		table.AppendRow(id,
			cli.FormatTokens(info.ContextWindow),
			cli.FormatTokens(info.MaxTokens),
			cli.FormatBool(info.SupportsImages),
			active,
			pkgstrings.OneLine(info.Description, pkgstrings.DefaultMaxLen),
		)
	}
	table.Render()
	return nil
}
