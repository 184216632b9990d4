package main

import (
	"github.com/spf13/cobra"

	"github.com/studiowebux/restsynth/internal/cli"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage named environments",
	Long: `An environment bundles a variables file, an optional default OpenAPI
document, an optional default auth policy and a list of saved requests.`,
}

var envCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an environment",
	Long: `Create an environment. The variables file given with --vars is copied
into the environment (a .env file is converted to YAML).

Examples:
  restsynth env create dev --vars dev.env --spec-url https://api.local/openapi.json --use
  restsynth env create prod --vars prod.yaml --auth bearer --auth-token '{{token}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.EnvCreateOptions{
			Name:     args[0],
			VarsPath: flagVarsFile,
			Spec:     specSource(),
			Use:      flagUse,
			Force:    flagForce,
		}
		if cmd.Flags().Changed("auth") {
			auth := authFromFlags()
			opts.Auth = &auth
		}
		return app.CreateEnv(opts)
	},
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List environments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListEnvs()
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show an environment and its variables",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ShowEnv(envArg(args), flagOutput)
	},
}

var envDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.DeleteEnv(args[0], flagYes)
	},
}

var envUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make an environment the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.UseEnv(args[0])
	},
}

var envRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Manage the saved requests of an environment",
}

var envRequestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListRequests(flagEnv)
	},
}

var envRequestExecCmd = &cobra.Command{
	Use:   "exec <name>",
	Short: "Synthesize and execute a saved request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunSaved(cmd.Context(), args[0], varOptions(), outputOptions())
	},
}

var envRequestImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import request definitions from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ImportRequests(cmd.Context(), flagEnv, args[0])
	},
}

var envRequestRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RemoveRequest(flagEnv, args[0])
	},
}

// Environment flags
var (
	flagUse   bool
	flagForce bool
	flagYes   bool
)

func init() {
	envCreateCmd.Flags().BoolVar(&flagUse, "use", false, "Make the new environment current")
	envCreateCmd.Flags().BoolVar(&flagForce, "force", false, "Replace an existing environment")
	addSpecFlags(envCreateCmd)
	addAuthFlags(envCreateCmd)

	envShowCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
	envDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
	addOutputFlags(envRequestExecCmd)

	envRequestCmd.AddCommand(envRequestListCmd)
	envRequestCmd.AddCommand(envRequestExecCmd)
	envRequestCmd.AddCommand(envRequestImportCmd)
	envRequestCmd.AddCommand(envRequestRemoveCmd)

	envCmd.AddCommand(envCreateCmd)
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envDeleteCmd)
	envCmd.AddCommand(envUseCmd)
	envCmd.AddCommand(envRequestCmd)
}

// envArg returns the positional environment name, falling back to --env
func envArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return flagEnv
}
