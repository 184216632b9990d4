package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restsynth/internal/cli"
	"github.com/studiowebux/restsynth/internal/types"
)

var requestCmd = &cobra.Command{
	Use:   "request [method] <url>",
	Short: "Synthesize and execute an ad-hoc request",
	Long: `Synthesize a request from a URL template, query and header fragments and
an optional body, then execute it.

The body may be given literally or as @path to read it from a file.

Examples:
  restsynth request '{{baseUrl}}/pets/{{id}}' -e id=42
  restsynth request POST '{{baseUrl}}/pets' -d @pet.json -H 'Content-Type: application/json'
  restsynth request '{{baseUrl}}/pets' -q 'limit={{limit}}' --dry-run -o json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := cli.AdHocOptions{
			Method:  flagMethod,
			URL:     args[len(args)-1],
			Body:    flagBody,
			Query:   flagQuery,
			Headers: flagHeaders,
			Auth:    authFromFlags(),
		}
		if len(args) == 2 {
			req.Method = args[0]
		}
		return app.RunRequest(cmd.Context(), req, varOptions(), outputOptions())
	},
}

var openapiCmd = &cobra.Command{
	Use:   "openapi <operationId>",
	Short: "Derive a request from an OpenAPI operation and execute it",
	Long: `Derive a request from an operation of an OpenAPI 3 document. Without a
--spec-* flag the default spec of the environment is used.

Examples:
  restsynth openapi getPetById --spec-file petstore.yaml -e petId=1
  restsynth openapi listPets --env dev --filter 'length(@)'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := cli.OpenAPIOptions{
			Source:    specSource(),
			Operation: args[0],
			Query:     flagQuery,
			Headers:   flagHeaders,
			Strict:    flagStrict,
		}
		return app.RunOpenAPI(cmd.Context(), req, varOptions(), outputOptions())
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Derive request definitions and a variable skeleton from an OpenAPI document",
	Long: `Derive one request definition per operation and a variable skeleton.

With --out the catalog is written to a directory; with --env (and no --out)
the requests are stored in the environment and missing variables are added
to its variables file. Otherwise the catalog is printed as YAML.

Examples:
  restsynth catalog --spec-file petstore.yaml
  restsynth catalog --spec-url https://api.local/openapi.json --out ./catalog --format env
  restsynth catalog --env dev`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.CatalogOptions{
			Source: specSource(),
			OutDir: flagCatalogOut,
			Format: flagCatalogFormat,
			Strict: flagStrict,
		}
		if flagCatalogOut == "" {
			opts.Env = flagEnv
		}
		return app.RunCatalog(cmd.Context(), opts, varOptions())
	},
}

// Request flags
var (
	flagMethod  string
	flagBody    string
	flagQuery   []string
	flagHeaders []string
)

// Auth flags
var (
	flagAuth         string
	flagAuthUser     string
	flagAuthPassword string
	flagAuthToken    string
	flagTokenURL     string
	flagClientID     string
	flagClientSecret string
	flagScopes       []string
)

// OpenAPI source flags
var (
	flagSpecURL  string
	flagSpecFile string
	flagSpecRaw  string
	flagStrict   bool
)

// Catalog flags
var (
	flagCatalogOut    string
	flagCatalogFormat string
)

// Output flags
var (
	flagOutput    string
	flagFilter    string
	flagSave      string
	flagFull      bool
	flagDryRun    bool
	flagCopy      bool
	flagTimeout   time.Duration
	flagInsecure  bool
	flagNoHistory bool
	flagCertFile  string
	flagKeyFile   string
	flagCAFile    string
)

func init() {
	requestCmd.Flags().StringVarP(&flagMethod, "method", "X", "GET", "HTTP method")
	requestCmd.Flags().StringVarP(&flagBody, "body", "d", "", "Request body (literal or @file)")
	addFragmentFlags(requestCmd)
	addAuthFlags(requestCmd)
	addOutputFlags(requestCmd)

	addSpecFlags(openapiCmd)
	addFragmentFlags(openapiCmd)
	addOutputFlags(openapiCmd)

	addSpecFlags(catalogCmd)
	catalogCmd.Flags().StringVar(&flagCatalogOut, "out", "", "Write the catalog to this directory")
	catalogCmd.Flags().StringVar(&flagCatalogFormat, "format", "yaml", "Catalog file format with --out (yaml/json/env)")
}

func addFragmentFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&flagQuery, "query", "q", []string{}, "Query fragment (name=value), can be repeated")
	cmd.Flags().StringArrayVarP(&flagHeaders, "header", "H", []string{}, "Header fragment (Name: value), can be repeated")
}

func addAuthFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagAuth, "auth", "", "Auth method (inherit/none/basic/bearer/oauth2)")
	cmd.Flags().StringVar(&flagAuthUser, "auth-user", "", "Username for basic auth or the oauth2 password grant")
	cmd.Flags().StringVar(&flagAuthPassword, "auth-password", "", "Password for basic auth or the oauth2 password grant")
	cmd.Flags().StringVar(&flagAuthToken, "auth-token", "", "Bearer token")
	cmd.Flags().StringVar(&flagTokenURL, "token-url", "", "OAuth2 token endpoint")
	cmd.Flags().StringVar(&flagClientID, "client-id", "", "OAuth2 client id")
	cmd.Flags().StringVar(&flagClientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringSliceVar(&flagScopes, "scope", []string{}, "OAuth2 scope, can be repeated")
}

func addSpecFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSpecURL, "spec-url", "", "OpenAPI document URL")
	cmd.Flags().StringVar(&flagSpecFile, "spec-file", "", "OpenAPI document file")
	cmd.Flags().StringVar(&flagSpecRaw, "spec-raw", "", "OpenAPI document text")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "Reject documents with parse errors")
	cmd.MarkFlagsMutuallyExclusive("spec-url", "spec-file", "spec-raw")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml/body)")
	cmd.Flags().StringVar(&flagFilter, "filter", "", "JMESPath expression applied to the response body")
	cmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save output to file")
	cmd.Flags().BoolVarP(&flagFull, "full", "f", false, "Show full output (status, headers, body)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the synthesized request without sending it")
	cmd.Flags().BoolVar(&flagCopy, "copy", false, "Copy the request as a curl command")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout (default from settings)")
	cmd.Flags().BoolVarP(&flagInsecure, "insecure", "k", false, "Skip TLS certificate verification")
	cmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "Do not record the execution in history")
	cmd.Flags().StringVar(&flagCertFile, "cert", "", "Client certificate file (PEM)")
	cmd.Flags().StringVar(&flagKeyFile, "key", "", "Client private key file (PEM)")
	cmd.Flags().StringVar(&flagCAFile, "cacert", "", "CA certificate file (PEM)")
	cmd.MarkFlagsRequiredTogether("cert", "key")
}

func outputOptions() cli.OutputOptions {
	return cli.OutputOptions{
		Format:    flagOutput,
		Filter:    flagFilter,
		SavePath:  flagSave,
		Full:      flagFull,
		DryRun:    flagDryRun,
		Copy:      flagCopy,
		Timeout:   flagTimeout,
		Insecure:  flagInsecure,
		NoHistory: flagNoHistory,
		CertFile:  flagCertFile,
		KeyFile:   flagKeyFile,
		CAFile:    flagCAFile,
	}
}

func authFromFlags() types.AuthConfig {
	return types.AuthConfig{
		Method:       types.ParseAuthMethod(flagAuth),
		Username:     flagAuthUser,
		Password:     flagAuthPassword,
		Token:        flagAuthToken,
		TokenURL:     flagTokenURL,
		ClientID:     flagClientID,
		ClientSecret: flagClientSecret,
		Scopes:       flagScopes,
	}
}

// specSource returns the source named by the --spec-* flags, or nil
func specSource() *types.OpenAPISource {
	switch {
	case flagSpecURL != "":
		return &types.OpenAPISource{Kind: types.SourceURL, Value: flagSpecURL}
	case flagSpecFile != "":
		return &types.OpenAPISource{Kind: types.SourceFile, Value: flagSpecFile}
	case flagSpecRaw != "":
		return &types.OpenAPISource{Kind: types.SourceRaw, Value: flagSpecRaw}
	}
	return nil
}
