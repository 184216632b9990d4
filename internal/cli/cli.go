package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/studiowebux/restsynth/internal/auth"
	"github.com/studiowebux/restsynth/internal/builder"
	"github.com/studiowebux/restsynth/internal/config"
	"github.com/studiowebux/restsynth/internal/executor"
	"github.com/studiowebux/restsynth/internal/filter"
	"github.com/studiowebux/restsynth/internal/history"
	"github.com/studiowebux/restsynth/internal/openapi"
	"github.com/studiowebux/restsynth/internal/parser"
	"github.com/studiowebux/restsynth/internal/types"
)

// App carries the collaborators shared by every command
type App struct {
	Settings config.Settings
	Store    *config.Store

	// HistoryPath is the SQLite database; empty disables history
	HistoryPath string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive enables prompting for missing variables on Stdin
	Interactive bool

	// HTTPClient overrides the client built from the execution options
	HTTPClient *http.Client

	// CopyToClipboard defaults to clipboard.WriteAll
	CopyToClipboard func(string) error

	stdinReader *bufio.Reader
}

// input returns a reader over Stdin shared by every prompt
func (a *App) input() *bufio.Reader {
	if a.stdinReader == nil {
		in := a.Stdin
		if in == nil {
			in = os.Stdin
		}
		a.stdinReader = bufio.NewReader(in)
	}
	return a.stdinReader
}

// NewApp returns an App writing to the process streams
func NewApp(settings config.Settings, store *config.Store) *App {
	return &App{
		Settings:        settings,
		Store:           store,
		HistoryPath:     config.DatabasePath,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Interactive:     isInteractive(),
		CopyToClipboard: clipboard.WriteAll,
	}
}

// VarOptions select the variable sources of a command. Later sources win:
// environment variables file, then VarsFile, then Extra key=value pairs.
type VarOptions struct {
	Env      string
	VarsFile string
	Extra    []string
}

// OutputOptions control how a synthesized request is executed and shown
type OutputOptions struct {
	Format    string // text, json, yaml or body
	Filter    string // JMESPath expression applied to the response body
	SavePath  string
	Full      bool
	DryRun    bool
	Copy      bool
	Timeout   time.Duration
	Insecure  bool
	NoHistory bool

	// Client certificate and trust files
	CertFile string
	KeyFile  string
	CAFile   string
}

// session is the resolved context of one command run
type session struct {
	env  *types.EnvironmentConfig
	vars types.Vars
}

func (s *session) envName() string {
	if s.env == nil {
		return ""
	}
	return s.env.Name
}

func (s *session) defaultAuth() *types.AuthConfig {
	if s.env == nil {
		return nil
	}
	return s.env.DefaultAuth
}

// openSession loads the selected environment and merges the variable sources
func (a *App) openSession(opts VarOptions) (*session, error) {
	s := &session{vars: types.Vars{}}

	env, err := a.selectEnvironment(opts.Env)
	if err != nil {
		return nil, err
	}
	if env != nil {
		s.env = env
		envVars, err := config.LoadVariables(env.VarsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load variables of environment %s: %w", env.Name, err)
		}
		s.vars = s.vars.Merge(envVars)
	}

	if opts.VarsFile != "" {
		fileVars, err := config.LoadVariables(opts.VarsFile)
		if err != nil {
			return nil, err
		}
		s.vars = s.vars.Merge(fileVars)
	}

	s.vars = s.vars.Merge(ParseExtraVars(opts.Extra))
	return s, nil
}

// selectEnvironment returns the named environment, or the configured
// default one. A missing default is reported as a warning only.
func (a *App) selectEnvironment(name string) (*types.EnvironmentConfig, error) {
	if a.Store == nil {
		return nil, nil
	}
	if name != "" {
		return a.Store.Get(name)
	}

	name = a.Settings.DefaultEnv
	if name == "" {
		current, err := a.Store.Current()
		if err != nil {
			return nil, err
		}
		name = current
	}
	if name == "" {
		return nil, nil
	}

	env, err := a.Store.Get(name)
	if err != nil {
		if errors.Is(err, config.ErrEnvironmentNotFound) {
			fmt.Fprintf(a.Stderr, "Warning: default environment %q not found\n", name)
			return nil, nil
		}
		return nil, err
	}
	return env, nil
}

// ParseExtraVars turns key=value pairs into variables. A bare key sets an
// empty value. A later pair replaces an earlier one differing only in case.
func ParseExtraVars(pairs []string) types.Vars {
	vars := types.Vars{}
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		if key = strings.TrimSpace(key); key != "" {
			vars.Set(key, value)
		}
	}
	return vars
}

// synthesize builds the final request, prompting for missing variables
// when running interactively, and adds the Authorization header. Every
// missing name of the request and of its auth templates is reported before
// a token endpoint is contacted.
func (a *App) synthesize(ctx context.Context, s *session, opts types.RequestOptions, authCfg types.AuthConfig) (types.RequestData, error) {
	effective := auth.Effective(authCfg, s.defaultAuth())

	b := builder.New(nil)
	var data types.RequestData
	_, err := a.withPrompt(s, func() (string, error) {
		if missing := missingVariables(opts, effective, s.vars); len(missing) > 0 {
			return "", types.NewMissingVariableError(missing...)
		}
		var err error
		data, err = b.Build(opts, expandValues(s.vars))
		return "", err
	})
	if err != nil {
		return types.RequestData{}, err
	}

	header, ok, err := auth.Header(ctx, effective, s.vars)
	if err != nil {
		return types.RequestData{}, fmt.Errorf("failed to resolve auth: %w", err)
	}
	if ok {
		data.Headers = append(data.Headers, header)
	}
	return data, nil
}

// missingVariables lists the unresolved names of the request templates, of
// the values those templates reference, and of the auth templates
func missingVariables(opts types.RequestOptions, authCfg types.AuthConfig, vars types.Vars) []string {
	missing := builder.MissingVariables(opts, vars)
	for _, name := range referencedVariables(opts) {
		if value, ok := vars.Lookup(name); ok {
			missing = append(missing, parser.FindMissing(value, vars)...)
		}
	}
	missing = append(missing, auth.MissingVariables(authCfg, vars)...)
	if len(missing) == 0 {
		return nil
	}
	return types.NewMissingVariableError(missing...).Names
}

// referencedVariables returns the names used by the URL, the body and the
// fragment values of opts
func referencedVariables(opts types.RequestOptions) []string {
	names := parser.ExtractVariableNames(opts.URL)
	names = append(names, parser.ExtractVariableNames(opts.Body)...)
	for _, fragment := range opts.QueryParameters {
		if _, value, ok := parser.SplitFragment(fragment, "="); ok {
			names = append(names, parser.ExtractVariableNames(value)...)
		}
	}
	for _, fragment := range opts.Headers {
		if _, value, ok := parser.SplitFragment(fragment, ":"); ok {
			names = append(names, parser.ExtractVariableNames(value)...)
		}
	}
	return names
}

// expandValues resolves the placeholders inside variable values against the
// same map, once. A catalog baseUrl such as https://{{env}}.shop.io picks up
// the server variables this way.
func expandValues(vars types.Vars) types.Vars {
	expanded := make(types.Vars, len(vars))
	for key, value := range vars {
		expanded[key] = parser.Substitute(value, vars)
	}
	return expanded
}

// withPrompt runs fn and, if it fails on missing variables in interactive
// mode, asks for each of them and runs fn once more
func (a *App) withPrompt(s *session, fn func() (string, error)) (string, error) {
	out, err := fn()
	var missing *types.MissingVariableError
	if err == nil || !a.Interactive || !errors.As(err, &missing) {
		return out, err
	}

	for _, name := range missing.Names {
		value, perr := promptForVariable(a.input(), a.Stderr, name)
		if perr != nil {
			return "", fmt.Errorf("failed to read input for '%s': %w", name, perr)
		}
		s.vars = s.vars.Merge(types.Vars{name: value})
	}
	return fn()
}

// dispatch prints, copies or executes a synthesized request
func (a *App) dispatch(ctx context.Context, s *session, requestName string, data types.RequestData, out OutputOptions) error {
	if out.Filter != "" && !filter.IsValidJMESPath(out.Filter) {
		return fmt.Errorf("invalid filter expression: %s", out.Filter)
	}

	if out.Copy {
		if err := a.CopyToClipboard(ToCurl(data)); err != nil {
			fmt.Fprintf(a.Stderr, "Warning: failed to copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(a.Stderr, "Copied curl command to clipboard")
		}
	}

	format, err := a.outputFormat(out.Format)
	if err != nil {
		return err
	}

	if out.DryRun {
		text, err := formatRequest(data, format)
		if err != nil {
			return fmt.Errorf("failed to format request: %w", err)
		}
		return a.emit(text, out.SavePath)
	}

	timeout := out.Timeout
	if timeout == 0 {
		timeout = a.Settings.Timeout
	}
	opts := executor.Options{Timeout: timeout, Client: a.HTTPClient}
	if out.Insecure || out.CertFile != "" || out.CAFile != "" {
		opts.TLS = &executor.TLSConfig{
			CertFile:           out.CertFile,
			KeyFile:            out.KeyFile,
			CAFile:             out.CAFile,
			InsecureSkipVerify: out.Insecure,
		}
	}

	result, err := executor.Execute(ctx, data, opts)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	if a.Settings.History && !out.NoHistory && a.HistoryPath != "" {
		a.saveHistory(s, requestName, data, result)
	}

	if out.Filter != "" && result.Error == "" {
		filtered, err := filter.Apply(result.Body, out.Filter)
		if err != nil {
			fmt.Fprintf(a.Stderr, "Warning: filter error: %v\n", err)
		} else {
			result.Body = filtered
		}
	}

	text, err := formatOutput(result, format, out.Full)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if err := a.emit(text, out.SavePath); err != nil {
		return err
	}

	if result.Error != "" {
		return &RequestFailedError{Reason: result.Error}
	}
	if result.Status >= 400 {
		return &RequestFailedError{Status: result.Status}
	}
	return nil
}

func (a *App) saveHistory(s *session, requestName string, data types.RequestData, result *types.RequestResult) {
	mgr, err := history.NewManager(a.HistoryPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Warning: failed to open history: %v\n", err)
		return
	}
	defer mgr.Close()

	if _, err := mgr.Save(s.envName(), requestName, data, result); err != nil {
		fmt.Fprintf(a.Stderr, "Warning: failed to save history: %v\n", err)
	}
}

func (a *App) outputFormat(flag string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" {
		format = a.Settings.Output
	}
	if format == "" {
		format = config.OutputText
	}
	return format, config.ValidateOutput(format)
}

func (a *App) emit(text, savePath string) error {
	if savePath != "" {
		if err := os.WriteFile(savePath, []byte(text), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Fprintf(a.Stderr, "Output saved to %s\n", savePath)
		return nil
	}
	_, err := io.WriteString(a.Stdout, text)
	return err
}

var errNoEnvironment = errors.New("no environment selected (use --env or 'env use')")

// RequestFailedError reports a transport failure or an error status. The
// response has already been printed when it is returned.
type RequestFailedError struct {
	Status int
	Reason string
}

func (e *RequestFailedError) Error() string {
	if e.Reason != "" {
		return "request failed: " + e.Reason
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// AdHocOptions describe a request given on the command line
type AdHocOptions struct {
	Method  string
	URL     string
	Body    string
	Query   []string
	Headers []string
	Auth    types.AuthConfig
}

// RunRequest synthesizes and executes an ad-hoc request
func (a *App) RunRequest(ctx context.Context, req AdHocOptions, vars VarOptions, out OutputOptions) error {
	s, err := a.openSession(vars)
	if err != nil {
		return err
	}

	opts := types.RequestOptions{
		Method:          req.Method,
		URL:             req.URL,
		Body:            req.Body,
		QueryParameters: req.Query,
		Headers:         req.Headers,
	}
	data, err := a.synthesize(ctx, s, opts, req.Auth)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, s, "", data, out)
}

// OpenAPIOptions select an operation of an OpenAPI document
type OpenAPIOptions struct {
	Source    *types.OpenAPISource // nil uses the environment default
	Operation string
	Query     []string // extra query fragments
	Headers   []string // extra header fragments
	Strict    bool
}

// RunOpenAPI derives a request from an OpenAPI operation and executes it
func (a *App) RunOpenAPI(ctx context.Context, req OpenAPIOptions, vars VarOptions, out OutputOptions) error {
	s, err := a.openSession(vars)
	if err != nil {
		return err
	}

	doc, err := a.loadDocument(ctx, s, req.Source, req.Strict)
	if err != nil {
		return err
	}

	var opts types.RequestOptions
	_, err = a.withPrompt(s, func() (string, error) {
		var err error
		opts, err = openapi.BuildRequest(doc, req.Operation, s.vars)
		return "", err
	})
	if err != nil {
		return err
	}
	opts.QueryParameters = append(opts.QueryParameters, req.Query...)
	opts.Headers = append(opts.Headers, req.Headers...)

	data, err := a.synthesize(ctx, s, opts, types.AuthConfig{Method: types.AuthInherit})
	if err != nil {
		return err
	}
	return a.dispatch(ctx, s, req.Operation, data, out)
}

// loadDocument loads src, or the default spec of the session environment
func (a *App) loadDocument(ctx context.Context, s *session, src *types.OpenAPISource, strict bool) (*openapi.Document, error) {
	if src == nil && s.env != nil {
		src = s.env.DefaultSpec
	}
	if src == nil {
		return nil, errors.New("no OpenAPI source given and the environment has no default spec")
	}

	loader := &openapi.Loader{HTTPClient: a.HTTPClient, Strict: strict}
	doc, err := loader.Load(ctx, *src)
	if err != nil {
		return nil, err
	}
	for _, warning := range doc.Warnings {
		slog.Debug("OpenAPI document warning", "warning", warning)
	}
	return doc, nil
}

// RunSaved executes a request stored in an environment
func (a *App) RunSaved(ctx context.Context, name string, vars VarOptions, out OutputOptions) error {
	s, err := a.openSession(vars)
	if err != nil {
		return err
	}
	if s.env == nil {
		return errNoEnvironment
	}

	def, ok := s.env.FindRequest(name)
	if !ok {
		return fmt.Errorf("request %q not found in environment %s", name, s.env.Name)
	}

	data, err := a.synthesize(ctx, s, def.Options(), def.Auth)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, s, def.Name, data, out)
}
