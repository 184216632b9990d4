// Package auth turns a request's auth policy into an Authorization header.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/studiowebux/restsynth/internal/parser"
	"github.com/studiowebux/restsynth/internal/types"
)

// HeaderName is the header every auth method writes
const HeaderName = "Authorization"

// Effective resolves the inherit method against the environment default.
// A request without an environment default gets no auth.
func Effective(cfg types.AuthConfig, envDefault *types.AuthConfig) types.AuthConfig {
	if cfg.Method != types.AuthInherit && cfg.Method != "" {
		return cfg
	}
	if envDefault != nil && envDefault.Method != types.AuthInherit && envDefault.Method != "" {
		return *envDefault
	}
	return types.AuthConfig{Method: types.AuthNone}
}

// Header returns the resolved Authorization header for cfg. ok is false
// when cfg needs none. Every credential field is a template resolved against
// vars. The oauth2 method fetches a token with the client credentials grant,
// or the password grant when a username is set.
func Header(ctx context.Context, cfg types.AuthConfig, vars types.Vars) (header types.KeyValue, ok bool, err error) {
	var value string
	switch cfg.Method {
	case types.AuthNone, types.AuthInherit, "":
		return types.KeyValue{}, false, nil

	case types.AuthBasic:
		user, err := resolve(vars, "username", cfg.Username, true)
		if err != nil {
			return types.KeyValue{}, false, err
		}
		pass, err := resolve(vars, "password", cfg.Password, false)
		if err != nil {
			return types.KeyValue{}, false, err
		}
		value = "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))

	case types.AuthBearer:
		token, err := resolve(vars, "token", cfg.Token, true)
		if err != nil {
			return types.KeyValue{}, false, err
		}
		value = "Bearer " + token

	case types.AuthOAuth2:
		token, err := fetchToken(ctx, cfg, vars)
		if err != nil {
			return types.KeyValue{}, false, err
		}
		value = token.Type() + " " + token.AccessToken

	default:
		return types.KeyValue{}, false, fmt.Errorf("unsupported auth method: %s", cfg.Method)
	}

	return types.KeyValue{Key: HeaderName, Value: value}, true, nil
}

// MissingVariables returns the placeholder names of the credential templates
// cfg uses that vars does not define. It never contacts a token endpoint.
func MissingVariables(cfg types.AuthConfig, vars types.Vars) []string {
	var templates []string
	switch cfg.Method {
	case types.AuthBasic:
		templates = []string{cfg.Username, cfg.Password}
	case types.AuthBearer:
		templates = []string{cfg.Token}
	case types.AuthOAuth2:
		templates = append([]string{cfg.TokenURL, cfg.ClientID, cfg.ClientSecret}, cfg.Scopes...)
		if cfg.Username != "" {
			templates = append(templates, cfg.Username, cfg.Password)
		}
	}

	var missing []string
	for _, template := range templates {
		missing = append(missing, parser.FindMissing(template, vars)...)
	}
	if len(missing) == 0 {
		return nil
	}
	return types.NewMissingVariableError(missing...).Names
}

func fetchToken(ctx context.Context, cfg types.AuthConfig, vars types.Vars) (*oauth2.Token, error) {
	tokenURL, err := resolve(vars, "tokenUrl", cfg.TokenURL, true)
	if err != nil {
		return nil, err
	}
	clientID, err := resolve(vars, "clientId", cfg.ClientID, true)
	if err != nil {
		return nil, err
	}
	secret, err := resolve(vars, "clientSecret", cfg.ClientSecret, false)
	if err != nil {
		return nil, err
	}

	scopes := make([]string, 0, len(cfg.Scopes))
	for _, scope := range cfg.Scopes {
		resolved, err := parser.SubstituteOrFail(scope, vars)
		if err != nil {
			return nil, err
		}
		if resolved = strings.TrimSpace(resolved); resolved != "" {
			scopes = append(scopes, resolved)
		}
	}

	if cfg.Username != "" {
		user, err := resolve(vars, "username", cfg.Username, true)
		if err != nil {
			return nil, err
		}
		pass, err := resolve(vars, "password", cfg.Password, false)
		if err != nil {
			return nil, err
		}

		conf := oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
			Scopes:       scopes,
		}
		slog.Debug("requesting oauth2 token", "grant", "password", "tokenUrl", tokenURL)
		token, err := conf.PasswordCredentialsToken(ctx, user, pass)
		if err != nil {
			return nil, fmt.Errorf("oauth2 password flow failed: %w", err)
		}
		return token, nil
	}

	conf := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	slog.Debug("requesting oauth2 token", "grant", "client_credentials", "tokenUrl", tokenURL)
	token, err := conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("oauth2 client_credentials flow failed: %w", err)
	}
	return token, nil
}

// resolve substitutes a credential template. Required fields must not be
// blank after substitution.
func resolve(vars types.Vars, field, template string, required bool) (string, error) {
	value, err := parser.SubstituteOrFail(template, vars)
	if err != nil {
		return "", err
	}
	if required && strings.TrimSpace(value) == "" {
		return "", errors.New("auth " + field + " is required")
	}
	return value, nil
}
