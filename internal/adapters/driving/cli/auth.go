package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/meetsync/internal/adapters/driven/auth"
	"github.com/custodia-labs/meetsync/internal/adapters/driving/oauth"
	"github.com/custodia-labs/meetsync/internal/connectors/google"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
)

const (
	googleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"

	// calendarScope is read-only: meetsync never writes to the calendar.
	calendarScope = "https://www.googleapis.com/auth/calendar.readonly"

	callbackPortStart = 8400
	callbackPortEnd   = 8500

	loginTimeout = 5 * time.Minute
)

var (
	flagClientID     string
	flagClientSecret string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google Calendar credentials",
	Long: `Authenticate meetsync against Google Calendar.

'auth login' runs the interactive OAuth flow: it opens your browser,
receives the callback on a loopback server and stores the refresh token
in the credentials file. 'auth refresh' forces a token refresh to verify
the stored credentials still work.

Service-account deployments skip this entirely: set
GOOGLE_SERVICE_ACCOUNT_KEY_PATH instead.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate interactively via the browser",
	RunE:  runAuthLogin,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a token refresh to verify stored credentials",
	RunE:  runAuthRefresh,
}

func init() {
	authLoginCmd.Flags().StringVar(&flagClientID, "client-id", "",
		"OAuth client id (defaults to GOOGLE_CLIENT_ID from the credentials file)")
	authLoginCmd.Flags().StringVar(&flagClientSecret, "client-secret", "",
		"OAuth client secret (defaults to GOOGLE_CLIENT_SECRET from the credentials file)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRefreshCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	app, err := newApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	clientID := flagClientID
	if clientID == "" {
		clientID = app.credential(credClientID)
	}
	clientSecret := flagClientSecret
	if clientSecret == "" {
		clientSecret = app.credential(credClientSecret)
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth client not configured: pass --client-id/--client-secret " +
			"or set GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET in the credentials file")
	}

	// Loopback callback server with CSRF state and PKCE.
	port, err := oauth.FindAvailablePort(callbackPortStart, callbackPortEnd)
	if err != nil {
		return err
	}
	state := oauth.GenerateState()
	verifier := oauth.GenerateCodeVerifier()

	server := oauth.NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer server.Stop() //nolint:errcheck // best-effort shutdown

	authURL := buildAuthURL(clientID, server.RedirectURI(), state,
		oauth.GenerateCodeChallenge(verifier))

	cmd.Println("Opening your browser to authenticate with Google...")
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Println("Could not open a browser. Visit this URL manually:")
		cmd.Println(authURL)
	}

	code, err := server.WaitForCode(loginTimeout)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	tokens, err := auth.ExchangeCode(cmd.Context(), clientID, clientSecret,
		code, server.RedirectURI(), verifier)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	if tokens.RefreshToken == "" {
		return fmt.Errorf("Google did not return a refresh token; " +
			"revoke the app's access and try again")
	}

	if err := persistTokens(app.credentials, clientID, clientSecret, tokens); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	// Best-effort identity check so the user sees which account linked.
	if info, err := google.GetUserInfo(cmd.Context(), tokens.AccessToken); err == nil && info.Email != "" {
		cmd.Printf("Authenticated as %s\n", info.Email)
	} else {
		cmd.Println("Authenticated successfully.")
	}
	cmd.Printf("Credentials saved to %s\n", credentialsPath(app.config))
	return nil
}

func buildAuthURL(clientID, redirectURI, state, codeChallenge string) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", calendarScope)
	params.Set("state", state)
	params.Set("code_challenge", codeChallenge)
	params.Set("code_challenge_method", "S256")
	// offline + consent forces a refresh token even on re-auth.
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")

	return googleAuthURL + "?" + params.Encode()
}

func persistTokens(store driven.CredentialStore, clientID, clientSecret string, tokens *auth.TokenResponse) error {
	pairs := map[string]string{
		credClientID:                  clientID,
		credClientSecret:              clientSecret,
		driven.CredentialAccessToken:  tokens.AccessToken,
		driven.CredentialRefreshToken: tokens.RefreshToken,
	}
	if !tokens.Expiry.IsZero() {
		pairs[driven.CredentialTokenExpiry] = tokens.Expiry.Format(time.RFC3339)
	}
	for key, value := range pairs {
		if err := store.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

func runAuthRefresh(cmd *cobra.Command, _ []string) error {
	app, err := newApp(true)
	if err != nil {
		return err
	}
	defer app.Close()

	// Drop the cached access token so GetToken has to hit the refresh path.
	if provider, ok := app.tokens.(*auth.OAuthProvider); ok {
		provider.InvalidateCache()
		if err := app.credentials.Set(driven.CredentialAccessToken, ""); err != nil {
			return fmt.Errorf("clearing cached token: %w", err)
		}
	}

	if _, err := app.tokens.GetToken(cmd.Context()); err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}

	cmd.Printf("Token refreshed (strategy: %s)\n", app.tokens.Strategy())
	return nil
}
