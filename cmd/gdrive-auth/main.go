// Command gdrive-auth runs the OAuth consent flow once and prints the
// refresh token used by STORAGE_PROVIDER=gdrive.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"

	"slidedeck/internal/config"
	"slidedeck/internal/pkg/errors"
	"slidedeck/internal/pkg/logger"
)

const authTimeout = 3 * time.Minute

func main() {
	log := logger.New(logger.Config{Level: "info", Format: "text", ServiceName: "gdrive-auth", Output: os.Stderr})

	cfg, err := config.Load("gdrive-auth")
	if err != nil {
		log.LogFatal("failed to load configuration", err)
	}
	if cfg.Storage.GDriveClientID == "" || cfg.Storage.GDriveClientSecret == "" {
		log.LogFatal("missing credentials", errors.New(errors.CodeValidation, "GDRIVE_CLIENT_ID and GDRIVE_CLIENT_SECRET are required"))
	}

	token, err := authorize(context.Background(), cfg.Storage.GDriveClientID, cfg.Storage.GDriveClientSecret)
	if err != nil {
		log.LogFatal("authorization failed", err)
	}

	if strings.TrimSpace(token.RefreshToken) == "" {
		log.Warn("no refresh token returned; revoke the app at https://myaccount.google.com/permissions and run again")
		os.Exit(1)
	}

	fmt.Println("GDRIVE_REFRESH_TOKEN=" + token.RefreshToken)
}

// authorize serves the redirect on a free loopback port and exchanges the
// returned code for a token.
func authorize(ctx context.Context, clientID, clientSecret string) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, errors.Wrap(err, "gdrive-auth.listen", "listen for callback")
	}
	defer ln.Close()

	redirectURL := fmt.Sprintf("http://127.0.0.1:%d/callback", ln.Addr().(*net.TCPAddr).Port)
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
		RedirectURL:  redirectURL,
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code, err := callbackCode(r, state)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			select {
			case errCh <- err:
			default:
			}
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this window and return to the terminal.")
		select {
		case codeCh <- code:
		default:
		}
	})

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(os.Stderr, "\nOpen this URL in your browser:\n\n%s\n\nWaiting for the redirect on %s\n", authURL, redirectURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(authTimeout):
		return nil, errors.New(errors.CodeUnavailable, "timed out waiting for authorization")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "gdrive-auth.exchange", "exchange authorization code")
	}
	return tok, nil
}

func callbackCode(r *http.Request, state string) (string, error) {
	q := r.URL.Query()
	if q.Get("state") != state {
		return "", errors.BadRequest("invalid state")
	}
	if e := q.Get("error"); e != "" {
		return "", errors.BadRequest("auth error: " + e)
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.BadRequest("missing code")
	}
	return code, nil
}

func randomState() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "gdrive-auth.state", "generate state")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
