package core

import (
	"fmt"
	"html"
	"net/http"

	"codeassist/pkg/logging"

	"golang.org/x/oauth2"
)

// CallbackHandler finishes a login when the browser arrives at the core's
// external callback URL.
type CallbackHandler struct {
	account *AccountService
}

// NewCallbackHandler creates the HTTP handler for CallbackPath.
func NewCallbackHandler(account *AccountService) *CallbackHandler {
	return &CallbackHandler{account: account}
}

// ServeHTTP implements http.Handler.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	stateParam := query.Get("state")

	if errorParam := query.Get("error"); errorParam != "" {
		logging.Warn("Core", "OAuth callback received error: %s - %s", errorParam, query.Get("error_description"))
		renderPage(w, http.StatusBadRequest, "Sign-in failed", fmt.Sprintf("The identity provider returned: %s", errorParam))
		return
	}

	if code == "" || stateParam == "" {
		logging.Warn("Core", "OAuth callback missing code or state parameter")
		renderPage(w, http.StatusBadRequest, "Sign-in failed", "Invalid callback: missing required parameters.")
		return
	}

	login := h.account.pending.Take(stateParam)
	if login == nil {
		logging.Warn("Core", "OAuth callback with invalid or expired state")
		renderPage(w, http.StatusBadRequest, "Sign-in failed", "Sign-in session expired. Please run the login again.")
		return
	}

	token, err := login.OAuth2.Exchange(r.Context(), code, oauth2.VerifierOption(login.CodeVerifier))
	if err != nil {
		logging.Error("Core", err, "Failed to exchange authorization code")
		renderPage(w, http.StatusBadGateway, "Sign-in failed", "Could not complete sign-in with the identity provider.")
		return
	}

	user, err := h.account.completeLogin(login, token)
	if err != nil {
		logging.Error("Core", err, "Failed to complete login")
		renderPage(w, http.StatusInternalServerError, "Sign-in failed", "Sign-in could not be completed.")
		return
	}

	name := user.DisplayName
	if name == "" {
		name = user.UID
	}
	renderPage(w, http.StatusOK, "Signed in to Oracle Code Assist",
		fmt.Sprintf("Signed in as %s. You can close this window and return to your terminal.", name))
}

// setSecurityHeaders sets the headers for the HTML responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

func renderPage(w http.ResponseWriter, statusCode int, title, message string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: #f6f6f6; color: #222; }
        .card { padding: 2.5rem; background: #fff; border-radius: 12px; box-shadow: 0 2px 12px rgba(0,0,0,.08); max-width: 480px; text-align: center; }
        h1 { font-size: 1.5rem; margin-bottom: .75rem; }
        p { color: #555; line-height: 1.5; }
    </style>
</head>
<body>
    <div class="card">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}
