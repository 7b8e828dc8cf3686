package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

// registerOAuthRoutes is a helper for registering all oauth routes.
func (s *Server) registerOAuthRoutes(r *mux.Router) {
	r.HandleFunc("/oauth/github", s.handleGithubLogin).Methods("GET")
	r.HandleFunc("/oauth/github/callback", s.handleGithubCallback).Methods("GET")
}

// handleGithubLogin handles the route "GET /oauth/github".
// It sends the user off to Github's authorization page. The random state
// value is stored in a cookie, so the callback can verify that the flow
// was started by us.
func (s *Server) handleGithubLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.us.MakeRememberToken()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		HttpOnly: true,
	})
	http.Redirect(w, r, s.github.AuthCodeURL(state), http.StatusFound)
}

// githubUser is the part of Github's user endpoint response we care about.
type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// handleGithubCallback handles the route "GET /oauth/github/callback".
// It verifies the state value, exchanges the authorization code for a token,
// fetches the Github account behind it, and signs the matching local user in.
// A first-time Github login gets a local user account created on the fly.
func (s *Server) handleGithubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != r.FormValue("state") {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Invalid oauth state."))
		return
	}

	token, err := s.github.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "The authorization code could not be exchanged."))
		return
	}

	// Ask Github who just logged in.
	client := s.github.Client(r.Context(), token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer resp.Body.Close()
	var ghUser githubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	providerUserId := strconv.FormatInt(ghUser.ID, 10)
	oauth, err := s.os.ByProviderUserID("github", providerUserId)
	if err == nil {
		// Known account, sign its user in.
		if err := s.signIn(w, r.Context(), oauth.User); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		http.Redirect(w, r, s.clientUrl, http.StatusFound)
		return
	}
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		errs.ReturnError(w, r, err)
		return
	}

	// First login through Github, create a local account for it. Github may
	// withhold the email address, fall back to the noreply form then.
	email := ghUser.Email
	if email == "" {
		email = fmt.Sprintf("%s@users.noreply.github.com", ghUser.Login)
	}
	user := domain.User{
		Username:         ghUser.Login,
		Name:             ghUser.Name,
		Email:            email,
		NoPasswordNeeded: true,
	}
	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.os.Create(&domain.OAuth{
		UserID:         user.ID,
		Provider:       "github",
		ProviderUserID: providerUserId,
	}); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := s.signIn(w, r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, s.clientUrl, http.StatusFound)
}
