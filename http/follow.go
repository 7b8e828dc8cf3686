package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

// registerFollowRoutes is a helper for registering all Follow routes.
func (s *Server) registerFollowRoutes(r *mux.Router) {
	// List the posts of authors the authed user follows.
	r.HandleFunc("/feed", s.requireAuth(s.handleFeed)).Methods("GET")

	// Follow an author.
	r.HandleFunc("/follow/{username}", s.requireAuth(s.handleCreateFollow)).Methods("POST")

	// Unfollow a previously followed author.
	r.HandleFunc("/unfollow/{username}", s.requireAuth(s.handleDeleteFollow)).Methods("POST", "DELETE")
}

// handleFeed handles the route "GET /feed".
// It lists the posts of all authors the authed user follows, 10 per page.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())

	page, err := s.ps.FeedOf(user.ID, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Title string           `json:"title"`
		Page  *domain.PostPage `json:"page"`
	}{
		Title: "Authors you follow",
		Page:  page,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCreateFollow handles the route "POST /follow/{username}".
// It makes the authed user follow the named author and redirects to the
// author's profile. Following yourself is a no-op, following an already
// followed author is idempotent; the redirect happens either way.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if author.ID != user.ID {
		follow := domain.Follow{
			FollowerID: user.ID,
			FollowedID: author.ID,
		}
		if err := s.fs.Create(&follow); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/profile/"+author.Username, http.StatusFound)
}

// handleDeleteFollow handles the route "POST/DELETE /unfollow/{username}".
// It deletes the exact follow edge from the authed user to the named author
// and redirects to the author's profile. If no such edge exists, the request
// fails with a not-found error and nothing changes.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	follow := domain.Follow{
		FollowerID: user.ID,
		FollowedID: author.ID,
	}
	if err := s.fs.Delete(&follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, "/profile/"+author.Username, http.StatusFound)
}
