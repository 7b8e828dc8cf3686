package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

// registerUserRoutes is a helper for registering all user routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	// Show an author's profile with their posts.
	r.HandleFunc("/profile/{username}", s.handleProfile).Methods("GET")
}

// handleProfile handles the route "GET /profile/{username}".
// It shows the named author's data, one page of their posts, their total
// post count and, if the requester is authenticated, whether the requester
// already follows this author.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	page, err := s.ps.ByAuthor(author.ID, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	postCount, err := s.ps.CountByAuthor(author.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// The follow state is only computed for authenticated requesters,
	// anonymous visitors always see it as false.
	following := false
	if user := s.getUserFromContext(r.Context()); user != nil {
		following, err = s.fs.Exists(user.ID, author.ID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	response := struct {
		Title     string           `json:"title"`
		Author    *domain.User     `json:"author"`
		PostCount int              `json:"post_count"`
		Following bool             `json:"following"`
		Page      *domain.PostPage `json:"page"`
	}{
		Title:     fmt.Sprintf("Profile of %s", author.Name),
		Author:    author,
		PostCount: postCount,
		Following: following,
		Page:      page,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}
