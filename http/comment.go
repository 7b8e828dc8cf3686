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

// registerCommentRoutes is a helper for registering all Comment routes.
func (s *Server) registerCommentRoutes(r *mux.Router) {
	// Add a comment to a post.
	r.HandleFunc("/post/{post_id:[0-9]+}/comment", s.requireAuth(s.handleAddComment)).Methods("POST")
}

// handleAddComment handles the route "POST /post/{post_id}/comment".
// It creates a new comment on the given post, authored by the requesting
// user, and redirects back to the post's detail view. The redirect happens
// whether or not the submitted text passed validation: an invalid comment is
// silently discarded. That asymmetry with the post routes comes from the
// original behavior of the detail page's inline comment form and is kept
// deliberately.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["post_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	// The commented post must exist, a comment on a missing post is a 404.
	post, err := s.ps.ByID(postId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	var form struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := s.getUserFromContext(r.Context())
	comment := domain.Comment{
		PostID: post.ID,
		UserID: user.ID,
		Text:   form.Text,
	}
	if err := s.cs.Create(&comment); err != nil {
		// Validation failures are swallowed, anything else is a real fault.
		if errs.ErrorCode(err) == errs.EINTERNAL {
			errs.ReturnError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusFound)
}
