package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

// indexCacheWindow is how long a rendered index page stays valid. Readers of
// the "recent posts" listing tolerate up to 20 seconds of staleness, that is
// a documented tradeoff and not a bug.
const indexCacheWindow = 20 * time.Second

// registerPostRoutes is a helper for registering all Post routes.
func (s *Server) registerPostRoutes(r *mux.Router) {
	// List the most recent posts across all authors.
	r.HandleFunc("/", s.cache.cached(indexCacheWindow, s.handleIndex)).Methods("GET")

	// List the posts filed under a group.
	r.HandleFunc("/group/{slug}", s.handleGroupPosts).Methods("GET")

	// Show a single post with its comments.
	r.HandleFunc("/post/{id:[0-9]+}", s.handlePostDetail).Methods("GET")

	// Create a new post.
	r.HandleFunc("/post", s.requireAuth(s.handleCreatePost)).Methods("POST")

	// Edit an existing post (author only).
	r.HandleFunc("/post/{id:[0-9]+}", s.requireAuth(s.handleEditPost)).Methods("POST", "PUT")

	// Upload images for an existing post (author only).
	r.HandleFunc("/post/images/upload/{id:[0-9]+}", s.requireAuth(s.handleUploadPostImages)).Methods("POST")
}

// postForm is the json body of the create and edit routes.
type postForm struct {
	Text    string `json:"text"`
	GroupID *int   `json:"group_id"`
}

// pageParam reads the 1-based "page" query parameter. An absent or
// unparsable value falls back to the first page.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

// handleIndex handles the route "GET /".
// It lists the most recent posts of all authors, 10 per page. Responses
// are served through the page cache for indexCacheWindow.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.ps.Recent(pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Title string           `json:"title"`
		Page  *domain.PostPage `json:"page"`
	}{
		Title: "Latest updates on the site",
		Page:  page,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleGroupPosts handles the route "GET /group/{slug}".
// It lists the posts filed under the given group, 10 per page.
func (s *Server) handleGroupPosts(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	group, err := s.gs.BySlug(slug)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	page, err := s.ps.ByGroup(group.ID, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Title string           `json:"title"`
		Group *domain.Group    `json:"group"`
		Page  *domain.PostPage `json:"page"`
	}{
		Title: fmt.Sprintf("Posts of the community %s", group.Title),
		Group: group,
		Page:  page,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handlePostDetail handles the route "GET /post/{id}".
// It shows a single post along with its author's total post count, its
// comments and its images.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	postCount, err := s.ps.CountByAuthor(post.UserID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	comments, err := s.cs.ByPost(post.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	images, err := s.is.ByOwner(domain.OwnerTypePost, post.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post.Images = images

	response := struct {
		Post      *domain.Post     `json:"post"`
		PostCount int              `json:"post_count"`
		Comments  []domain.Comment `json:"comments"`
	}{
		Post:      post,
		PostCount: postCount,
		Comments:  comments,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCreatePost handles the route "POST /post".
// It creates a new post authored by the requesting user and redirects to
// the user's profile. Invalid input returns field errors and persists nothing.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var form postForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := s.getUserFromContext(r.Context())
	post := domain.Post{
		UserID:  user.ID,
		Text:    form.Text,
		GroupID: form.GroupID,
	}
	if err := s.ps.Create(&post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, "/profile/"+user.Username, http.StatusFound)
}

// handleEditPost handles the route "POST/PUT /post/{id}".
// Only the post's author may edit it. A request by anyone else is answered
// with a plain redirect to the post's detail view and no write happens, a
// soft deny instead of an explicit error page. On success the text and
// group are updated in place, the creation timestamp stays untouched.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if post.UserID != user.ID {
		http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusFound)
		return
	}

	var form postForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	post.Group = nil
	if err := s.ps.Update(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusFound)
}

// handleUploadPostImages handles the route "POST /post/images/upload/{id}".
// It reads up to 4 uploaded images for a post and stores them on disk. Their
// storage location determines which post they belong to, they are not stored
// in the database.
func (s *Server) handleUploadPostImages(w http.ResponseWriter, r *http.Request) {
	// Parse the post ID from the url.
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	// Fetch the post from the database.
	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Check if the post belongs to the authed user.
	user := s.getUserFromContext(r.Context())
	if post.UserID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this post."))
		return
	}

	// Parse the data to be uploaded.
	err = r.ParseMultipartForm(domain.MaxUploadSize)
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, errs.ErrorMessage(err)))
		return
	}

	// Check if the image count is max 4.
	files := r.MultipartForm.File["images"]
	if len(files) > 4 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Too many images, not more than 4 allowed."))
		return
	}

	// Process the images.
	for _, fileHeader := range files {
		// Open the image.
		file, err := fileHeader.Open()
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		defer file.Close()
		// Parse it into an Image object.
		img := &domain.Image{
			OwnerType: domain.OwnerTypePost,
			OwnerID:   id,
			File:      file,
			Filename:  fileHeader.Filename,
		}
		// Save the image to disk (includes validation / normalization).
		err = s.is.Create(img)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	// Fetch the post's images.
	images, err := s.is.ByOwner(domain.OwnerTypePost, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post.Images = images

	// Return the post with its images.
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(post); err != nil {
		errs.LogError(r, err)
		return
	}
}
