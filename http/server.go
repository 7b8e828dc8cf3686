package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"wtfBlogger/crud"
	"wtfBlogger/domain"
)

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It also performs authentication and
// authorization before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	us     domain.UserService
	gs     domain.GroupService
	ps     domain.PostService
	cs     domain.CommentService
	fs     domain.FollowService
	is     domain.ImageService
	os     domain.OAuthService
	github *oauth2.Config
	cache  *pageCache

	isProd    bool
	clientUrl string
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the crud services passed in.
func NewServer(isProd bool, clientUrl, csrfKey string, github *oauth2.Config, services *crud.Services) *Server {
	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router:    mux.NewRouter(),
		us:        services.User,
		gs:        services.Group,
		ps:        services.Post,
		cs:        services.Comment,
		fs:        services.Follow,
		is:        services.Image,
		os:        services.OAuth,
		github:    github,
		cache:     newPageCache(),
		isProd:    isProd,
		clientUrl: clientUrl,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)
	s.registerOAuthRoutes(s.router)

	// Register routes of the blog itself.
	s.registerPostRoutes(s.router)
	s.registerCommentRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerUserRoutes(s.router)

	// Set up middleware that needs to run on every request. CSRF protection is
	// only enforced in production, the dev and test clients talk plain json
	// without a token roundtrip.
	if isProd {
		csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(true), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	s.router.Use(setContentTypeJSON, s.authUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP makes the Server an http.Handler by delegating to its router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Fatal(http.ListenAndServe("localhost:"+strconv.Itoa(port), s))
}
