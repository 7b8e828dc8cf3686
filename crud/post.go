package crud

import (
	"unicode/utf8"

	"gorm.io/gorm"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

// PostService manages Posts.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(post *domain.Post) error {
	err := runPostValFns(post,
		pv.userIdValid,
		pv.groupExists,
		pv.textRequired,
		pv.textMaxLength)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(post)
}

// Update runs validations needed for saving changes to an existing Post record.
func (pv *postValidator) Update(post *domain.Post) error {
	err := runPostValFns(post,
		pv.idValid,
		pv.userIdValid,
		pv.groupExists,
		pv.textRequired,
		pv.textMaxLength)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn = func(post *domain.Post) error

// idValid makes sure that the ID of a Post to be updated is greater than 0.
func (pv *postValidator) idValid(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post ID is invalid.")
	}
	return nil
}

// userIdValid makes sure that the Post has an author.
func (pv *postValidator) userIdValid(post *domain.Post) error {
	if post.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post author is required.")
	}
	return nil
}

// groupExists makes sure that the group a Post is filed under exists,
// if a group reference is provided at all.
func (pv *postValidator) groupExists(post *domain.Post) error {
	if post.GroupID != nil {
		err := pv.db.First(&domain.Group{}, "id = ?", *post.GroupID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
			} else {
				return err
			}
		}
	}
	return nil
}

// textRequired makes sure that the Post's text is not empty.
func (pv *postValidator) textRequired(post *domain.Post) error {
	if post.Text == "" {
		return errs.Errorf(errs.EINVALID, "Post text must not be empty.")
	}
	return nil
}

// textMaxLength makes sure that the Post's text does not exceed 5000 characters.
func (pv *postValidator) textMaxLength(post *domain.Post) error {
	if utf8.RuneCountInString(post.Text) > domain.PostTextMaxLength {
		return errs.Errorf(errs.EINVALID, "Post text must not have more than 5000 characters.")
	}
	return nil
}

// ByID retrieves a single Post by ID, along with its author and group.
// If the record doesn't exist, it returns errs.ENOTFOUND.
func (pg *postGorm) ByID(id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.
		Preload("User").
		Preload("Group").
		First(&post, "id = ?", id).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		} else {
			return nil, err
		}
	}
	return &post, nil
}

// Recent retrieves one page of all posts, newest first.
func (pg *postGorm) Recent(page int) (*domain.PostPage, error) {
	return pg.pageOf(func(db *gorm.DB) *gorm.DB {
		return db
	}, page)
}

// ByGroup retrieves one page of the posts filed under the given group, newest first.
func (pg *postGorm) ByGroup(groupID, page int) (*domain.PostPage, error) {
	return pg.pageOf(func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ?", groupID)
	}, page)
}

// ByAuthor retrieves one page of the posts written by the given user, newest first.
func (pg *postGorm) ByAuthor(userID, page int) (*domain.PostPage, error) {
	return pg.pageOf(func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}, page)
}

// FeedOf retrieves one page of the posts written by authors the given user
// follows, newest first.
func (pg *postGorm) FeedOf(userID, page int) (*domain.PostPage, error) {
	return pg.pageOf(func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN follows ON follows.followed_id = posts.user_id").
			Where("follows.follower_id = ?", userID)
	}, page)
}

// CountByAuthor returns the total number of posts written by the given user.
func (pg *postGorm) CountByAuthor(userID int) (int, error) {
	var count int64
	err := pg.db.Model(&domain.Post{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// pageOf runs a filtered post query twice, once to count the matching records
// and once to fetch the 10 records of the requested page, newest first.
// Page numbers are 1-based. A page number below 1 becomes 1, a page number
// beyond the last page becomes the last page. The clamping mirrors the soft
// failure mode of classic web paginators, an out-of-range url never 404s.
func (pg *postGorm) pageOf(filter func(db *gorm.DB) *gorm.DB, page int) (*domain.PostPage, error) {
	var count int64
	err := filter(pg.db.Model(&domain.Post{})).Count(&count).Error
	if err != nil {
		return nil, err
	}

	totalPages := (int(count) + domain.PostsPerPage - 1) / domain.PostsPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	// The ordering is qualified because the feed filter joins the follows
	// table, which carries created_at and id columns of its own.
	var posts []domain.Post
	err = filter(pg.db).
		Preload("User").
		Preload("Group").
		Order("posts.created_at desc, posts.id desc").
		Offset((page - 1) * domain.PostsPerPage).
		Limit(domain.PostsPerPage).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return &domain.PostPage{
		Posts:      posts,
		Number:     page,
		TotalPages: totalPages,
		TotalCount: int(count),
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// Create stores the data from the Post object in a new database record.
// On success, it eager-loads the author relation, so that the json
// response displays the full data of the post's author.
func (pg *postGorm) Create(post *domain.Post) error {
	if err := pg.db.Create(post).Error; err != nil {
		return err
	}
	if err := pg.db.Preload("User").First(post).Error; err != nil {
		return err
	}
	return nil
}

// Update saves changes to an existing post record in the database. The
// caller is expected to pass in a previously fetched record, so CreatedAt
// keeps its original value.
func (pg *postGorm) Update(post *domain.Post) error {
	return pg.db.Save(post).Error
}
