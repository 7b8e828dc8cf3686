package crud

import (
	"gorm.io/gorm"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Create runs validations needed for creating new Follow database records.
func (fv *followValidator) Create(follow *domain.Follow) error {
	err := runFollowValFns(follow,
		fv.followedUserExists,
		fv.followedIsNotFollower)
	if err != nil {
		return err
	}
	return fv.followGorm.Create(follow)
}

// Delete runs validations needed for deleting existing Follow database records.
func (fv *followValidator) Delete(follow *domain.Follow) error {
	err := runFollowValFns(follow, fv.followExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Delete(follow)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followExists makes sure that the exact Follow edge to be deleted actually
// exists. Unfollowing an author that is not being followed is a not-found
// condition, there is no record the request could refer to.
func (fv *followValidator) followExists(follow *domain.Follow) error {
	err := fv.db.Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		First(follow).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "You don't follow this user.")
		} else {
			return err
		}
	}
	return nil
}

// followedIsNotFollower makes sure that nobody follows themselves.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return nil
}

// followedUserExists makes sure that the user to be followed actually exists.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.First(&domain.User{}, "id = ?", follow.FollowedID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
		} else {
			return err
		}
	}
	return nil
}

// Exists reports whether a Follow edge from follower to followed is present.
func (fg *followGorm) Exists(followerID, followedID int) (bool, error) {
	var count int64
	err := fg.db.Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores the Follow edge in a new database record, unless the exact
// same edge already exists. Following an already followed author is a no-op,
// the composite unique index backs this up at the storage layer.
func (fg *followGorm) Create(follow *domain.Follow) error {
	err := fg.db.
		Where(domain.Follow{FollowerID: follow.FollowerID, FollowedID: follow.FollowedID}).
		FirstOrCreate(follow).Error
	if err != nil {
		return err
	}
	return fg.db.Preload("Follower").Preload("Followed").First(follow).Error
}

// Delete permanently deletes the database record matching the Follow edge.
func (fg *followGorm) Delete(follow *domain.Follow) error {
	err := fg.db.Delete(follow).Error
	if err != nil {
		return err
	}
	return nil
}
