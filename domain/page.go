package domain

// PostsPerPage is the fixed page size of all post listings.
const PostsPerPage = 10

// PostPage is one page of an ordered post listing, along with the metadata
// a client needs to render pagination controls. Page numbers are 1-based.
// A requested page number outside the valid range is clamped to the nearest
// valid page rather than treated as an error, so Number may differ from the
// number that was requested.
type PostPage struct {
	Posts      []Post `json:"posts"`
	Number     int    `json:"number"`
	TotalPages int    `json:"total_pages"`
	TotalCount int    `json:"total_count"`
	HasNext    bool   `json:"has_next"`
	HasPrev    bool   `json:"has_prev"`
}
