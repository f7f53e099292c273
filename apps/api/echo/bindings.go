package echoapi

// totalPages derives the page count of a paginated listing.
func totalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}
