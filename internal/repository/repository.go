package repository

// totalPages computes the page count for a listing result.
func totalPages(count int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := int(count) / size
	if int(count)%size != 0 {
		pages++
	}
	return pages
}
