package respond

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// Pagination reads page/pageSize query params as limit/offset. pageSize is capped at 100.
func Pagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return size, (page - 1) * size
}
