package commentary

import (
	"gorm.io/gorm"

	"github.com/lampstand/commentary/pkg/identity"
)

// Visible is the single visibility predicate applied wherever entries
// are listed or fetched: anonymous callers see PUBLISHED entries only;
// admins see everything; other authenticated callers see PUBLISHED
// entries plus their own in any status.
func Visible(status Status, authorID string, caller identity.Caller) bool {
	if status == StatusPublished {
		return true
	}
	if caller.Anonymous() {
		return false
	}
	if caller.IsAdmin() {
		return true
	}
	return authorID == caller.ID
}

// visibilityScope is the SQL form of Visible, composed into list
// queries so filtering happens in the store rather than in memory.
func visibilityScope(caller identity.Caller) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case caller.Anonymous():
			return db.Where("status = ?", StatusPublished)
		case caller.IsAdmin():
			return db
		default:
			return db.Where("status = ? OR author_id = ?", StatusPublished, caller.ID)
		}
	}
}
