package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrSlugTaken is returned when another post already uses the url name.
	ErrSlugTaken = errors.New("slug taken")
	// ErrEmailTaken is returned when another user already has the email.
	ErrEmailTaken = errors.New("email taken")
)

// PostOrder is the one ordering shared by listings, search and the sitemap,
// so pages never overlap or skip.
const PostOrder = "created_at DESC, id DESC"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
