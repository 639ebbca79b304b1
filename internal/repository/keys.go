package repository

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"tripgen/internal/models"
)

type keySpace struct {
	prefix string
}

// keysFor keeps v1 keys unprefixed; later versions live under "<version>:".
func keysFor(v models.Version) keySpace {
	if v == models.VersionV1 {
		return keySpace{}
	}
	return keySpace{prefix: string(v) + ":"}
}

func (k keySpace) record(slug string) string   { return k.prefix + "plan:" + slug }
func (k keySpace) metadata(slug string) string { return k.prefix + "plan-meta:" + slug }
func (k keySpace) index() string               { return k.prefix + "plans:index" }

const slugPrefix = "plan-"

var slugPattern = regexp.MustCompile(`^plan-\d+$`)

func NewSlug(now time.Time) string {
	return slugPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// SlugTime recovers the creation time encoded in a slug.
func SlugTime(slug string) (int64, bool) {
	ms, err := strconv.ParseInt(strings.TrimPrefix(slug, slugPrefix), 10, 64)
	if err != nil || !strings.HasPrefix(slug, slugPrefix) {
		return 0, false
	}
	return ms, true
}
