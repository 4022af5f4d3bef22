package query

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page holds the common list parameters. Embed it in resource filters with `mapstructure:",squash"`.
type Page struct {
	Page   int    `mapstructure:"page"`
	Limit  int    `mapstructure:"limit"`
	Search string `mapstructure:"search"`
	Sort   string `mapstructure:"sort"`
}

// Normalize clamps page/limit to sane values.
func (p *Page) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Search = strings.TrimSpace(p.Search)
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Scope applies offset/limit to a query.
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// Order turns "field" / "-field" into an ORDER BY clause using the allowed column map.
// Unknown fields fall back to def.
func (p Page) Order(allowed map[string]string, def string) string {
	field, dir := p.Sort, "ASC"
	if strings.HasPrefix(field, "-") {
		field, dir = field[1:], "DESC"
	}
	col, ok := allowed[field]
	if !ok {
		return def
	}
	return col + " " + dir
}

// Decode fills dst (a pointer to a struct with mapstructure tags) from URL query values.
// Strings are weakly converted to ints, bools, pointers and dates.
func Decode(values url.Values, dst interface{}) error {
	in := make(map[string]interface{}, len(values))
	for k, v := range values {
		if len(v) == 0 || strings.TrimSpace(v[0]) == "" {
			continue
		}
		if len(v) == 1 {
			in[k] = strings.TrimSpace(v[0])
		} else {
			in[k] = v
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(dateHook()),
		Result:           dst,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return apperror.BadRequest(fmt.Sprintf("invalid query parameters: %v", err))
	}
	if p, ok := dst.(interface{ Normalize() }); ok {
		p.Normalize()
	}
	return nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func dateHook() mapstructure.DecodeHookFunc {
	timeType := reflect.TypeOf(time.Time{})
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != timeType {
			return data, nil
		}
		s := data.(string)
		for _, layout := range dateLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", s)
	}
}

// EndOfDay moves a date-only "to" bound to the end of that day.
func EndOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

// likeEscape is declared with ESCAPE in every predicate; MySQL and SQLite disagree on a default.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// Like wraps s for a LIKE pattern built by LikeAny.
func Like(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}

// LikeAny builds "a LIKE ? ESCAPE '!' OR b LIKE ? ESCAPE '!'" over cols; pass Like(term) once per column.
func LikeAny(cols ...string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " LIKE ? ESCAPE '" + likeEscape + "'"
	}
	return strings.Join(parts, " OR ")
}
