package query

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-gin-article-api/internal/core/apperr"
)

type item struct {
	ID        string
	Title     string
	Body      string
	Status    string
	Tags      []string `gorm:"-"`
	CreatedAt time.Time
}

var itemSchema = Schema[item]{
	Searchable: []Field[item]{
		{Key: "title", Column: "title", Get: func(i *item) string { return i.Title }},
		{Key: "body", Column: "body", Get: func(i *item) string { return i.Body }},
	},
	Filters: []Field[item]{
		{Key: "status", Column: "status", Get: func(i *item) string { return i.Status }},
		{
			Key:    "tag",
			Many:   func(i *item) []string { return i.Tags },
			Member: &Membership{Table: "item_tags", FK: "item_id", Column: "tag", Parent: "items.id"},
		},
	},
	Sortable:    map[string]string{"createdAt": "created_at", "title": "title"},
	DefaultSort: "createdAt",
}

func TestBuild_Defaults(t *testing.T) {
	d, p, err := itemSchema.Build(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Descriptor{Page: 1, Limit: 10, Skip: 0, SortBy: "createdAt", SortColumn: "created_at", SortOrder: Desc}, d)
	assert.Equal(t, "created_at desc", d.OrderClause())
	assert.True(t, p.Empty())
}

func TestBuild_SearchTagAndPaging(t *testing.T) {
	raw := url.Values{"searchTerm": {"rust"}, "tag": {"infra"}, "page": {"2"}, "limit": {"5"}}
	d, p, err := itemSchema.Build(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, d.Skip)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, 2, d.Page)

	cases := []struct {
		name string
		in   item
		want bool
	}{
		{"title hit, tagged", item{Title: "Learning RUST", Tags: []string{"infra", "go"}}, true},
		{"body hit, tagged", item{Body: "why rustaceans love it", Tags: []string{"infra"}}, true},
		{"text hit, untagged", item{Title: "rust", Tags: []string{"web"}}, false},
		{"tagged, no text hit", item{Title: "golang", Tags: []string{"infra"}}, false},
		{"no tags", item{Title: "rust"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, p.Match(&c.in))
		})
	}
}

func TestBuild_EmptyPredicateMatchesEverything(t *testing.T) {
	_, p, err := itemSchema.Build(url.Values{"page": {"3"}})
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.True(t, p.Match(&item{}))
	assert.True(t, p.Match(&item{Title: "anything", Tags: []string{"x"}}))
}

func TestBuild_IgnoresUnknownKeys(t *testing.T) {
	_, p, err := itemSchema.Build(url.Values{"authorId": {"u1"}, "password": {"x"}, "title": {"only-searchable"}})
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestBuild_ExactFilter(t *testing.T) {
	_, p, err := itemSchema.Build(url.Values{"status": {"published"}})
	require.NoError(t, err)
	assert.True(t, p.Match(&item{Status: "published"}))
	assert.False(t, p.Match(&item{Status: "Published"}))
}

func TestBuild_PageAndLimitNormalization(t *testing.T) {
	cases := []struct {
		page, limit       string
		wantPage, wantLim int
	}{
		{"abc", "xyz", 1, 10},
		{"0", "0", 1, 10},
		{"-3", "-1", 1, 10},
		{"4", "1000", 4, MaxLimit},
	}
	for _, c := range cases {
		d, _, err := itemSchema.Build(url.Values{"page": {c.page}, "limit": {c.limit}})
		require.NoError(t, err)
		assert.Equal(t, c.wantPage, d.Page)
		assert.Equal(t, c.wantLim, d.Limit)
		assert.Equal(t, (c.wantPage-1)*c.wantLim, d.Skip)
	}
}

func TestBuild_HugePageDoesNotOverflowSkip(t *testing.T) {
	for _, page := range []string{"9223372036854775807", "99999999999999999999999", "2147483647"} {
		d, _, err := itemSchema.Build(url.Values{"page": {page}, "limit": {"100"}})
		require.NoError(t, err, page)
		assert.Equal(t, math.MaxInt32/100, d.Page, page)
		assert.Equal(t, (d.Page-1)*d.Limit, d.Skip, page)
		assert.Positive(t, d.Skip, page)
		assert.LessOrEqual(t, d.Skip, math.MaxInt32, page)
	}
}

func TestBuild_RejectsUnknownSort(t *testing.T) {
	_, _, err := itemSchema.Build(url.Values{"sortBy": {"password"}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = itemSchema.Build(url.Values{"sortOrder": {"sideways"}})
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "sortOrder", ae.Fields[0].Path)
}

func TestBuild_SortAsc(t *testing.T) {
	d, _, err := itemSchema.Build(url.Values{"sortBy": {"title"}, "sortOrder": {"ASC"}})
	require.NoError(t, err)
	assert.Equal(t, "title asc", d.OrderClause())
}

func TestDescriptor_TotalPage(t *testing.T) {
	d := Descriptor{Limit: 5}
	assert.EqualValues(t, 0, d.TotalPage(0))
	assert.EqualValues(t, 1, d.TotalPage(5))
	assert.EqualValues(t, 3, d.TotalPage(11))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "50!% off!_now!!", escapeLike("50% off_now!"))
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestPredicate_ScopeSQL(t *testing.T) {
	db := dryRunDB(t)
	raw := url.Values{"searchTerm": {"Ru_st"}, "tag": {"infra"}, "status": {"draft"}}
	_, p, err := itemSchema.Build(raw)
	require.NoError(t, err)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&item{}).Scopes(p.Scope).Find(&[]item{})
	})
	assert.Contains(t, sql, `LOWER(title) LIKE '%ru!_st%' ESCAPE '!' OR LOWER(body) LIKE '%ru!_st%' ESCAPE '!'`)
	assert.Contains(t, sql, `EXISTS (SELECT 1 FROM item_tags WHERE item_tags.item_id = items.id AND item_tags.tag = 'infra')`)
	assert.Contains(t, sql, `status = 'draft'`)
}

func TestPredicate_EmptyScopeHasNoWhere(t *testing.T) {
	db := dryRunDB(t)
	_, p, err := itemSchema.Build(url.Values{})
	require.NoError(t, err)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&item{}).Scopes(p.Scope).Find(&[]item{})
	})
	assert.NotContains(t, sql, "WHERE")
}
