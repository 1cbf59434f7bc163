package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartromaric/notes-suite/internal/access"
)

func TestBuildNoteListQuery_OwnerScopeNoFilters(t *testing.T) {
	base, where, args := buildNoteListQuery(ListOptions{UserID: 7})

	assert.Equal(t, "FROM notes n", base)
	assert.Equal(t, " WHERE n.owner_id = ?", where)
	assert.Equal(t, []interface{}{uint64(7)}, args)
}

func TestBuildNoteListQuery_IncludeSharedUnionsBeforeFiltering(t *testing.T) {
	base, where, args := buildNoteListQuery(ListOptions{UserID: 7, IncludeShared: true})

	assert.Contains(t, base, "LEFT JOIN shares s ON s.note_id = n.id AND s.recipient_id = ?")
	assert.Contains(t, where, "(n.owner_id = ? OR s.recipient_id = ?)")
	assert.Equal(t, []interface{}{uint64(7), uint64(7), uint64(7)}, args)
}

func TestBuildNoteListQuery_AllFiltersCombineWithAND(t *testing.T) {
	base, where, args := buildNoteListQuery(ListOptions{
		UserID:        3,
		IncludeShared: true,
		Query:         "trip",
		Tag:           "travel",
		Visibility:    access.VisibilityShared,
	})

	assert.Contains(t, base, "JOIN note_tags nt ON nt.note_id = n.id")
	assert.Contains(t, base, "JOIN tags t ON t.id = nt.tag_id")

	conds := strings.Split(strings.TrimPrefix(where, " WHERE "), " AND ")
	require.Len(t, conds, 4)
	assert.Contains(t, where, "LOWER(n.title) LIKE LOWER(CONCAT('%', ?, '%'))")
	assert.Contains(t, where, "n.visibility = ?")
	assert.Contains(t, where, "t.label = ?")

	// positional args follow clause order: scope, query, visibility, tag
	assert.Equal(t, []interface{}{uint64(3), uint64(3), uint64(3), "trip", "SHARED", "travel"}, args)
}

func TestBuildNoteListQuery_TagJoinOnlyWhenFiltering(t *testing.T) {
	base, _, _ := buildNoteListQuery(ListOptions{UserID: 1, Query: "x"})
	assert.NotContains(t, base, "note_tags")

	base, _, _ = buildNoteListQuery(ListOptions{UserID: 1, Tag: "work"})
	assert.Contains(t, base, "note_tags")
}

func TestBuildNoteListQuery_VisibilityFilterExactMatch(t *testing.T) {
	_, where, args := buildNoteListQuery(ListOptions{UserID: 1, Visibility: access.VisibilityPublic})
	assert.Contains(t, where, "n.visibility = ?")
	assert.Equal(t, []interface{}{uint64(1), "PUBLIC"}, args)
}
