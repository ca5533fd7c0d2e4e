package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"neon", "retro"}, NormalizeTags([]string{" Retro", "neon", "", "NEON "}))
	assert.Empty(t, NormalizeTags(nil))
}

func TestCreateCode(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := NewCatalogService(db, rm)

	mock.ExpectBegin()
	mock.ExpectCommit()

	c, err := s.CreateCode(context.Background(), "u1", &models.Code{CodeValue: " 123 ", Title: "Neon", Tags: []string{"B", "a"}})
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "123", c.CodeValue)
	assert.Equal(t, DefaultSVVersion, c.SVVersion)
	assert.Equal(t, []string{"a", "b"}, c.Tags)
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = s.CreateCode(context.Background(), "u1", &models.Code{CodeValue: "123"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestCopyCode(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.codes.m["c1"] = &models.Code{ID: "c1", CodeValue: "2750118", SVVersion: 6}
	s := NewCatalogService(db, rm)

	text, err := s.CopyCode(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "--sref 2750118 --sv 6", text)
	assert.Equal(t, int64(1), rm.codes.m["c1"].CopyCount)

	_, err = s.CopyCode(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSaveCode(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.codes.m["c1"] = &models.Code{ID: "c1"}
	s := NewCatalogService(db, rm)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.SaveCode(context.Background(), "u1", "c1"))

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.ErrorIs(t, s.SaveCode(context.Background(), "u1", "c1"), common.ErrAlreadySaved)

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.ErrorIs(t, s.SaveCode(context.Background(), "u1", "missing"), common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCodes_NormalizesTags(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.codes.result = []*models.Code{{ID: "c1"}}
	s := NewCatalogService(db, rm)

	got, err := s.SearchCodes(context.Background(), models.SearchCriteria{Tags: []string{"Neon"}})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.Len(t, rm.codes.searched, 1)
	assert.Equal(t, []string{"neon"}, rm.codes.searched[0].Tags)
}
