package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	a, _, fc, out := newTestApp(t, "1234567\n6\nWarm film\nFilm, warm\n")

	require.NoError(t, a.Add(context.Background()))
	want := &rpc.CreateCodeRequest{CodeValue: "1234567", SVVersion: 6, Title: "Warm film", Tags: []string{"film", "warm"}}
	if diff := cmp.Diff(want, fc.added); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, out.String(), "--sref 1234567")
}

func TestAdd_BadVersion(t *testing.T) {
	a, _, fc, _ := newTestApp(t, "1234567\nsix\nWarm film\n\n")

	require.Error(t, a.Add(context.Background()))
	assert.Nil(t, fc.added)
}

func TestShow(t *testing.T) {
	a, _, fc, out := newTestApp(t, "")
	fc.codes = []rpc.Code{{ID: "c1", Title: "t", CodeValue: "42", SVVersion: 6, Tags: []string{"a", "b"}, ImageURLs: []string{"https://img/1"}}}

	require.NoError(t, a.Show(context.Background(), "c1"))
	assert.Contains(t, out.String(), "sv 6")
	assert.Contains(t, out.String(), "tags: a, b")
	assert.Contains(t, out.String(), "image: https://img/1")

	require.ErrorIs(t, a.Show(context.Background(), "nope"), common.ErrorNotFound)
}

func TestSearch_ReadsAllFilters(t *testing.T) {
	a, _, fc, out := newTestApp(t, "film\nwarm,moody\n6\n10\n2024-01-01\n2024-02-01\n")

	require.NoError(t, a.Search(context.Background()))

	sv, minUp := 6, int64(10)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	want := &rpc.SearchCriteria{Query: "film", Tags: []string{"warm", "moody"}, SVVersion: &sv, UpvotesMin: &minUp, From: &from, To: &to}
	if diff := cmp.Diff(want, fc.criteria); diff != "" {
		t.Errorf("criteria mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, out.String(), "No codes.")
}

func TestSearch_EmptyAnswersLeaveFiltersUnset(t *testing.T) {
	a, _, fc, _ := newTestApp(t, "\n\n\n\n\n\n")

	require.NoError(t, a.Search(context.Background()))
	if diff := cmp.Diff(&rpc.SearchCriteria{}, fc.criteria); diff != "" {
		t.Errorf("criteria mismatch (-want +got):\n%s", diff)
	}
}

func TestCopySave(t *testing.T) {
	a, _, _, out := newTestApp(t, "")

	require.NoError(t, a.Copy(context.Background(), "c1"))
	assert.Contains(t, out.String(), "--sref 42 --sv 6")

	require.ErrorIs(t, a.Save(context.Background(), "c1"), common.ErrAlreadySaved)
}

func TestVote(t *testing.T) {
	a, _, fc, out := newTestApp(t, "")
	signIn(a)
	fc.vote = &ledger.Result{Tally: ledger.Tally{Upvotes: 2}, Reconciled: true}

	require.NoError(t, a.Vote(context.Background(), "c1", true))
	assert.Same(t, a.session, fc.voteSess)
	assert.Equal(t, "Voted. +2 -0\n", out.String())

	out.Reset()
	fc.vote = &ledger.Result{Tally: ledger.Tally{Downvotes: 1}, Flipped: true}
	require.NoError(t, a.Vote(context.Background(), "c1", false))
	assert.Contains(t, out.String(), "Vote changed. +0 -1")
	assert.Contains(t, out.String(), "server recount pending")
}

func TestVote_Error(t *testing.T) {
	a, _, fc, out := newTestApp(t, "")
	fc.voteErr = common.ErrUnauthenticated

	require.ErrorIs(t, a.Vote(context.Background(), "c1", true), common.ErrUnauthenticated)
	assert.Empty(t, out.String())
}

func TestTallyAndUpload(t *testing.T) {
	a, _, _, out := newTestApp(t, "")

	require.NoError(t, a.Tally(context.Background(), "c1"))
	assert.Equal(t, "+3 -1\n", out.String())

	out.Reset()
	require.NoError(t, a.Upload(context.Background(), "c1", "p.png"))
	assert.Equal(t, "Uploaded as image #2 (codes/c1/k)\n", out.String())
}
