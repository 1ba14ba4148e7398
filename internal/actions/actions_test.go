package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tagsearch/internal/domain"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
	"github.com/MrSnakeDoc/tagsearch/internal/store/memory"
)

func newHandler(t *testing.T, template string) (*Handler, *registry.Registry) {
	t.Helper()
	reg := registry.New(memory.NewStore(), logger.Nop())
	require.NoError(t, reg.Initialize(context.Background()))
	return New(reg, template, ShareConfig{}, logger.Nop()), reg
}

func TestActivate(t *testing.T) {
	h, reg := newHandler(t, "")
	_, err := reg.Save(context.Background(), "News", "hello world")
	require.NoError(t, err)

	url, err := h.Activate("news")
	require.NoError(t, err)
	assert.Equal(t, "https://mobile.twitter.com/search?q=hello%20world", url)

	_, err = h.Activate("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShare(t *testing.T) {
	h, reg := newHandler(t, "https://example.com/s?q={query}&lang=en")
	_, err := reg.Save(context.Background(), "golang", "go 1.22")
	require.NoError(t, err)

	msg, err := h.Share("golang")
	require.NoError(t, err)
	assert.Equal(t, DefaultShareSubject, msg.Subject)
	assert.Equal(t, "https://example.com/s?q=go%201.22&lang=en", msg.URL)
	assert.Equal(t, "Check out the results of this Twitter search: "+msg.URL, msg.Text)
}

func TestShare_CustomText(t *testing.T) {
	reg := registry.New(memory.NewStore(), logger.Nop())
	require.NoError(t, reg.Initialize(context.Background()))
	h := New(reg, "", ShareConfig{Subject: "Look", Text: "see %s"}, logger.Nop())

	_, err := reg.Save(context.Background(), "a", "b")
	require.NoError(t, err)

	msg, err := h.Share("a")
	require.NoError(t, err)
	assert.Equal(t, "Look", msg.Subject)
	assert.Equal(t, "see https://mobile.twitter.com/search?q=b", msg.Text)
}

func TestEdit(t *testing.T) {
	h, reg := newHandler(t, "")
	_, err := reg.Save(context.Background(), "News", "weather")
	require.NoError(t, err)

	fields, err := h.Edit("NEWS")
	require.NoError(t, err)
	assert.Equal(t, EditFields{Tag: "News", Query: "weather"}, fields)
}

func TestSave_RejectsEmpty(t *testing.T) {
	h, reg := newHandler(t, "")
	ctx := context.Background()

	_, _, err := h.Save(ctx, "", "q")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, _, err = h.Save(ctx, "t", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, reg.ListTags())

	e, created, err := h.Save(ctx, " spaced ", " q ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, " q ", e.Record.Query)
	assert.Equal(t, []string{" spaced "}, reg.ListTags())
}

func TestSave_ReportsUpdate(t *testing.T) {
	h, _ := newHandler(t, "")
	ctx := context.Background()

	_, created, err := h.Save(ctx, "News", "weather")
	require.NoError(t, err)
	assert.True(t, created)

	e, created, err := h.Save(ctx, "news", "storms")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "News", e.Tag)
	assert.Equal(t, "storms", e.Record.Query)
}

func TestNotReady(t *testing.T) {
	reg := registry.New(memory.NewStore(), logger.Nop())
	h := New(reg, "", ShareConfig{}, logger.Nop())
	ctx := context.Background()

	_, err := h.Activate("news")
	assert.ErrorIs(t, err, registry.ErrNotReady)
	_, err = h.Share("news")
	assert.ErrorIs(t, err, registry.ErrNotReady)
	_, err = h.Dispatch(ctx, domain.ActionEdit, "news")
	assert.ErrorIs(t, err, registry.ErrNotReady)
	_, _, err = h.Save(ctx, "news", "weather")
	assert.ErrorIs(t, err, registry.ErrNotReady)
	assert.ErrorIs(t, h.Delete(ctx, "news"), registry.ErrNotReady)
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	h, reg := newHandler(t, "")
	_, err := reg.Save(ctx, "news", "weather")
	require.NoError(t, err)

	res, err := h.Dispatch(ctx, domain.ActionOpen, "news")
	require.NoError(t, err)
	assert.Equal(t, "https://mobile.twitter.com/search?q=weather", res.URL)

	res, err = h.Dispatch(ctx, domain.ActionShare, "news")
	require.NoError(t, err)
	require.NotNil(t, res.Share)
	assert.Equal(t, res.URL, res.Share.URL)

	res, err = h.Dispatch(ctx, domain.ActionEdit, "NEWS")
	require.NoError(t, err)
	require.NotNil(t, res.Edit)
	assert.Equal(t, "news", res.Tag)

	res, err = h.Dispatch(ctx, domain.ActionDelete, "news")
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Empty(t, reg.ListTags())

	_, err = h.Dispatch(ctx, domain.ActionShare, "news")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.Dispatch(ctx, domain.Action(42), "news")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDelete_NotReady(t *testing.T) {
	reg := registry.New(memory.NewStore(), logger.Nop())
	h := New(reg, "", ShareConfig{}, logger.Nop())

	err := h.Delete(context.Background(), "x")
	assert.ErrorIs(t, err, registry.ErrNotReady)
}
