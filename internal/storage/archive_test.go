// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley-tui/internal/model"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenPath(filepath.Join(t.TempDir(), "archive.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func testConversation(id, title string, at time.Time, contents ...string) *model.Conversation {
	conv := &model.Conversation{
		ID:        id,
		Title:     title,
		CreatedAt: at,
		UpdatedAt: at,
	}
	for i, content := range contents {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		conv.Messages = append(conv.Messages, &model.Message{
			ID:        id + "_m" + string(rune('a'+i)),
			Role:      role,
			Content:   content,
			CreatedAt: at.Add(time.Duration(i) * time.Second),
		})
	}
	return conv
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)

	conv := testConversation("conv_1", "greetings", at, "hello", "hi there")
	conv.AssistantID = "asst_1"
	require.NoError(t, a.Save(ctx, conv))

	got, err := a.Load(ctx, "conv_1")
	require.NoError(t, err)
	assert.Equal(t, "greetings", got.Title)
	assert.Equal(t, "asst_1", got.AssistantID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, model.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, got.Messages[1].Role)
	assert.True(t, got.CreatedAt.Equal(at))
}

func TestSaveReplacesExisting(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)

	require.NoError(t, a.Save(ctx, testConversation("conv_1", "v1", at, "one")))

	updated := testConversation("conv_1", "v2", at.Add(time.Hour), "one", "two", "three")
	require.NoError(t, a.Save(ctx, updated))

	got, err := a.Load(ctx, "conv_1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.Len(t, got.Messages, 3)

	metas, err := a.List(ctx)
	require.NoError(t, err)
	assert.Len(t, metas, 1, "replace must not duplicate the conversation")
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	a := newTestArchive(t)

	_, err := a.Load(context.Background(), "conv_missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveRejectsEmptyID(t *testing.T) {
	a := newTestArchive(t)

	assert.Error(t, a.Save(context.Background(), &model.Conversation{}))
	assert.Error(t, a.Save(context.Background(), nil))
}

func TestListOrdersByRecency(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	require.NoError(t, a.Save(ctx, testConversation("conv_old", "old", base, "x")))
	require.NoError(t, a.Save(ctx, testConversation("conv_new", "new", base.Add(time.Hour), "y", "z")))

	metas, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "conv_new", metas[0].ID)
	assert.Equal(t, 2, metas[0].MessageCount)
	assert.Equal(t, "conv_old", metas[1].ID)
}

func TestSearchMatchesTitleAndContent(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)

	require.NoError(t, a.Save(ctx, testConversation("conv_1", "trip planning", at, "pack the tent")))
	require.NoError(t, a.Save(ctx, testConversation("conv_2", "recipes", at, "how long to roast a tent... typo")))
	require.NoError(t, a.Save(ctx, testConversation("conv_3", "unrelated", at, "nothing here")))

	metas, err := a.Search(ctx, "tent")
	require.NoError(t, err)
	ids := make([]string, len(metas))
	for i, m := range metas {
		ids[i] = m.ID
	}
	assert.ElementsMatch(t, []string{"conv_1", "conv_2"}, ids)

	metas, err = a.Search(ctx, "recipes")
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "conv_2", metas[0].ID)
}

func TestDelete(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)

	require.NoError(t, a.Save(ctx, testConversation("conv_1", "t", at, "m")))
	require.NoError(t, a.Delete(ctx, "conv_1"))

	_, err := a.Load(ctx, "conv_1")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(a.Delete(ctx, "conv_1"), ErrNotFound))
}

func TestPruneKeepsNewest(t *testing.T) {
	a := newTestArchive(t)
	a.MaxConversations = 3
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	for i := 0; i < 5; i++ {
		conv := testConversation(
			"conv_"+string(rune('a'+i)), "t",
			base.Add(time.Duration(i)*time.Hour), "m")
		require.NoError(t, a.Save(ctx, conv))
	}

	metas, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	assert.Equal(t, "conv_e", metas[0].ID)
	assert.Equal(t, "conv_c", metas[2].ID)
}
