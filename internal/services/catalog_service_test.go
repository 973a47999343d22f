package services_test

import (
	"context"
	"testing"

	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAddAndGet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.catalog.Add(ctx, "Keyboard", 2500, "mechanical")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	got, err := e.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = e.catalog.Get(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCatalogAddValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.Add(ctx, "Free", 0, "")
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	_, err = e.catalog.Add(ctx, "  ", 100, "")
	assert.Error(t, err)
}

func TestCatalogListStable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.catalog.Add(ctx, "A", 10, "")
	require.NoError(t, err)
	b, err := e.catalog.Add(ctx, "B", 20, "")
	require.NoError(t, err)

	l1, err := e.catalog.List(ctx)
	require.NoError(t, err)
	l2, err := e.catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, l1, l2)
	assert.Len(t, l1, 2)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{l1[0].ID, l1[1].ID})
}
