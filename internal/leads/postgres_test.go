package leads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxeleads/internal/config"
	"luxeleads/internal/models"
	"luxeleads/internal/testutil"
)

func TestServiceOnPostgres(t *testing.T) {
	database := testutil.TestDB(t)
	ctx := context.Background()

	svc := NewService(database, config.DefaultCatalog(), nil, nil)
	require.NoError(t, svc.SeedScoreTiers(ctx))
	require.NoError(t, svc.SeedScoreTiers(ctx))
	require.NoError(t, svc.SeedDevLeads(ctx))

	generic, err := svc.LeadCountsByStatus(ctx)
	require.NoError(t, err)
	sql, err := database.LeadCountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, generic, sql)
	assert.Equal(t, int64(1), sql["none"])

	genericInterest, err := svc.LeadCountsByInterest(ctx)
	require.NoError(t, err)
	sqlInterest, err := database.LeadCountsByInterest(ctx)
	require.NoError(t, err)
	assert.Equal(t, genericInterest, sqlInterest)

	rows, err := svc.List(ctx, ListFilter{Status: FilterNone})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Status)

	rows, err = svc.List(ctx, ListFilter{Query: "CHLOE"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Status)
	assert.Equal(t, models.StatusConverted, *rows[0].Status)
	require.NotNil(t, rows[0].Score)
	assert.Equal(t, "Platinum", rows[0].Score.Name)

	created, err := svc.UpdateStatus(ctx, rows[0].ID, models.StatusLost, "admin-1")
	require.NoError(t, err)
	assert.False(t, created)
}
