package services

import (
	"context"
	"os"
	"testing"

	"todo-web/app/config"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only when NEO4J_TEST_URI is set. The test
// database is wiped first.
func setupNeo4jService(t *testing.T) *Neo4jTodoService {
	t.Helper()

	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}

	ctx := context.Background()
	driver, err := config.InitNeo4j(config.Neo4jConfig{
		URI:      uri,
		Username: os.Getenv("NEO4J_TEST_USERNAME"),
		Password: os.Getenv("NEO4J_TEST_PASSWORD"),
	})
	require.NoError(t, err)
	require.NoError(t, driver.VerifyConnectivity(ctx))

	svc := NewNeo4jTodoService(driver, "")
	t.Cleanup(func() { _ = svc.Close(ctx) })

	session := svc.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	res, err := session.Run(ctx, "MATCH (n) WHERE n:Todo OR n:Sequence DETACH DELETE n", nil)
	require.NoError(t, err)
	_, err = res.Consume(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Migrate(ctx))
	return svc
}

func TestNeo4jTodoService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := setupNeo4jService(t)

	first, err := svc.Create(ctx, "first", "one")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "second", "two")
	require.NoError(t, err)
	assert.Greater(t, second.SNo, first.SNo)

	todos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, second.SNo, todos[0].SNo)

	updated, err := svc.Update(ctx, first.SNo, TodoChanges{Title: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "one", updated.Desc)
	assert.True(t, updated.DateCreated.Equal(first.DateCreated))

	require.NoError(t, svc.Delete(ctx, first.SNo))
	_, err = svc.Get(ctx, first.SNo)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, first.SNo), ErrNotFound)

	_, err = svc.Update(ctx, first.SNo, TodoChanges{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}
