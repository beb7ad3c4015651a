package s3

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/strtab/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDDB keeps commit items in memory and honors the conditional put.
type fakeDDB struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *fakeDDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Item["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := baseURI + ":" + version

	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *fakeDDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == baseURI {
			items = append(items, item)
		}
	}

	version := func(item map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		if aws.ToBool(params.ScanIndexForward) {
			return int(version(a)) - int(version(b))
		}
		return int(version(b)) - int(version(a))
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func newTestDDBCommitStore(ddb DDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(NewStore(new(MockS3Client), "test-bucket", "test/"), ddb, "strtab-commits", baseURI)
}

func readCurrent(t *testing.T, store blobstore.BlobStore) string {
	t.Helper()
	ctx := context.Background()

	blob, err := store.Open(ctx, CurrentName)
	require.NoError(t, err)
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newFakeDDB(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, CurrentName, []byte("tables/000001.strtab")))
	assert.Equal(t, "tables/000001.strtab", readCurrent(t, store))

	version, target, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, "tables/000001.strtab", target)
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newFakeDDB(), "s3://test-bucket/test/")

	for i := 1; i <= 12; i++ {
		v, err := store.Commit(ctx, fmt.Sprintf("tables/%06d.strtab", i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), v)
	}
	assert.Equal(t, "tables/000012.strtab", readCurrent(t, store))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newFakeDDB(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, CurrentName, []byte("tables/000001.strtab")))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Put(ctx, CurrentName, []byte(fmt.Sprintf("tables/%06d.strtab", i+2)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Greater(t, successes, 0)
	assert.Equal(t, 5, successes+conflicts)

	version, _, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1+successes), version)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := newTestDDBCommitStore(newFakeDDB(), "s3://test-bucket/test/")

	_, err := store.Open(context.Background(), CurrentName)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDB()

	store1 := newTestDDBCommitStore(ddb, "s3://bucket-a/path/")
	store2 := newTestDDBCommitStore(ddb, "s3://bucket-b/path/")

	require.NoError(t, store1.Put(ctx, CurrentName, []byte("tables/a.strtab")))
	require.NoError(t, store2.Put(ctx, CurrentName, []byte("tables/b.strtab")))

	assert.Equal(t, "tables/a.strtab", readCurrent(t, store1))
	assert.Equal(t, "tables/b.strtab", readCurrent(t, store2))
}
