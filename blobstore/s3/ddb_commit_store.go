package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/strtab/blobstore"
)

// CurrentName is the pointer blob that DDBCommitStore serves from DynamoDB.
const CurrentName = "CURRENT"

// ErrConcurrentModification is returned when another writer committed the
// same version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification detected")

// DDBClient is the subset of *dynamodb.Client the commit store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// DDBCommitStore is an S3 store whose CURRENT pointer lives in DynamoDB.
// Table blobs go to S3; a Put of CURRENT becomes a conditional PutItem of
// the next version, which fails with ErrConcurrentModification when another
// writer got there first.
//
// Table schema:
//   - Partition key: base_uri (string), the bucket and prefix
//   - Sort key: version (number), increasing by one per commit
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name strtab-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	*Store

	ddb       DDBClient
	tableName string
	baseURI   string
}

// NewDDBCommitStore creates a commit store. baseURI ("s3://bucket/prefix")
// is the partition key, so stores with different base URIs do not interfere.
func NewDDBCommitStore(store *Store, ddb DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		Store:     store,
		ddb:       ddb,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Open serves CURRENT from the latest commit and everything else from S3.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentName {
		return s.Store.Open(ctx, name)
	}

	version, target, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
	}
	return &pointerBlob{content: []byte(target)}, nil
}

// Put commits CURRENT through DynamoDB and writes everything else to S3.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name == CurrentName {
		_, err := s.Commit(ctx, string(data))
		return err
	}
	return s.Store.Put(ctx, name, data)
}

// Current returns the latest committed version and the blob name it points
// to. Version 0 means nothing was committed yet.
func (s *DDBCommitStore) Current(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("s3: query commits: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("s3: commit item has no numeric version")
	}
	targetAttr, ok := item["table_name"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("s3: commit item has no table_name")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("s3: parse commit version: %w", err)
	}
	return version, targetAttr.Value, nil
}

// Commit points CURRENT at target as the next version and returns it.
func (s *DDBCommitStore) Commit(ctx context.Context, target string) (uint64, error) {
	current, _, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	next := current + 1

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":   &types.AttributeValueMemberS{Value: s.baseURI},
			"version":    &types.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			"table_name": &types.AttributeValueMemberS{Value: target},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentModification
		}
		return 0, fmt.Errorf("s3: commit version %d: %w", next, err)
	}
	return next, nil
}

// pointerBlob holds the CURRENT content in memory.
type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) Close() error { return nil }

func (b *pointerBlob) Size() int64 { return int64(len(b.content)) }

func (b *pointerBlob) Bytes() ([]byte, error) { return b.content, nil }

func (b *pointerBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("s3: negative offset %d", off)
	}
	if off >= int64(len(b.content)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
