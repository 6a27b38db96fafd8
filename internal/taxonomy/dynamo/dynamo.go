// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package dynamo stores taxonomy terms in a DynamoDB table keyed by kind
// (partition) and id (sort). It implements taxonomy.Repository and
// taxonomy.Swapper, swapping positions with TransactWriteItems.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/taxonomy"
)

// API is the subset of the DynamoDB client the repository needs.
type API interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// maxTransactItems is the DynamoDB limit on actions per transaction.
const maxTransactItems = 100

// batchSize is the DynamoDB limit on requests per BatchWriteItem call.
const batchSize = 25

const (
	maxBatchAttempts = 6
	defaultRetryBase = 50 * time.Millisecond
	maxRetryDelay    = 2 * time.Second
)

// item is the stored shape of a term. Ids are kept as strings.
type item struct {
	Kind        string  `dynamodbav:"kind"`
	ID          string  `dynamodbav:"id"`
	Name        string  `dynamodbav:"name"`
	Slug        string  `dynamodbav:"slug"`
	ParentID    string  `dynamodbav:"parent_id,omitempty"`
	Description *string `dynamodbav:"description,omitempty"`
	IsActive    bool    `dynamodbav:"is_active"`
	SortOrder   int     `dynamodbav:"sort_order"`
	IconKey     *string `dynamodbav:"icon_key,omitempty"`
}

func toItem(kind taxonomy.Kind, t *models.Term) item {
	it := item{
		Kind:        string(kind),
		ID:          t.ID.String(),
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		IsActive:    t.IsActive,
		SortOrder:   t.SortOrder,
		IconKey:     t.IconKey,
	}
	if t.ParentID != nil {
		it.ParentID = t.ParentID.String()
	}
	return it
}

func (it item) term() (models.Term, error) {
	id, err := uuid.Parse(it.ID)
	if err != nil {
		return models.Term{}, fmt.Errorf("parse id %q: %w", it.ID, err)
	}
	t := models.Term{
		ID:          id,
		Name:        it.Name,
		Slug:        it.Slug,
		Description: it.Description,
		IsActive:    it.IsActive,
		SortOrder:   it.SortOrder,
		IconKey:     it.IconKey,
	}
	if it.ParentID != "" {
		parent, err := uuid.Parse(it.ParentID)
		if err != nil {
			return models.Term{}, fmt.Errorf("parse parent of %s: %w", it.ID, err)
		}
		t.ParentID = &parent
	}
	return t, nil
}

func key(kind taxonomy.Kind, id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"kind": &types.AttributeValueMemberS{Value: string(kind)},
		"id":   &types.AttributeValueMemberS{Value: id.String()},
	}
}

// Repository is a DynamoDB-backed taxonomy repository.
type Repository struct {
	client    API
	table     string
	retryBase time.Duration
}

var (
	_ taxonomy.Repository = (*Repository)(nil)
	_ taxonomy.Swapper    = (*Repository)(nil)
)

// New returns a Repository over table.
func New(client API, table string) *Repository {
	return &Repository{client: client, table: table, retryBase: defaultRetryBase}
}

// NewClient builds a DynamoDB client from the default AWS config chain.
// A non-empty endpoint overrides the service URL, for local emulators.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// List returns every term of kind ordered by (sort_order, name, id).
func (r *Repository) List(ctx context.Context, kind taxonomy.Kind) ([]models.Term, error) {
	var (
		terms []models.Term
		start map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			KeyConditionExpression: aws.String("#k = :kind"),
			ExpressionAttributeNames: map[string]string{
				"#k": "kind",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":kind": &types.AttributeValueMemberS{Value: string(kind)},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", kind, err)
		}

		var page []item
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kind, err)
		}
		for _, it := range page {
			t, err := it.term()
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		start = out.LastEvaluatedKey
	}

	sort.SliceStable(terms, func(i, j int) bool {
		a, b := terms[i], terms[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})
	return terms, nil
}

// Insert stores a new term. Slug uniqueness is not enforced here.
func (r *Repository) Insert(ctx context.Context, kind taxonomy.Kind, t *models.Term) (*models.Term, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	av, err := attributevalue.MarshalMap(toItem(kind, t))
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("insert %s %s: %w", kind, t.ID, err)
	}
	out := *t
	return &out, nil
}

// Update overwrites an existing term. A missing term yields
// taxonomy.ErrNotFound.
func (r *Repository) Update(ctx context.Context, kind taxonomy.Kind, t *models.Term) (*models.Term, error) {
	av, err := attributevalue.MarshalMap(toItem(kind, t))
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		return nil, mapConditionError(fmt.Sprintf("update %s %s", kind, t.ID), err)
	}
	out := *t
	return &out, nil
}

// Delete removes a term and turns its children into roots in one
// transaction, matching the relational ON DELETE SET NULL.
func (r *Repository) Delete(ctx context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	terms, err := r.List(ctx, kind)
	if err != nil {
		return err
	}

	actions := []types.TransactWriteItem{{
		Delete: &types.Delete{
			TableName: aws.String(r.table),
			Key:       key(kind, id),
		},
	}}
	for _, t := range terms {
		if !t.HasParent(&id) {
			continue
		}
		actions = append(actions, types.TransactWriteItem{
			Update: &types.Update{
				TableName:        aws.String(r.table),
				Key:              key(kind, t.ID),
				UpdateExpression: aws.String("REMOVE parent_id"),
			},
		})
	}
	if len(actions) > maxTransactItems {
		return fmt.Errorf("delete %s %s: %d children exceed one transaction", kind, id, len(actions)-1)
	}

	if len(actions) == 1 {
		_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.table),
			Key:       key(kind, id),
		})
	} else {
		_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: actions,
		})
	}
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

// SwapPositions writes a's position to b and b's to a atomically. Both
// terms must still exist.
func (r *Repository) SwapPositions(ctx context.Context, kind taxonomy.Kind, a, b models.Term) error {
	setOrder := func(id uuid.UUID, pos int) types.TransactWriteItem {
		return types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(r.table),
				Key:                 key(kind, id),
				UpdateExpression:    aws.String("SET sort_order = :pos"),
				ConditionExpression: aws.String("attribute_exists(id)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":pos": &types.AttributeValueMemberN{Value: strconv.Itoa(pos)},
				},
			},
		}
	}
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			setOrder(a.ID, b.SortOrder),
			setOrder(b.ID, a.SortOrder),
		},
	})
	if err != nil {
		return mapConditionError(fmt.Sprintf("swap %s %s/%s", kind, a.ID, b.ID), err)
	}
	return nil
}

// MirrorResult counts the items a Mirror call wrote and removed.
type MirrorResult struct {
	Written int
	Removed int
}

// Mirror makes the table hold exactly terms for kind: every term is
// written unconditionally and stored items missing from terms are
// deleted.
func (r *Repository) Mirror(ctx context.Context, kind taxonomy.Kind, terms []models.Term) (MirrorResult, error) {
	var res MirrorResult

	stored, err := r.List(ctx, kind)
	if err != nil {
		return res, fmt.Errorf("mirror %s: %w", kind, err)
	}
	keep := make(map[uuid.UUID]bool, len(terms))
	requests := make([]types.WriteRequest, 0, len(terms))
	for i := range terms {
		keep[terms[i].ID] = true
		av, err := attributevalue.MarshalMap(toItem(kind, &terms[i]))
		if err != nil {
			return res, fmt.Errorf("marshal %s: %w", kind, err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}
	puts := len(requests)
	for _, t := range stored {
		if !keep[t.ID] {
			requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key(kind, t.ID)}})
		}
	}

	for start := 0; start < len(requests); start += batchSize {
		end := min(start+batchSize, len(requests))
		if err := r.writeBatch(ctx, requests[start:end]); err != nil {
			return res, fmt.Errorf("mirror %s: %w", kind, err)
		}
		for i := start; i < end; i++ {
			if i < puts {
				res.Written++
			} else {
				res.Removed++
			}
		}
	}
	return res, nil
}

// writeBatch sends one BatchWriteItem and resubmits unprocessed requests
// with exponential backoff, giving up after maxBatchAttempts.
func (r *Repository) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.table: requests}
	delay := r.retryBase
	for attempt := 1; ; attempt++ {
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems
		if len(pending[r.table]) == 0 {
			return nil
		}
		if attempt == maxBatchAttempts {
			return fmt.Errorf("%d requests unprocessed after %d attempts", len(pending[r.table]), attempt)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

// mapConditionError reports a failed existence condition as
// taxonomy.ErrNotFound.
func mapConditionError(op string, err error) error {
	var condErr *types.ConditionalCheckFailedException
	var txErr *types.TransactionCanceledException
	switch {
	case errors.As(err, &condErr):
		return fmt.Errorf("%s: %w", op, taxonomy.ErrNotFound)
	case errors.As(err, &txErr):
		for _, reason := range txErr.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return fmt.Errorf("%s: %w", op, taxonomy.ErrNotFound)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
