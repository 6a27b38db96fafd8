// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package dynamo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI keeps items in memory and understands exactly the expressions
// the repository issues.
type fakeAPI struct {
	mu       sync.Mutex
	items    map[string]map[string]map[string]types.AttributeValue
	calls    []string
	pageSize int

	// unprocessedOnce returns the first batch request as unprocessed.
	unprocessedOnce bool
	// unprocessedAlways never applies a batch request.
	unprocessedAlways bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeAPI) get(k map[string]types.AttributeValue) (map[string]types.AttributeValue, bool) {
	it, ok := f.items[str(k["kind"])][str(k["id"])]
	return it, ok
}

func (f *fakeAPI) put(it map[string]types.AttributeValue) {
	kind := str(it["kind"])
	if f.items[kind] == nil {
		f.items[kind] = make(map[string]map[string]types.AttributeValue)
	}
	f.items[kind][str(it["id"])] = it
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

// holds reports whether cond is satisfied for an item that exists or not.
func holds(cond *string, exists bool) bool {
	switch aws.ToString(cond) {
	case "attribute_not_exists(id)":
		return !exists
	case "attribute_exists(id)":
		return exists
	}
	return true
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "query")

	kind := str(in.ExpressionAttributeValues[":kind"])
	ids := make([]string, 0, len(f.items[kind]))
	for id := range f.items[kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey["id"])
		i := sort.SearchStrings(ids, after)
		if i < len(ids) && ids[i] == after {
			i++
		}
		ids = ids[i:]
	}

	out := &dynamodb.QueryOutput{}
	for _, id := range ids {
		if f.pageSize > 0 && len(out.Items) == f.pageSize {
			out.LastEvaluatedKey = map[string]types.AttributeValue{
				"kind": &types.AttributeValueMemberS{Value: kind},
				"id":   out.Items[len(out.Items)-1]["id"],
			}
			break
		}
		out.Items = append(out.Items, f.items[kind][id])
	}
	return out, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "put")

	_, exists := f.get(in.Item)
	if !holds(in.ConditionExpression, exists) {
		return nil, conditionFailed()
	}
	f.put(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")

	delete(f.items[str(in.Key["kind"])], str(in.Key["id"]))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "transact")

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	cancelled := false
	for i, action := range in.TransactItems {
		reasons[i].Code = aws.String("None")
		if u := action.Update; u != nil {
			if _, exists := f.get(u.Key); !holds(u.ConditionExpression, exists) {
				reasons[i].Code = aws.String("ConditionalCheckFailed")
				cancelled = true
			}
		}
	}
	if cancelled {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, action := range in.TransactItems {
		switch {
		case action.Delete != nil:
			delete(f.items[str(action.Delete.Key["kind"])], str(action.Delete.Key["id"]))
		case action.Update != nil:
			it, ok := f.get(action.Update.Key)
			if !ok {
				continue
			}
			expr := aws.ToString(action.Update.UpdateExpression)
			switch {
			case strings.HasPrefix(expr, "SET sort_order"):
				it["sort_order"] = action.Update.ExpressionAttributeValues[":pos"]
			case expr == "REMOVE parent_id":
				delete(it, "parent_id")
			}
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeAPI) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "batch")

	out := &dynamodb.BatchWriteItemOutput{}
	for table, requests := range in.RequestItems {
		if f.unprocessedOnce || f.unprocessedAlways {
			f.unprocessedOnce = false
			out.UnprocessedItems = map[string][]types.WriteRequest{table: requests}
			continue
		}
		for _, req := range requests {
			switch {
			case req.PutRequest != nil:
				f.put(req.PutRequest.Item)
			case req.DeleteRequest != nil:
				delete(f.items[str(req.DeleteRequest.Key["kind"])], str(req.DeleteRequest.Key["id"]))
			}
		}
	}
	return out, nil
}
