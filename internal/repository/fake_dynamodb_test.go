package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB is an in-memory stand-in for the handful of DynamoDB calls the
// repositories make. It understands the expression shapes they emit: clauses joined
// by AND, each one of attribute_exists(x), attribute_not_exists(x), attribute_type(x, :t),
// x = :v or x >= :v, and SET updates of the form "SET a = :x, b = :y". Queries honor
// ScanIndexForward and Limit.
type fakeDynamoDB struct {
	mu       sync.Mutex
	tables   map[string]*fakeTable
	pageSize int

	getErr, putErr, updateErr, queryErr, scanErr error

	// hooks run before the call takes the lock, so they may mutate the store
	onGet    func()
	onUpdate func()

	gets, puts, updates, queries int
}

type fakeTable struct {
	hashKey, rangeKey string
	items             map[string]map[string]types.AttributeValue
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{tables: map[string]*fakeTable{}}
}

func (f *fakeDynamoDB) createTable(name, hashKey, rangeKey string) {
	f.tables[name] = &fakeTable{hashKey: hashKey, rangeKey: rangeKey, items: map[string]map[string]types.AttributeValue{}}
}

func (t *fakeTable) keyOf(item map[string]types.AttributeValue) string {
	k := attrString(item[t.hashKey])
	if t.rangeKey != "" {
		k += "|" + attrString(item[t.rangeKey])
	}
	return k
}

func (f *fakeDynamoDB) putRaw(table string, item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tables[table]
	t.items[t.keyOf(item)] = copyItem(item)
}

func (f *fakeDynamoDB) setAttr(table string, key map[string]types.AttributeValue, name string, value types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tables[table]
	t.items[t.keyOf(key)][name] = value
}

func (f *fakeDynamoDB) item(table string, key map[string]types.AttributeValue) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tables[table]
	return copyItem(t.items[t.keyOf(key)])
}

func (f *fakeDynamoDB) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table].items)
}

func (f *fakeDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.onGet != nil {
		f.onGet()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	t := f.tables[aws.ToString(params.TableName)]
	return &dynamodb.GetItemOutput{Item: copyItem(t.items[t.keyOf(params.Key)])}, nil
}

func (f *fakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return nil, f.putErr
	}
	t := f.tables[aws.ToString(params.TableName)]
	key := t.keyOf(params.Item)
	if !evalCondition(aws.ToString(params.ConditionExpression), t.items[key], params.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	t.items[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if f.onUpdate != nil {
		f.onUpdate()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	t := f.tables[aws.ToString(params.TableName)]
	key := t.keyOf(params.Key)
	current := t.items[key]
	if !evalCondition(aws.ToString(params.ConditionExpression), current, params.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}

	updated := copyItem(current)
	if updated == nil {
		updated = copyItem(params.Key)
	}
	assignments := strings.TrimPrefix(aws.ToString(params.UpdateExpression), "SET ")
	for _, assignment := range strings.Split(assignments, ",") {
		parts := strings.SplitN(strings.TrimSpace(assignment), " = ", 2)
		updated[parts[0]] = params.ExpressionAttributeValues[parts[1]]
	}
	t.items[key] = updated

	out := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = copyItem(updated)
	}
	return out, nil
}

func (f *fakeDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	t := f.tables[aws.ToString(params.TableName)]
	var matched []map[string]types.AttributeValue
	for _, item := range t.items {
		if evalCondition(aws.ToString(params.KeyConditionExpression), item, params.ExpressionAttributeValues) {
			matched = append(matched, item)
		}
	}
	if params.Limit != nil || (params.ScanIndexForward != nil && !*params.ScanIndexForward) {
		// single ordered page, no continuation
		sort.Slice(matched, func(i, j int) bool { return t.keyOf(matched[i]) < t.keyOf(matched[j]) })
		if params.ScanIndexForward != nil && !*params.ScanIndexForward {
			for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
		if params.Limit != nil && len(matched) > int(*params.Limit) {
			matched = matched[:*params.Limit]
		}
		items := copyItems(matched)
		return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
	}
	page, last := f.page(t, matched, params.ExclusiveStartKey)
	return &dynamodb.QueryOutput{Items: page, Count: int32(len(page)), LastEvaluatedKey: last}, nil
}

func (f *fakeDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	t := f.tables[aws.ToString(params.TableName)]
	var all []map[string]types.AttributeValue
	for _, item := range t.items {
		all = append(all, item)
	}
	page, last := f.page(t, all, params.ExclusiveStartKey)
	var filtered []map[string]types.AttributeValue
	for _, item := range page {
		if evalCondition(aws.ToString(params.FilterExpression), item, params.ExpressionAttributeValues) {
			filtered = append(filtered, item)
		}
	}
	return &dynamodb.ScanOutput{Items: filtered, Count: int32(len(filtered)), LastEvaluatedKey: last}, nil
}

// page orders items by key, skips past start and cuts at pageSize.
func (f *fakeDynamoDB) page(t *fakeTable, items []map[string]types.AttributeValue, start map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	sort.Slice(items, func(i, j int) bool { return t.keyOf(items[i]) < t.keyOf(items[j]) })
	if start != nil {
		startKey := t.keyOf(start)
		i := 0
		for i < len(items) && t.keyOf(items[i]) <= startKey {
			i++
		}
		items = items[i:]
	}
	if f.pageSize <= 0 || len(items) <= f.pageSize {
		return copyItems(items), nil
	}
	items = items[:f.pageSize]
	lastItem := items[len(items)-1]
	last := map[string]types.AttributeValue{t.hashKey: lastItem[t.hashKey]}
	if t.rangeKey != "" {
		last[t.rangeKey] = lastItem[t.rangeKey]
	}
	return copyItems(items), last
}

func evalCondition(expr string, item, values map[string]types.AttributeValue) bool {
	if expr == "" {
		return true
	}
	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "attribute_exists("):
			name := strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_exists("), ")")
			if _, ok := item[name]; !ok {
				return false
			}
		case strings.HasPrefix(clause, "attribute_type("):
			args := strings.Split(strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_type("), ")"), ",")
			got, ok := item[strings.TrimSpace(args[0])]
			if !ok || attributeType(got) != attrString(values[strings.TrimSpace(args[1])]) {
				return false
			}
		case strings.HasPrefix(clause, "attribute_not_exists("):
			name := strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_not_exists("), ")")
			if _, ok := item[name]; ok {
				return false
			}
		case strings.Contains(clause, " >= "):
			parts := strings.SplitN(clause, " >= ", 2)
			got, ok := item[parts[0]]
			if !ok || attrString(got) < attrString(values[parts[1]]) {
				return false
			}
		case strings.Contains(clause, " = "):
			parts := strings.SplitN(clause, " = ", 2)
			got, ok := item[parts[0]]
			if !ok || attrString(got) != attrString(values[parts[1]]) {
				return false
			}
		default:
			panic("fakeDynamoDB: unsupported expression clause " + clause)
		}
	}
	return true
}

func attrString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func copyItems(items []map[string]types.AttributeValue) []map[string]types.AttributeValue {
	out := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		out = append(out, copyItem(item))
	}
	return out
}
