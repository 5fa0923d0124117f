package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"eventsink/internal/events"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStoreConfig holds configuration for DynamoStore.
type DynamoStoreConfig struct {
	EventTable string
	KeyTable   string
	Region     string
	Endpoint   string // Optional custom endpoint (DynamoDB Local, LocalStack)
}

// DynamoStore keeps events and API keys in DynamoDB tables. The event table
// is keyed by ts_day (partition) and ts (sort); the key table by key.
type DynamoStore struct {
	client     DynamoAPI
	eventTable string
	keyTable   string
}

// NewDynamoStore loads AWS configuration and creates a DynamoDB-backed store.
func NewDynamoStore(ctx context.Context, cfg DynamoStoreConfig) (*DynamoStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewDynamoStoreWithClient(client, cfg.EventTable, cfg.KeyTable), nil
}

// NewDynamoStoreWithClient wraps an existing client.
func NewDynamoStoreWithClient(client DynamoAPI, eventTable, keyTable string) *DynamoStore {
	return &DynamoStore{client: client, eventTable: eventTable, keyTable: keyTable}
}

// SourceForKey reads the key record with an eventually consistent read.
func (s *DynamoStore) SourceForKey(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.keyTable),
		Key:            map[string]types.AttributeValue{"key": &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("dynamodb get key: %w", err)
	}
	if out.Item == nil {
		return "", nil
	}
	src, ok := out.Item["src"].(*types.AttributeValueMemberS)
	if !ok {
		return "", nil
	}
	return src.Value, nil
}

// PutEvent writes rec as a single item.
func (s *DynamoStore) PutEvent(ctx context.Context, rec events.Record) error {
	data, err := toAttributeValue(rec.Data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.eventTable),
		Item: map[string]types.AttributeValue{
			"ts_day": &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.TsDay, 10)},
			"ts":     &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.Ts, 10)},
			"type":   &types.AttributeValueMemberS{Value: rec.Type},
			"src":    &types.AttributeValueMemberS{Value: rec.Src},
			"data":   data,
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb put event: %w", err)
	}
	return nil
}

// QueryDay pages through every item with the given ts_day.
func (s *DynamoStore) QueryDay(ctx context.Context, tsDay int64) ([]events.Record, error) {
	p := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                aws.String(s.eventTable),
		KeyConditionExpression:   aws.String("#d = :d"),
		ExpressionAttributeNames: map[string]string{"#d": "ts_day"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: strconv.FormatInt(tsDay, 10)},
		},
	})

	var recs []events.Record
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb query events: %w", err)
		}
		for _, item := range page.Items {
			rec, err := recordFromItem(item)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func recordFromItem(item map[string]types.AttributeValue) (events.Record, error) {
	var rec events.Record
	var err error
	if rec.TsDay, err = intAttr(item, "ts_day"); err != nil {
		return rec, err
	}
	if rec.Ts, err = intAttr(item, "ts"); err != nil {
		return rec, err
	}
	if v, ok := item["type"].(*types.AttributeValueMemberS); ok {
		rec.Type = v.Value
	}
	if v, ok := item["src"].(*types.AttributeValueMemberS); ok {
		rec.Src = v.Value
	}
	if av, ok := item["data"]; ok {
		if rec.Data, err = fromAttributeValue(av); err != nil {
			return rec, fmt.Errorf("decode event %d/%d data: %w", rec.TsDay, rec.Ts, err)
		}
	}
	return rec, nil
}

func intAttr(item map[string]types.AttributeValue, name string) (int64, error) {
	n, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("item attribute %s is not a number", name)
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item attribute %s: %w", name, err)
	}
	return v, nil
}

// toAttributeValue maps a decoded JSON value to a DynamoDB attribute value.
// json.Number keeps its exact text as an N attribute.
func toAttributeValue(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}, nil
	case string:
		return &types.AttributeValueMemberS{Value: t}, nil
	case json.Number:
		return &types.AttributeValueMemberN{Value: t.String()}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(t, 'g', -1, 64)}, nil
	case []any:
		l := make([]types.AttributeValue, len(t))
		for i, e := range t {
			av, err := toAttributeValue(e)
			if err != nil {
				return nil, err
			}
			l[i] = av
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	case map[string]any:
		m := make(map[string]types.AttributeValue, len(t))
		for k, e := range t {
			av, err := toAttributeValue(e)
			if err != nil {
				return nil, err
			}
			m[k] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// fromAttributeValue is the inverse of toAttributeValue. Numbers come back
// as json.Number; sets become lists.
func fromAttributeValue(av types.AttributeValue) (any, error) {
	switch t := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberBOOL:
		return t.Value, nil
	case *types.AttributeValueMemberS:
		return t.Value, nil
	case *types.AttributeValueMemberN:
		return json.Number(t.Value), nil
	case *types.AttributeValueMemberL:
		l := make([]any, len(t.Value))
		for i, e := range t.Value {
			v, err := fromAttributeValue(e)
			if err != nil {
				return nil, err
			}
			l[i] = v
		}
		return l, nil
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(t.Value))
		for k, e := range t.Value {
			v, err := fromAttributeValue(e)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	case *types.AttributeValueMemberSS:
		l := make([]any, len(t.Value))
		for i, s := range t.Value {
			l[i] = s
		}
		return l, nil
	case *types.AttributeValueMemberNS:
		l := make([]any, len(t.Value))
		for i, s := range t.Value {
			l[i] = json.Number(s)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %T", av)
	}
}
