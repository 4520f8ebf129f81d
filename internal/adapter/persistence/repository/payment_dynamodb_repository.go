package repository

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"payment_records/internal/domain/entities"
	"payment_records/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPaymentsTableName   = "payments"
	defaultDebitCodesTableName = "payment_debit_codes"
	conditionalCheckFailed     = "ConditionalCheckFailed"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by the repository.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

type paymentItem struct {
	ID            string  `dynamodbav:"id"`
	DebitCode     int64   `dynamodbav:"debit_code"`
	PayerDocument string  `dynamodbav:"payer_document"`
	Method        string  `dynamodbav:"payment_method"`
	CardNumber    *string `dynamodbav:"card_number,omitempty"`
	Amount        string  `dynamodbav:"amount"`
	Status        string  `dynamodbav:"status"`
	Active        bool    `dynamodbav:"active"`
	Version       int64   `dynamodbav:"version"`
	CreatedAt     string  `dynamodbav:"created_at"`
	UpdatedAt     string  `dynamodbav:"updated_at"`
}

type debitCodeItem struct {
	DebitCode int64  `dynamodbav:"debit_code"`
	PaymentID string `dynamodbav:"payment_id"`
}

// PaymentDynamoRepository persists Payment entities in DynamoDB.
//
// Table requirements (created by Migrate):
//   - payments: PK id (string)
//   - payment_debit_codes: PK debit_code (number), one guard item per debit code
//
// DynamoDB has no interactive transactions. Inserts write the payment and its
// debit code guard in one TransactWriteItems, both conditioned on not existing;
// updates are conditioned on the version that was read.

type PaymentDynamoRepository struct {
	ddb             DynamoDBAPI
	tableName       string
	debitCodesTable string
	newID           func() string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb DynamoDBAPI) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:             ddb,
		tableName:       getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
		debitCodesTable: getenvDefault("PAYMENT_DEBIT_CODES_TABLE", defaultDebitCodesTableName),
		newID:           uuid.NewString,
	}
}

// Migrate creates both tables when they do not exist yet.
func (r *PaymentDynamoRepository) Migrate(ctx context.Context) error {
	tables := []struct {
		name    string
		key     string
		keyType types.ScalarAttributeType
	}{
		{r.tableName, "id", types.ScalarAttributeTypeS},
		{r.debitCodesTable, "debit_code", types.ScalarAttributeTypeN},
	}

	for _, t := range tables {
		_, err := r.ddb.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(t.name),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(t.key), AttributeType: t.keyType},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(t.key), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		})
		var inUse *types.ResourceInUseException
		if err != nil && !errors.As(err, &inUse) {
			return err
		}
	}
	return nil
}

// WithinTransaction runs fn directly; atomicity comes from the conditional writes in Save.
func (r *PaymentDynamoRepository) WithinTransaction(_ context.Context, fn func(repo interfaces.IPaymentRepository) error) error {
	return fn(r)
}

func (r *PaymentDynamoRepository) FindByDebitCode(ctx context.Context, debitCode int64) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.debitCodesTable),
		Key: map[string]types.AttributeValue{
			"debit_code": &types.AttributeValueMemberN{Value: strconv.FormatInt(debitCode, 10)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}

	var guard debitCodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		return entities.Payment{}, err
	}
	return r.FindByID(ctx, guard.PaymentID)
}

func (r *PaymentDynamoRepository) FindByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it)
}

func (r *PaymentDynamoRepository) FindActiveByID(ctx context.Context, id string) (entities.Payment, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if !p.State.Active {
		return entities.Payment{}, nil
	}
	return p, nil
}

func (r *PaymentDynamoRepository) FindAll(ctx context.Context, filter entities.PaymentFilter) ([]entities.Payment, error) {
	expr, values, names := buildPaymentScanFilter(filter)
	paginator := dynamodb.NewScanPaginator(r.ddb, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  names,
		ConsistentRead:            aws.Bool(true),
	})

	items := make([]entities.Payment, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			var it paymentItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			p, err := fromPaymentItem(it)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
	}

	// Scan order is not stable across pages; sort like the SQL gateway does.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *PaymentDynamoRepository) Save(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if p.ID == "" {
		return r.insert(ctx, p)
	}
	return r.update(ctx, p)
}

func (r *PaymentDynamoRepository) insert(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	p.ID = r.newID()
	p.Version = 1

	paymentAV, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.Payment{}, err
	}
	guardAV, err := attributevalue.MarshalMap(debitCodeItem{DebitCode: p.DebitCode, PaymentID: p.ID})
	if err != nil {
		return entities.Payment{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     paymentAV,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.debitCodesTable),
				Item:                     guardAV,
				ConditionExpression:      aws.String("attribute_not_exists(#debit_code)"),
				ExpressionAttributeNames: map[string]string{"#debit_code": "debit_code"},
			}},
		},
	})
	if err != nil {
		if isDebitCodeTaken(err) {
			log.Printf("[payment][repository] debit code guard rejected insert debit_code=%d", p.DebitCode)
			return entities.Payment{}, interfaces.ErrDuplicateDebitCode
		}
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) update(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: p.ID},
		},
		ConditionExpression: aws.String("attribute_exists(#id) AND #version = :version"),
		UpdateExpression:    aws.String("SET #status = :status, #active = :active, #version = :next_version, #updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":       &types.AttributeValueMemberS{Value: string(p.State.Status)},
			":active":       &types.AttributeValueMemberBOOL{Value: p.State.Active},
			":version":      &types.AttributeValueMemberN{Value: strconv.FormatInt(p.Version, 10)},
			":next_version": &types.AttributeValueMemberN{Value: strconv.FormatInt(p.Version+1, 10)},
			":updated_at":   &types.AttributeValueMemberS{Value: p.UpdatedAt.UTC().Format(time.RFC3339Nano)},
		},
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#status":     "status",
			"#active":     "active",
			"#version":    "version",
			"#updated_at": "updated_at",
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Payment{}, interfaces.ErrConcurrentUpdate
		}
		return entities.Payment{}, err
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it)
}

func (r *PaymentDynamoRepository) Ping(ctx context.Context) error {
	_, err := r.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	return err
}

// isDebitCodeTaken reports whether the guard put (second transact item) failed its condition.
func isDebitCodeTaken(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	if len(tce.CancellationReasons) < 2 {
		return false
	}
	return aws.ToString(tce.CancellationReasons[1].Code) == conditionalCheckFailed
}

func buildPaymentScanFilter(filter entities.PaymentFilter) (string, map[string]types.AttributeValue, map[string]string) {
	conds := []string{"#active = :active"}
	values := map[string]types.AttributeValue{
		":active": &types.AttributeValueMemberBOOL{Value: true},
	}
	names := map[string]string{"#active": "active"}

	if filter.DebitCode != nil {
		conds = append(conds, "#debit_code = :debit_code")
		values[":debit_code"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*filter.DebitCode, 10)}
		names["#debit_code"] = "debit_code"
	}
	if filter.PayerDocument != nil {
		conds = append(conds, "#payer_document = :payer_document")
		values[":payer_document"] = &types.AttributeValueMemberS{Value: *filter.PayerDocument}
		names["#payer_document"] = "payer_document"
	}
	if filter.Status != nil {
		conds = append(conds, "#status = :status")
		values[":status"] = &types.AttributeValueMemberS{Value: string(*filter.Status)}
		names["#status"] = "status"
	}
	return strings.Join(conds, " AND "), values, names
}

func toPaymentItem(p entities.Payment) paymentItem {
	return paymentItem{
		ID:            p.ID,
		DebitCode:     p.DebitCode,
		PayerDocument: p.PayerDocument,
		Method:        string(p.Method),
		CardNumber:    p.CardNumber,
		Amount:        p.Amount.StringFixed(amountScale),
		Status:        string(p.State.Status),
		Active:        p.State.Active,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromPaymentItem(it paymentItem) (entities.Payment, error) {
	amount, err := decimal.NewFromString(it.Amount)
	if err != nil {
		return entities.Payment{}, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Payment{
		ID:            it.ID,
		DebitCode:     it.DebitCode,
		PayerDocument: it.PayerDocument,
		Method:        entities.PaymentMethod(it.Method),
		CardNumber:    it.CardNumber,
		Amount:        amount.Round(amountScale),
		State: entities.PaymentState{
			Status: entities.PaymentStatus(it.Status),
			Active: it.Active,
		},
		Version:   it.Version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
