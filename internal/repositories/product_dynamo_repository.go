package repositories

import (
	"context"
	"fmt"
	"strings"

	"productcatalog/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoProductRepository.
type DynamoAPI interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoProductRepository stores products in a single DynamoDB table keyed by
// PK (always ProductPartition) and SK (the product ID).
type DynamoProductRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoProductRepository creates a repository over the given table.
func NewDynamoProductRepository(client DynamoAPI, table string) *DynamoProductRepository {
	return &DynamoProductRepository{
		client: client,
		table:  table,
	}
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.ProductPartition},
		"SK": &types.AttributeValueMemberS{Value: id},
	}
}

// GetAll queries every item in the product partition, following pagination.
func (r *DynamoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.ProductPartition},
		},
	})

	products := []models.Product{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query products: %w", err)
		}
		var batch []models.Product
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		products = append(products, batch...)
	}
	return products, nil
}

// GetByID reads a single product.
func (r *DynamoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       productKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}

	var product models.Product
	if err := attributevalue.UnmarshalMap(out.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &product, nil
}

// Create puts the product unconditionally.
func (r *DynamoProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.PK = models.ProductPartition
	product.SK = product.ID

	item, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update issues a single SET expression for the patched attributes. The item
// is not condition-checked, so an update racing a delete recreates the key.
func (r *DynamoProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	sets := []string{"updated_at = :updated_at"}
	values := map[string]interface{}{":updated_at": patch.UpdatedAt}
	var names map[string]string

	if patch.Name != nil {
		// name is a DynamoDB reserved word.
		sets = append(sets, "#name = :name")
		values[":name"] = *patch.Name
		names = map[string]string{"#name": "name"}
	}
	if patch.Price != nil {
		sets = append(sets, "price = :price")
		values[":price"] = *patch.Price
	}
	if patch.Description != nil {
		sets = append(sets, "description = :description")
		values[":description"] = *patch.Description
	}
	if patch.Image != nil {
		sets = append(sets, "image = :image")
		values[":image"] = *patch.Image
	}

	attrValues, err := attributevalue.MarshalMap(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode update values: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       productKey(id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeValues: attrValues,
		ExpressionAttributeNames:  names,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	var product models.Product
	if err := attributevalue.UnmarshalMap(out.Attributes, &product); err != nil {
		return nil, fmt.Errorf("failed to decode updated product %s: %w", id, err)
	}
	return &product, nil
}

// Delete removes the item and reports ErrProductNotFound when nothing was there.
func (r *DynamoProductRepository) Delete(ctx context.Context, id string) error {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table),
		Key:          productKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if len(out.Attributes) == 0 {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrProductNotFound)
	}
	return nil
}
