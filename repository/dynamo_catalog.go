package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"storefront/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

type dynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoCatalogSource reads the catalog from two DynamoDB tables keyed by a
// numeric "id".
type DynamoCatalogSource struct {
	client        dynamoAPI
	productTable  string
	categoryTable string
}

func NewDynamoCatalogSource(client dynamoAPI, productTable, categoryTable string) *DynamoCatalogSource {
	return &DynamoCatalogSource{client: client, productTable: productTable, categoryTable: categoryTable}
}

type ddbCategory struct {
	ID   int64  `dynamodbav:"id"`
	Name string `dynamodbav:"name"`
}

type ddbProduct struct {
	ID          int64   `dynamodbav:"id"`
	Title       string  `dynamodbav:"title"`
	Description string  `dynamodbav:"description"`
	Price       float64 `dynamodbav:"price"`
	Image       string  `dynamodbav:"image"`
	CategoryID  int64   `dynamodbav:"category_id"`
	// Rating is stored as serialized JSON text.
	Rating string `dynamodbav:"rating"`
}

func (d *DynamoCatalogSource) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var rows []ddbCategory
	if err := d.scanAll(ctx, d.categoryTable, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	categories := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		if r.ID <= 0 || r.Name == "" {
			return nil, fmt.Errorf("failed to fetch categories: malformed category %d", r.ID)
		}
		categories = append(categories, models.Category{ID: r.ID, Name: r.Name})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (d *DynamoCatalogSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	categories, err := d.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	var rows []ddbProduct
	if err := d.scanAll(ctx, d.productTable, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		p, err := d.toModel(r, byID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch products: %w", err)
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (d *DynamoCatalogSource) FetchProduct(ctx context.Context, id int64) (*models.Product, error) {
	var row ddbProduct
	found, err := d.getItem(ctx, d.productTable, id, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}

	byID := map[int64]models.Category{}
	var cat ddbCategory
	if ok, err := d.getItem(ctx, d.categoryTable, row.CategoryID, &cat); err == nil && ok {
		byID[cat.ID] = models.Category{ID: cat.ID, Name: cat.Name}
	}

	p, err := d.toModel(row, byID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

func (d *DynamoCatalogSource) toModel(r ddbProduct, categories map[int64]models.Category) (models.Product, error) {
	rating, err := models.ParseRating(r.Rating)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %d: %w", r.ID, err)
	}
	category, ok := categories[r.CategoryID]
	if !ok {
		category = models.Category{ID: r.CategoryID}
	}
	p := models.Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       decimal.NewFromFloat(r.Price),
		Image:       r.Image,
		CategoryID:  r.CategoryID,
		Category:    category,
		Rating:      rating,
	}
	return p, p.Validate()
}

func (d *DynamoCatalogSource) scanAll(ctx context.Context, table string, out interface{}) error {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{TableName: &table})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("dynamodb Scan %s failed: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("unmarshal %s items: %w", table, err)
	}
	return nil
}

func (d *DynamoCatalogSource) getItem(ctx context.Context, table string, id int64, out interface{}) (bool, error) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
	resp, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &table, Key: key})
	if err != nil {
		return false, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(resp.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal item: %w", err)
	}
	return true, nil
}
