package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/pos-backend/internal/cfg"
	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/pos-backend/pkg/clients"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const productNamesKey = "products:names"

type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProducts возвращает закэшированные товары по имени, игнорируя промахи и логируя их
func (c *CacheRepo) GetProducts(ctx context.Context, names []string) (map[string]domain.Product, error) {
	if len(names) == 0 {
		return map[string]domain.Product{}, nil
	}

	keys := buildProductCacheKeys(names)

	values, err := c.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[string]domain.Product, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			c.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		model, err := unmarshalProductFromCache(data)
		if err != nil {
			c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if model.Name != names[i] {
			c.logger.Warnf("Cache name mismatch: key_name: %s, model_name: %s", names[i], model.Name)
			if err := c.client.Client.Del(context.Background(), keys[i]).Err(); err != nil {
				c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}
		result[names[i]] = *c.conv.ToEntity(model)
	}

	return result, nil
}

// SetProducts кэширует несколько товаров с заданным TTL одним пайплайном.
// Ошибки сериализации и записи только логируются.
func (c *CacheRepo) SetProducts(ctx context.Context, products []domain.Product) error {
	models := c.conv.ToArrRedisModel(products)

	pipeline := c.client.Client.Pipeline()
	for _, model := range models {
		data, err := json.Marshal(model)
		if err != nil {
			c.logger.Warnf("Failed to marshal product for caching (Product: %s): %v", model.Name, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		pipeline.Set(ctx, productKey(model.Name), data, c.cfg.ProductTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		c.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteProducts удаляет товары из кэша по имени
func (c *CacheRepo) DeleteProducts(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	if err := c.client.Client.Del(ctx, buildProductCacheKeys(names)...).Err(); err != nil {
		c.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// GetProductNames возвращает закэшированный список имён. ok=false — промах.
func (c *CacheRepo) GetProductNames(ctx context.Context) ([]string, bool, error) {
	data, err := c.client.Client.Get(ctx, productNamesKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, false, nil
	}

	return names, true, nil
}

func (c *CacheRepo) SetProductNames(ctx context.Context, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, productNamesKey, data, c.cfg.ProductTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) DeleteProductNames(ctx context.Context) error {
	if err := c.client.Client.Del(ctx, productNamesKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// unmarshalProductFromCache десериализует JSON из кэша в модель товара
func unmarshalProductFromCache(data []byte) (*converter.ProductRedisModel, error) {
	var model converter.ProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// buildProductCacheKeys формирует Redis-ключи из имён товаров
func buildProductCacheKeys(names []string) []string {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = productKey(name)
	}

	return keys
}

// productKey возвращает Redis-ключ для одного товара
func productKey(name string) string {
	return "product:" + name
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
