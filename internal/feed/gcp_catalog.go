package feed

import (
	"context"
	"fmt"
	"time"

	billing "cloud.google.com/go/billing/apiv1"
	billingpb "cloud.google.com/go/billing/apiv1/billingpb"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// computeEngineService is the Cloud Catalog service ID for Compute Engine.
const computeEngineService = "services/6F81-5844-456A"

// CloudCatalogConfig configures the Cloud Catalog feed client.
type CloudCatalogConfig struct {
	// ServiceID overrides the catalog service to list SKUs for.
	ServiceID string
	// CredentialsJSON holds service account credentials; empty uses
	// application default credentials.
	CredentialsJSON string
	// RequestTimeout bounds one full catalog listing.
	RequestTimeout time.Duration
}

// CloudCatalogSource fetches raw SKU records from the Cloud Billing Catalog
// API. One FetchSKUs call pages through the complete SKU listing of the
// configured service.
type CloudCatalogSource struct {
	client    *billing.CloudCatalogClient
	serviceID string
	timeout   time.Duration
	log       *zap.Logger
}

// NewCloudCatalogSource creates a catalog feed client.
func NewCloudCatalogSource(ctx context.Context, cfg CloudCatalogConfig, log *zap.Logger) (*CloudCatalogSource, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := billing.NewCloudCatalogClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	serviceID := cfg.ServiceID
	if serviceID == "" {
		serviceID = computeEngineService
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &CloudCatalogSource{
		client:    client,
		serviceID: serviceID,
		timeout:   timeout,
		log:       log,
	}, nil
}

// FetchSKUs pages through the service's SKU listing.
func (s *CloudCatalogSource) FetchSKUs(ctx context.Context) ([]SKU, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &billingpb.ListSkusRequest{Parent: s.serviceID}
	it := s.client.ListSkus(ctx, req)

	var skus []SKU
	for {
		sku, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list skus: %w", err)
		}
		skus = append(skus, mapSKU(sku))
	}

	s.log.Info("fetched pricing feed",
		zap.String("service", s.serviceID),
		zap.Int("skus", len(skus)))
	return skus, nil
}

// mapSKU converts a catalog SKU proto into the feed record the normalizer
// consumes. Only the first pricing expression is considered; its tiered rates
// carry the fixed-point unit prices.
func mapSKU(sku *billingpb.Sku) SKU {
	out := SKU{
		SKUID:       sku.GetSkuId(),
		Description: sku.GetDescription(),
		Regions:     sku.GetServiceRegions(),
	}

	info := sku.GetPricingInfo()
	if len(info) == 0 {
		return out
	}
	expr := info[0].GetPricingExpression()
	if expr == nil {
		return out
	}

	out.UsageUnit = expr.GetUsageUnit()
	for _, rate := range expr.GetTieredRates() {
		price := rate.GetUnitPrice()
		if price == nil {
			continue
		}
		out.Tiers = append(out.Tiers, PricingTier{
			StartUsageAmount: rate.GetStartUsageAmount(),
			Price: UnitPrice{
				Units:        price.GetUnits(),
				Nanos:        price.GetNanos(),
				CurrencyCode: price.GetCurrencyCode(),
			},
		})
	}
	return out
}

// Close releases the underlying API client.
func (s *CloudCatalogSource) Close() error {
	return s.client.Close()
}
