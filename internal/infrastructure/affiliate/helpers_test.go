package affiliate

import (
	"time"

	"github.com/creatorhub/backend/internal/infrastructure/config"
	"github.com/creatorhub/backend/internal/infrastructure/vendorhttp"
)

func newTestTransport(name string) *vendorhttp.Transport {
	return vendorhttp.New(name, config.VendorConfig{
		Timeout:            5 * time.Second,
		BreakerMaxFailures: 5,
		BreakerTimeout:     time.Minute,
	}, nil)
}
