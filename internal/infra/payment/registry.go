package payment

import (
	"fmt"

	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
)

const (
	ProviderMercadoPago = "mercadopago"
	ProviderRazorpay    = "razorpay"
	ProviderLocal       = "local"
)

type Registry struct {
	gateways map[string]domain.Gateway
	def      string
}

func NewRegistry(defaultProvider string, gateways ...domain.Gateway) *Registry {
	r := &Registry{gateways: map[string]domain.Gateway{}, def: defaultProvider}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	if _, ok := r.gateways[r.def]; !ok {
		r.gateways[ProviderLocal] = Local{}
		r.def = ProviderLocal
	}
	return r
}

func (r *Registry) For(provider string) (domain.Gateway, error) {
	if provider == "" {
		return r.Default(), nil
	}
	g, ok := r.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("payment provider %q not configured", provider)
	}
	return g, nil
}

func (r *Registry) Default() domain.Gateway {
	return r.gateways[r.def]
}

var _ domain.Resolver = (*Registry)(nil)
