package campaign

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/sproutfund/protocol-core/internal/adapter"
	"github.com/sproutfund/protocol-core/internal/authority"
	"github.com/sproutfund/protocol-core/internal/chain"
	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/registry"
	"github.com/sproutfund/protocol-core/internal/relay"
	"github.com/sproutfund/protocol-core/internal/vault"
)

// Factory deploys campaigns against the shared protocol services and keeps
// the only indexes over them: the full deployment-ordered list and a
// per-creator list. Campaigns are never removed from either.
type Factory struct {
	mu      sync.Mutex
	address common.Address
	nonce   uint64

	auth     *authority.Authority
	registry *registry.TokenRegistry
	vault    *vault.Vault
	relay    *relay.Relay
	backend  chain.TokenBackend
	clock    adapter.Clock

	campaigns []*Campaign
	byCreator map[common.Address][]*Campaign
}

// FactoryConfig carries the factory's identity and the shared services it
// injects into every campaign it deploys.
type FactoryConfig struct {
	Address   common.Address
	Authority *authority.Authority
	Registry  *registry.TokenRegistry
	Vault     *vault.Vault
	Relay     *relay.Relay
	Backend   chain.TokenBackend
	Clock     adapter.Clock
}

// NewFactory constructs a factory. The factory must additionally be
// authorized on the relay before its campaigns can emit events.
func NewFactory(cfg FactoryConfig) (*Factory, error) {
	if cfg.Address == domain.ZeroAddress {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, cfg.Address)
	}
	if cfg.Authority == nil || cfg.Registry == nil || cfg.Vault == nil {
		return nil, domain.NewError(domain.ErrCodeInvalidAddress, cfg.Address)
	}
	return &Factory{
		address:   cfg.Address,
		auth:      cfg.Authority,
		registry:  cfg.Registry,
		vault:     cfg.Vault,
		relay:     cfg.Relay,
		backend:   cfg.Backend,
		clock:     cfg.Clock,
		byCreator: make(map[common.Address][]*Campaign),
	}, nil
}

// Deploy validates the creation parameters, derives a fresh address from
// the factory's deployment counter, constructs the campaign, and registers
// it with the relay so it can emit. Anyone may deploy; the caller becomes
// the campaign owner.
func (f *Factory) Deploy(ctx context.Context, creator, token common.Address, goal *uint256.Int, durationDays uint64) (*Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	addr := crypto.CreateAddress(f.address, f.nonce)

	c, err := New(Config{
		Address:      addr,
		Creator:      creator,
		Token:        token,
		Goal:         goal,
		DurationDays: durationDays,
		Authority:    f.auth,
		Registry:     f.registry,
		Vault:        f.vault,
		Relay:        f.relay,
		Backend:      f.backend,
		Clock:        f.clock,
	})
	if err != nil {
		return nil, err
	}

	if f.relay != nil {
		if err := f.relay.AuthorizeCampaignFromFactory(ctx, f.address, addr); err != nil {
			return nil, err
		}
	}

	f.nonce++
	f.campaigns = append(f.campaigns, c)
	f.byCreator[creator] = append(f.byCreator[creator], c)

	if f.relay != nil {
		_ = f.relay.EmitCampaignCreated(ctx, f.address, addr, creator, c.ID())
	}
	return c, nil
}

// Address returns the factory's identity.
func (f *Factory) Address() common.Address {
	return f.address
}

// GetAllCampaigns returns every deployed campaign in deployment order.
func (f *Factory) GetAllCampaigns() []*Campaign {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*Campaign, len(f.campaigns))
	copy(out, f.campaigns)
	return out
}

// GetCampaignsByCreator returns creator's campaigns in deployment order.
func (f *Factory) GetCampaignsByCreator(creator common.Address) []*Campaign {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.byCreator[creator]
	out := make([]*Campaign, len(list))
	copy(out, list)
	return out
}

// GetCampaignsCount returns the total number of deployed campaigns.
func (f *Factory) GetCampaignsCount() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return uint64(len(f.campaigns))
}

// GetCreatorCampaignsCount returns how many campaigns creator deployed.
func (f *Factory) GetCreatorCampaignsCount(creator common.Address) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return uint64(len(f.byCreator[creator]))
}

// GetCampaign looks a campaign up by address.
func (f *Factory) GetCampaign(addr common.Address) (*Campaign, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.campaigns {
		if c.Address() == addr {
			return c, true
		}
	}
	return nil, false
}

// GetCampaignByID looks a campaign up by its content-derived identifier.
func (f *Factory) GetCampaignByID(id domain.CampaignID) (*Campaign, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.campaigns {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}
