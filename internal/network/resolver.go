// Package network resolves a configured chain ID to an RPC client, the
// same role internal/network.Resolver plays for internal/core/services's
// payment verification in the teacher — generalized here to the anchor
// component's EVM/Solana root-publishing, rather than payment-rail
// verification.
package network

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	solanarpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/jackfredericksen/fantasma/internal/apperr"
)

// EVMChain is one configured EVM RPC endpoint.
type EVMChain struct {
	ChainID int
	RPCURL  string
}

// SolanaCluster is one configured Solana RPC endpoint.
type SolanaCluster struct {
	ChainID int
	RPCURL  string
}

// Resolver maps a configured chain ID to a connected client, lazily
// dialing and caching the connection on first use.
type Resolver interface {
	EthClient(chainID int) (*ethclient.Client, error)
	SolanaClient(chainID int) (*solanarpc.Client, error)
}

type resolver struct {
	mu      sync.Mutex
	evm     map[int]string
	solana  map[int]string
	ethConn map[int]*ethclient.Client
	solConn map[int]*solanarpc.Client
}

// NewResolver constructs a Resolver over the configured EVM and Solana
// endpoints (internal/config's Chains section).
func NewResolver(evmChains []EVMChain, solanaClusters []SolanaCluster) Resolver {
	r := &resolver{
		evm:     make(map[int]string),
		solana:  make(map[int]string),
		ethConn: make(map[int]*ethclient.Client),
		solConn: make(map[int]*solanarpc.Client),
	}
	for _, c := range evmChains {
		r.evm[c.ChainID] = c.RPCURL
	}
	for _, c := range solanaClusters {
		r.solana[c.ChainID] = c.RPCURL
	}
	return r
}

func (r *resolver) EthClient(chainID int) (*ethclient.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.ethConn[chainID]; ok {
		return c, nil
	}
	url, ok := r.evm[chainID]
	if !ok {
		return nil, apperr.Configuration(fmt.Sprintf("no RPC endpoint configured for EVM chain %d", chainID), nil)
	}
	client, err := ethclient.Dial(url)
	if err != nil {
		return nil, apperr.Unavailable("ethereum client dial failed", err)
	}
	r.ethConn[chainID] = client
	return client, nil
}

func (r *resolver) SolanaClient(chainID int) (*solanarpc.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.solConn[chainID]; ok {
		return c, nil
	}
	url, ok := r.solana[chainID]
	if !ok {
		return nil, apperr.Configuration(fmt.Sprintf("no RPC endpoint configured for Solana chain %d", chainID), nil)
	}
	client := solanarpc.New(url)
	r.solConn[chainID] = client
	return client, nil
}
