package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	dblib "github.com/jackfredericksen/fantasma/internal/db"
)

// demoClients seeds two relying-party clients, matching fantasma-server's
// own state bootstrap (two demo clients registered at startup).
func demoClients() []*domain.ClientInfo {
	return []*domain.ClientInfo{
		{
			ClientID:     "demo-relying-party",
			ClientName:   "Demo Relying Party",
			RedirectURIs: []string{"https://relay.example.com/callback"},
		},
		{
			ClientID:     "demo-age-gate",
			ClientName:   "Demo Age Gate",
			RedirectURIs: []string{"https://agegate.example.com/oauth/callback", "http://localhost:8081/callback"},
		},
		{
			ClientID:     "demo-client",
			ClientName:   "Local Demo Client",
			RedirectURIs: []string{"http://localhost:8080/callback"},
		},
	}
}

// MemoryClientRepository implements ports.ClientRepository over an
// in-memory map seeded with the two demo clients.
type MemoryClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.ClientInfo
}

// NewMemoryClientRepository constructs a MemoryClientRepository seeded with
// demoClients.
func NewMemoryClientRepository() *MemoryClientRepository {
	r := &MemoryClientRepository{clients: make(map[string]*domain.ClientInfo)}
	for _, c := range demoClients() {
		r.clients[c.ClientID] = c
	}
	return r
}

func (r *MemoryClientRepository) Get(ctx context.Context, clientID string) (*domain.ClientInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[clientID]
	if !ok {
		return nil, apperr.NotFound("client not registered", nil)
	}
	return c, nil
}

func (r *MemoryClientRepository) List(ctx context.Context) ([]*domain.ClientInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.ClientInfo, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryClientRepository) Register(ctx context.Context, client *domain.ClientInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ClientID] = client
	return nil
}

// PostgresClientRepository implements ports.ClientRepository over the
// clients table.
type PostgresClientRepository struct {
	storage *dblib.Storage
}

// NewPostgresClientRepository constructs a PostgresClientRepository.
func NewPostgresClientRepository(storage *dblib.Storage) *PostgresClientRepository {
	return &PostgresClientRepository{storage: storage}
}

// SeedDemoClients inserts the demo clients with ON CONFLICT DO NOTHING,
// mirroring the in-memory repository's startup seed for deployments backed
// by postgres.
func (r *PostgresClientRepository) SeedDemoClients(ctx context.Context) error {
	for _, c := range demoClients() {
		if err := r.Register(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresClientRepository) Get(ctx context.Context, clientID string) (*domain.ClientInfo, error) {
	row := r.storage.Pgx.QueryRow(ctx,
		`SELECT client_id, client_name, redirect_uris FROM clients WHERE client_id = $1`, clientID)

	var c domain.ClientInfo
	var uris string
	if err := row.Scan(&c.ClientID, &c.ClientName, &uris); err != nil {
		if dblib.IsNoRows(err) {
			return nil, apperr.NotFound("client not registered", nil)
		}
		return nil, apperr.ServerError("client fetch failed", err)
	}
	c.RedirectURIs = strings.Split(uris, " ")
	return &c, nil
}

func (r *PostgresClientRepository) List(ctx context.Context) ([]*domain.ClientInfo, error) {
	rows, err := r.storage.Pgx.Query(ctx, `SELECT client_id, client_name, redirect_uris FROM clients ORDER BY client_id`)
	if err != nil {
		return nil, apperr.ServerError("client list failed", err)
	}
	defer rows.Close()

	var out []*domain.ClientInfo
	for rows.Next() {
		var c domain.ClientInfo
		var uris string
		if err := rows.Scan(&c.ClientID, &c.ClientName, &uris); err != nil {
			return nil, apperr.ServerError("client scan failed", err)
		}
		c.RedirectURIs = strings.Split(uris, " ")
		out = append(out, &c)
	}
	return out, nil
}

func (r *PostgresClientRepository) Register(ctx context.Context, client *domain.ClientInfo) error {
	_, err := r.storage.Pgx.Exec(ctx,
		`INSERT INTO clients (client_id, client_name, redirect_uris) VALUES ($1, $2, $3)
		 ON CONFLICT (client_id) DO UPDATE SET client_name = $2, redirect_uris = $3`,
		client.ClientID, client.ClientName, strings.Join(client.RedirectURIs, " "))
	if err != nil {
		return apperr.ServerError("client register failed", err)
	}
	return nil
}
