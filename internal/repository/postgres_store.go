package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	applogger "FinAdvise/pkg/logger"
	pkgpg "FinAdvise/pkg/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresSchema creates the read model consumed by PostgresStore.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id                  TEXT PRIMARY KEY,
		first_name          TEXT NOT NULL,
		last_name           TEXT NOT NULL,
		full_name           TEXT,
		email               TEXT,
		phone               TEXT,
		status              TEXT NOT NULL DEFAULT 'active',
		risk_tolerance      TEXT,
		onboarding_date     DATE,
		last_contact_date   DATE,
		rebalance_threshold NUMERIC(6,2)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id               TEXT PRIMARY KEY,
		client_id        TEXT NOT NULL REFERENCES clients(id),
		account_number   TEXT,
		name             TEXT,
		account_type     TEXT,
		custodian        TEXT,
		market_value     NUMERIC(15,2),
		cost_basis       NUMERIC(15,2),
		is_closed        BOOLEAN NOT NULL DEFAULT false,
		inception_date   DATE,
		is_billable      BOOLEAN NOT NULL DEFAULT true,
		is_discretionary BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS holdings (
		id           BIGSERIAL PRIMARY KEY,
		account_id   TEXT NOT NULL REFERENCES accounts(id),
		symbol       TEXT NOT NULL,
		name         TEXT,
		quantity     NUMERIC(15,4) NOT NULL,
		cost_basis   NUMERIC(15,2),
		market_value NUMERIC(15,2),
		asset_class  TEXT,
		sector       TEXT,
		as_of_date   DATE NOT NULL DEFAULT CURRENT_DATE
	)`,
	`CREATE TABLE IF NOT EXISTS allocation_targets (
		client_id      TEXT NOT NULL REFERENCES clients(id),
		asset_class    TEXT NOT NULL,
		target_percent NUMERIC(6,2) NOT NULL,
		PRIMARY KEY (client_id, asset_class)
	)`,
	`CREATE TABLE IF NOT EXISTS performance_snapshots (
		client_id         TEXT NOT NULL REFERENCES clients(id),
		period            TEXT NOT NULL,
		return_percent    NUMERIC(8,4),
		benchmark_percent NUMERIC(8,4),
		benchmark_name    TEXT,
		as_of_date        DATE NOT NULL,
		PRIMARY KEY (client_id, period, as_of_date)
	)`,
	`CREATE INDEX IF NOT EXISTS accounts_client_open_idx ON accounts (client_id) WHERE is_closed = false`,
	`CREATE INDEX IF NOT EXISTS holdings_account_idx ON holdings (account_id)`,
}

// PostgresStore implements AdvisoryStore over the relational read model.
type PostgresStore struct {
	pool *pgxpool.Pool
	l    *applogger.Logger
}

var _ domrepo.AdvisoryStore = (*PostgresStore)(nil)

func NewPostgresStore(client *pkgpg.Client, l *applogger.Logger) *PostgresStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &PostgresStore{pool: client.Pool(), l: l}
}

const pgClientColumns = `
	c.id,
	COALESCE(c.first_name, ''),
	COALESCE(c.last_name, ''),
	COALESCE(TRIM(c.full_name), ''),
	COALESCE(c.email, ''),
	COALESCE(c.phone, ''),
	COALESCE(c.status, 'active'),
	COALESCE(c.risk_tolerance, ''),
	c.onboarding_date,
	c.last_contact_date`

func (s *PostgresStore) SearchClients(ctx context.Context, query string, status models.StatusFilter, limit int) ([]models.Client, error) {
	start := time.Now()
	const search = `
		WITH client_summary AS (
			SELECT
				c.id,
				COALESCE(c.first_name, '')          AS first_name,
				COALESCE(c.last_name, '')           AS last_name,
				COALESCE(TRIM(c.full_name), '')     AS full_name,
				COALESCE(c.email, '')               AS email,
				COALESCE(c.phone, '')               AS phone,
				COALESCE(c.status, 'active')        AS status,
				COALESCE(c.risk_tolerance, '')      AS risk_tolerance,
				c.onboarding_date,
				c.last_contact_date,
				SUM(a.market_value)                 AS total_aum,
				COALESCE(bool_or(LOWER(a.account_number) LIKE $1), false) AS account_match
			FROM clients c
			LEFT JOIN accounts a ON a.client_id = c.id AND a.is_closed = false
			GROUP BY c.id
		)
		SELECT id, first_name, last_name, full_name, email, phone, status,
			risk_tolerance, onboarding_date, last_contact_date
		FROM client_summary
		WHERE (
			LOWER(first_name) LIKE $1
			OR LOWER(last_name) LIKE $1
			OR LOWER(full_name) LIKE $1
			OR LOWER(first_name || ' ' || last_name) LIKE $1
			OR LOWER(email) LIKE $1
			OR LOWER(phone) LIKE $1
			OR account_match
		)
		AND ($2 = 'all' OR status = $2)
		ORDER BY total_aum DESC NULLS LAST, COALESCE(NULLIF(full_name, ''), first_name || ' ' || last_name) ASC
		LIMIT $3
	`
	filter := string(status)
	if filter == "" {
		filter = string(models.StatusAll)
	}
	rows, err := s.pool.Query(ctx, search, likePattern(query), filter, limit)
	if err != nil {
		s.logFailure("search_clients", "query", err, applogger.String("query", query))
		return nil, classify("search clients", err)
	}
	clients, err := scanClients(rows)
	if err != nil {
		s.logFailure("search_clients", "scan", err, applogger.String("query", query))
		return nil, classify("search clients", err)
	}
	if err := s.attachAccounts(ctx, clients); err != nil {
		return nil, err
	}
	s.logOK("search_clients", start, len(clients), applogger.String("query", query), applogger.String("status", filter))
	return clients, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, idOrName string) (*models.Client, error) {
	start := time.Now()
	const q = `
		SELECT` + pgClientColumns + `
		FROM clients c
		WHERE c.id = $1
			OR LOWER(TRIM(c.full_name)) = LOWER($1)
			OR LOWER(c.first_name || ' ' || c.last_name) = LOWER($1)
		ORDER BY (c.id = $1) DESC,
			(SELECT SUM(a.market_value) FROM accounts a WHERE a.client_id = c.id AND a.is_closed = false) DESC NULLS LAST
		LIMIT 1
	`
	key := strings.TrimSpace(idOrName)
	rows, err := s.pool.Query(ctx, q, key)
	if err != nil {
		s.logFailure("get_client", "query", err, applogger.String("client", key))
		return nil, classify("get client", err)
	}
	clients, err := scanClients(rows)
	if err != nil {
		s.logFailure("get_client", "scan", err, applogger.String("client", key))
		return nil, classify("get client", err)
	}
	if len(clients) == 0 {
		s.logOK("get_client", start, 0, applogger.String("client", key))
		return nil, nil
	}
	if err := s.attachAccounts(ctx, clients); err != nil {
		return nil, err
	}
	s.logOK("get_client", start, 1, applogger.String("client", key))
	return &clients[0], nil
}

func (s *PostgresStore) ListHoldings(ctx context.Context, accountID string) ([]models.Holding, error) {
	start := time.Now()
	const q = `
		SELECT h.symbol,
			COALESCE(h.name, ''),
			h.quantity::text,
			COALESCE(h.cost_basis, 0)::text,
			COALESCE(h.market_value, 0)::text,
			COALESCE(h.asset_class, ''),
			COALESCE(h.sector, '')
		FROM holdings h
		JOIN accounts a ON a.id = h.account_id
		WHERE h.account_id = $1 AND a.is_closed = false
		ORDER BY h.market_value DESC NULLS LAST, h.symbol ASC
	`
	rows, err := s.pool.Query(ctx, q, accountID)
	if err != nil {
		s.logFailure("list_holdings", "query", err, applogger.String("account", accountID))
		return nil, classify("list holdings", err)
	}
	defer rows.Close()

	out := make([]models.Holding, 0, 16)
	for rows.Next() {
		var (
			h                      models.Holding
			qty, cost, marketValue string
		)
		if err := rows.Scan(&h.Symbol, &h.Name, &qty, &cost, &marketValue, &h.AssetClass, &h.Sector); err != nil {
			s.logFailure("list_holdings", "scan", err, applogger.String("account", accountID))
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		if h.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("holding %s quantity: %w", h.Symbol, err)
		}
		if h.CostBasis, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("holding %s cost basis: %w", h.Symbol, err)
		}
		if h.MarketValue, err = decimal.NewFromString(marketValue); err != nil {
			return nil, fmt.Errorf("holding %s market value: %w", h.Symbol, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		s.logFailure("list_holdings", "rows", err, applogger.String("account", accountID))
		return nil, classify("list holdings", err)
	}
	s.logOK("list_holdings", start, len(out), applogger.String("account", accountID))
	return out, nil
}

func (s *PostgresStore) GetAllocationPolicy(ctx context.Context, clientID string) (*models.AllocationPolicy, error) {
	start := time.Now()

	var threshold *string
	err := s.pool.QueryRow(ctx, `SELECT rebalance_threshold::text FROM clients WHERE id = $1`, clientID).Scan(&threshold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logFailure("allocation_policy", "query", err, applogger.String("client", clientID))
		return nil, classify("allocation policy", err)
	}

	policy := &models.AllocationPolicy{ClientID: clientID}
	if policy.Threshold, err = parseNullDecimal(threshold); err != nil {
		return nil, fmt.Errorf("rebalance threshold: %w", err)
	}

	const targets = `
		SELECT asset_class, target_percent::text
		FROM allocation_targets
		WHERE client_id = $1
	`
	if policy.Target, err = s.weights(ctx, targets, clientID); err != nil {
		s.logFailure("allocation_policy", "targets", err, applogger.String("client", clientID))
		return nil, classify("allocation targets", err)
	}

	const actual = `
		SELECT COALESCE(NULLIF(TRIM(h.asset_class), ''), 'Unclassified') AS asset_class,
			COALESCE(SUM(h.market_value), 0)::text
		FROM holdings h
		JOIN accounts a ON a.id = h.account_id
		WHERE a.client_id = $1 AND a.is_closed = false
		GROUP BY 1
	`
	values, err := s.weights(ctx, actual, clientID)
	if err != nil {
		s.logFailure("allocation_policy", "actual", err, applogger.String("client", clientID))
		return nil, classify("allocation actual", err)
	}
	policy.Actual = AllocationFromValues(values)

	s.logOK("allocation_policy", start, len(policy.Target)+len(policy.Actual), applogger.String("client", clientID))
	return policy, nil
}

func (s *PostgresStore) ListPerformance(ctx context.Context, clientID string) ([]models.PerformancePeriod, error) {
	start := time.Now()
	const q = `
		SELECT period,
			COALESCE(return_percent, 0)::text,
			COALESCE(benchmark_percent, 0)::text,
			COALESCE(benchmark_name, '')
		FROM performance_snapshots
		WHERE client_id = $1
			AND as_of_date = (SELECT MAX(as_of_date) FROM performance_snapshots WHERE client_id = $1)
	`
	rows, err := s.pool.Query(ctx, q, clientID)
	if err != nil {
		s.logFailure("list_performance", "query", err, applogger.String("client", clientID))
		return nil, classify("list performance", err)
	}
	defer rows.Close()

	out := make([]models.PerformancePeriod, 0, len(models.PerformancePeriods))
	for rows.Next() {
		var (
			p        models.PerformancePeriod
			ret, bmk string
		)
		if err := rows.Scan(&p.Period, &ret, &bmk, &p.BenchmarkName); err != nil {
			s.logFailure("list_performance", "scan", err, applogger.String("client", clientID))
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		if p.Return, err = decimal.NewFromString(ret); err != nil {
			return nil, fmt.Errorf("performance %s return: %w", p.Period, err)
		}
		if p.Benchmark, err = decimal.NewFromString(bmk); err != nil {
			return nil, fmt.Errorf("performance %s benchmark: %w", p.Period, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logFailure("list_performance", "rows", err, applogger.String("client", clientID))
		return nil, classify("list performance", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return models.PeriodRank(out[i].Period) < models.PeriodRank(out[j].Period)
	})
	s.logOK("list_performance", start, len(out), applogger.String("client", clientID))
	return out, nil
}

// attachAccounts loads the open accounts of every client in one round trip.
func (s *PostgresStore) attachAccounts(ctx context.Context, clients []models.Client) error {
	if len(clients) == 0 {
		return nil
	}
	ids := make([]string, len(clients))
	index := make(map[string]int, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
		index[c.ID] = i
	}

	const q = `
		SELECT client_id, id,
			COALESCE(account_number, ''),
			COALESCE(name, ''),
			COALESCE(account_type, ''),
			COALESCE(custodian, ''),
			market_value::text,
			COALESCE(cost_basis, 0)::text,
			inception_date,
			is_billable,
			is_discretionary
		FROM accounts
		WHERE client_id = ANY($1) AND is_closed = false
		ORDER BY market_value DESC NULLS LAST, id ASC
	`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		s.logFailure("client_accounts", "query", err, applogger.Int("clients", len(ids)))
		return classify("client accounts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			clientID    string
			a           models.Account
			marketValue *string
			cost        string
		)
		if err := rows.Scan(&clientID, &a.ID, &a.AccountNumber, &a.Name, &a.Type, &a.Custodian,
			&marketValue, &cost, &a.InceptionDate, &a.IsBillable, &a.IsDiscretionary); err != nil {
			s.logFailure("client_accounts", "scan", err, applogger.Int("clients", len(ids)))
			return fmt.Errorf("scan account: %w", err)
		}
		if a.MarketValue, err = parseNullDecimal(marketValue); err != nil {
			return fmt.Errorf("account %s market value: %w", a.ID, err)
		}
		if a.CostBasis, err = decimal.NewFromString(cost); err != nil {
			return fmt.Errorf("account %s cost basis: %w", a.ID, err)
		}
		i := index[clientID]
		clients[i].Accounts = append(clients[i].Accounts, a)
	}
	if err := rows.Err(); err != nil {
		s.logFailure("client_accounts", "rows", err, applogger.Int("clients", len(ids)))
		return classify("client accounts", err)
	}
	return nil
}

func (s *PostgresStore) weights(ctx context.Context, q string, clientID string) (map[string]decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			class string
			raw   string
		)
		if err := rows.Scan(&class, &raw); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("weight %s: %w", class, err)
		}
		out[class] = v
	}
	return out, rows.Err()
}

func scanClients(rows pgx.Rows) ([]models.Client, error) {
	defer rows.Close()
	out := make([]models.Client, 0, 8)
	for rows.Next() {
		var (
			c      models.Client
			status string
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.FullName, &c.Email, &c.Phone,
			&status, &c.RiskTolerance, &c.OnboardingDate, &c.LastContactDate); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.Status = models.ClientStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) logFailure(op, stage string, err error, fields ...applogger.Field) {
	fields = append(fields, applogger.String("op", op), applogger.String("stage", stage), applogger.Error(err))
	s.l.Error("postgres "+op+" "+stage+" error", fields...)
}

func (s *PostgresStore) logOK(op string, start time.Time, rows int, fields ...applogger.Field) {
	fields = append(fields, applogger.Int("rows", rows), applogger.Duration("duration_ms", time.Since(start)))
	s.l.Debug("postgres "+op+" ok", fields...)
}
