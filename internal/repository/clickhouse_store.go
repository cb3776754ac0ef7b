package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	pkgch "FinAdvise/pkg/clickhouse"
	applogger "FinAdvise/pkg/logger"

	"github.com/shopspring/decimal"
)

// ClickHouseSchema creates the analytical replica of the advisory read model.
func ClickHouseSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.clients (
			id String, first_name String, last_name String, full_name Nullable(String),
			email Nullable(String), phone Nullable(String), status LowCardinality(String),
			risk_tolerance Nullable(String), onboarding_date Nullable(Date), last_contact_date Nullable(Date),
			rebalance_threshold Nullable(Decimal(6,2))
		) ENGINE = ReplacingMergeTree ORDER BY id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.accounts (
			id String, client_id String, account_number Nullable(String), name Nullable(String),
			account_type Nullable(String), custodian Nullable(String),
			market_value Nullable(Decimal(15,2)), cost_basis Nullable(Decimal(15,2)),
			is_closed UInt8, inception_date Nullable(Date), is_billable UInt8, is_discretionary UInt8
		) ENGINE = ReplacingMergeTree ORDER BY (client_id, id)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.holdings (
			account_id String, symbol String, name Nullable(String), quantity Decimal(15,4),
			cost_basis Nullable(Decimal(15,2)), market_value Nullable(Decimal(15,2)),
			asset_class Nullable(String), sector Nullable(String), as_of_date Date
		) ENGINE = ReplacingMergeTree ORDER BY (account_id, symbol)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.allocation_targets (
			client_id String, asset_class String, target_percent Decimal(6,2)
		) ENGINE = ReplacingMergeTree ORDER BY (client_id, asset_class)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.performance_snapshots (
			client_id String, period LowCardinality(String), return_percent Nullable(Decimal(8,4)),
			benchmark_percent Nullable(Decimal(8,4)), benchmark_name Nullable(String), as_of_date Date
		) ENGINE = ReplacingMergeTree ORDER BY (client_id, as_of_date, period)`, database),
	}
}

// CHAdvisoryStore implements AdvisoryStore backed by ClickHouse.
type CHAdvisoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.AdvisoryStore = (*CHAdvisoryStore)(nil)

func NewCHAdvisoryStore(ch *pkgch.Client, l *applogger.Logger) *CHAdvisoryStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHAdvisoryStore{db: ch.DB(), l: l}
}

const chClientColumns = `
	c.id,
	c.first_name,
	c.last_name,
	trimBoth(ifNull(c.full_name, '')) AS full_name_t,
	ifNull(c.email, ''),
	ifNull(c.phone, ''),
	c.status,
	ifNull(c.risk_tolerance, ''),
	c.onboarding_date,
	c.last_contact_date`

func (s *CHAdvisoryStore) SearchClients(ctx context.Context, query string, status models.StatusFilter, limit int) ([]models.Client, error) {
	start := time.Now()
	const q = `
		SELECT` + chClientColumns + `
		FROM clients AS c
		LEFT JOIN (
			SELECT client_id,
				sumOrNull(market_value) AS total_aum,
				max(lower(ifNull(account_number, '')) LIKE $1) AS account_match
			FROM accounts
			WHERE is_closed = 0
			GROUP BY client_id
		) AS a ON a.client_id = c.id
		WHERE (
			lower(c.first_name) LIKE $1
			OR lower(c.last_name) LIKE $1
			OR lower(full_name_t) LIKE $1
			OR lower(concat(c.first_name, ' ', c.last_name)) LIKE $1
			OR lower(ifNull(c.email, '')) LIKE $1
			OR lower(ifNull(c.phone, '')) LIKE $1
			OR a.account_match = 1
		)
		AND ($2 = 'all' OR c.status = $2)
		ORDER BY a.total_aum DESC NULLS LAST, full_name_t ASC
		LIMIT $3
		SETTINGS join_use_nulls = 1
	`
	filter := string(status)
	if filter == "" {
		filter = string(models.StatusAll)
	}
	rows, err := s.db.QueryContext(ctx, q, likePattern(query), filter, limit)
	if err != nil {
		s.logFailure("search_clients", "query", err, applogger.String("query", query))
		return nil, classify("search clients", err)
	}
	clients, err := scanCHClients(rows)
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

func (s *CHAdvisoryStore) GetClient(ctx context.Context, idOrName string) (*models.Client, error) {
	start := time.Now()
	const q = `
		SELECT` + chClientColumns + `
		FROM clients AS c
		WHERE c.id = $1
			OR lower(full_name_t) = lower($1)
			OR lower(concat(c.first_name, ' ', c.last_name)) = lower($1)
		ORDER BY (c.id = $1) DESC
		LIMIT 1
	`
	key := strings.TrimSpace(idOrName)
	rows, err := s.db.QueryContext(ctx, q, key)
	if err != nil {
		s.logFailure("get_client", "query", err, applogger.String("client", key))
		return nil, classify("get client", err)
	}
	clients, err := scanCHClients(rows)
	if err != nil {
		s.logFailure("get_client", "scan", err, applogger.String("client", key))
		return nil, classify("get client", err)
	}
	if len(clients) == 0 {
		return nil, nil
	}
	if err := s.attachAccounts(ctx, clients); err != nil {
		return nil, err
	}
	s.logOK("get_client", start, 1, applogger.String("client", key))
	return &clients[0], nil
}

func (s *CHAdvisoryStore) ListHoldings(ctx context.Context, accountID string) ([]models.Holding, error) {
	start := time.Now()
	const q = `
		SELECT h.symbol,
			ifNull(h.name, ''),
			toString(h.quantity),
			toString(ifNull(h.cost_basis, 0)),
			toString(ifNull(h.market_value, 0)),
			ifNull(h.asset_class, ''),
			ifNull(h.sector, '')
		FROM holdings AS h
		WHERE h.account_id = $1
			AND h.account_id IN (SELECT id FROM accounts WHERE is_closed = 0)
		ORDER BY h.market_value DESC NULLS LAST, h.symbol ASC
	`
	rows, err := s.db.QueryContext(ctx, q, accountID)
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

func (s *CHAdvisoryStore) GetAllocationPolicy(ctx context.Context, clientID string) (*models.AllocationPolicy, error) {
	start := time.Now()

	var threshold sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT toString(rebalance_threshold) FROM clients WHERE id = $1 LIMIT 1`, clientID,
	).Scan(&threshold)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logFailure("allocation_policy", "query", err, applogger.String("client", clientID))
		return nil, classify("allocation policy", err)
	}

	policy := &models.AllocationPolicy{ClientID: clientID}
	if threshold.Valid {
		if policy.Threshold, err = parseNullDecimal(&threshold.String); err != nil {
			return nil, fmt.Errorf("rebalance threshold: %w", err)
		}
	}

	const targets = `
		SELECT asset_class, toString(target_percent)
		FROM allocation_targets
		WHERE client_id = $1
	`
	if policy.Target, err = s.weights(ctx, targets, clientID); err != nil {
		s.logFailure("allocation_policy", "targets", err, applogger.String("client", clientID))
		return nil, classify("allocation targets", err)
	}

	const actual = `
		SELECT if(trimBoth(ifNull(h.asset_class, '')) = '', 'Unclassified', trimBoth(h.asset_class)) AS class,
			toString(sum(ifNull(h.market_value, 0)))
		FROM holdings AS h
		WHERE h.account_id IN (SELECT id FROM accounts WHERE client_id = $1 AND is_closed = 0)
		GROUP BY class
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

func (s *CHAdvisoryStore) ListPerformance(ctx context.Context, clientID string) ([]models.PerformancePeriod, error) {
	start := time.Now()
	const q = `
		SELECT period,
			toString(ifNull(return_percent, 0)),
			toString(ifNull(benchmark_percent, 0)),
			ifNull(benchmark_name, '')
		FROM performance_snapshots
		WHERE client_id = $1
			AND as_of_date = (SELECT max(as_of_date) FROM performance_snapshots WHERE client_id = $1)
	`
	rows, err := s.db.QueryContext(ctx, q, clientID)
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

func (s *CHAdvisoryStore) attachAccounts(ctx context.Context, clients []models.Client) error {
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
			ifNull(account_number, ''),
			ifNull(name, ''),
			ifNull(account_type, ''),
			ifNull(custodian, ''),
			if(isNull(market_value), NULL, toString(market_value)),
			toString(ifNull(cost_basis, 0)),
			inception_date,
			is_billable,
			is_discretionary
		FROM accounts
		WHERE has($1, client_id) AND is_closed = 0
		ORDER BY market_value DESC NULLS LAST, id ASC
	`
	rows, err := s.db.QueryContext(ctx, q, ids)
	if err != nil {
		s.logFailure("client_accounts", "query", err, applogger.Int("clients", len(ids)))
		return classify("client accounts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			clientID          string
			a                 models.Account
			marketValue       sql.NullString
			cost              string
			inception         sql.NullTime
			billable, discret uint8
		)
		if err := rows.Scan(&clientID, &a.ID, &a.AccountNumber, &a.Name, &a.Type, &a.Custodian,
			&marketValue, &cost, &inception, &billable, &discret); err != nil {
			s.logFailure("client_accounts", "scan", err, applogger.Int("clients", len(ids)))
			return fmt.Errorf("scan account: %w", err)
		}
		if marketValue.Valid {
			if a.MarketValue, err = parseNullDecimal(&marketValue.String); err != nil {
				return fmt.Errorf("account %s market value: %w", a.ID, err)
			}
		}
		if a.CostBasis, err = decimal.NewFromString(cost); err != nil {
			return fmt.Errorf("account %s cost basis: %w", a.ID, err)
		}
		if inception.Valid {
			t := inception.Time
			a.InceptionDate = &t
		}
		a.IsBillable = billable == 1
		a.IsDiscretionary = discret == 1
		i := index[clientID]
		clients[i].Accounts = append(clients[i].Accounts, a)
	}
	if err := rows.Err(); err != nil {
		s.logFailure("client_accounts", "rows", err, applogger.Int("clients", len(ids)))
		return classify("client accounts", err)
	}
	return nil
}

func (s *CHAdvisoryStore) weights(ctx context.Context, q string, clientID string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var class, raw string
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

func scanCHClients(rows *sql.Rows) ([]models.Client, error) {
	defer rows.Close()
	out := make([]models.Client, 0, 8)
	for rows.Next() {
		var (
			c                       models.Client
			status                  string
			onboarding, lastContact sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.FullName, &c.Email, &c.Phone,
			&status, &c.RiskTolerance, &onboarding, &lastContact); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.Status = models.ClientStatus(status)
		if onboarding.Valid {
			t := onboarding.Time
			c.OnboardingDate = &t
		}
		if lastContact.Valid {
			t := lastContact.Time
			c.LastContactDate = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CHAdvisoryStore) logFailure(op, stage string, err error, fields ...applogger.Field) {
	fields = append(fields, applogger.String("op", op), applogger.String("stage", stage), applogger.Error(err))
	s.l.Error("clickhouse "+op+" "+stage+" error", fields...)
}

func (s *CHAdvisoryStore) logOK(op string, start time.Time, rows int, fields ...applogger.Field) {
	fields = append(fields, applogger.Int("rows", rows), applogger.Duration("duration_ms", time.Since(start)))
	s.l.Debug("clickhouse "+op+" ok", fields...)
}
