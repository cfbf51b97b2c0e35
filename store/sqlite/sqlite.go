/*
Package sqlite provides the SQLite-backed store for the rewards service.

PURPOSE:
  Stands in for the hosted relational collaborator: persists visitors,
  quiz results, bookings, the append-only point transaction ledger,
  badges, visit-tier grants, the reward catalog and redemptions. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  rewards.TransactionStore: point ledger persistence

APPEND-ONLY ENFORCEMENT:
  The point_transactions table is append-only:
  - No UPDATE statements, no DELETE statements
  - Corrections via adjustment transactions only
  - idempotency_key UNIQUE makes retried accruals no-ops

BALANCE INVARIANT:
  point_balances carries the denormalized balance, updated in the same
  SQL transaction as every ledger append. The update is guarded so the
  balance can never go below zero; a shortfall rolls the whole append
  back.

ONCE-EVER GRANTS:
  visit_tier_grants has PRIMARY KEY (visitor_id, threshold): each
  visit-count threshold bonus is granted at most once per visitor, and
  the grant row and its ledger transaction are written atomically.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: readers don't block, single writer, better crash
  recovery.

USAGE:
  store, err := sqlite.New("./data/musemap.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - rewards/ledger.go: TransactionStore interface
  - api/handlers.go: consumes this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/RajaShylesh112/musemap-sub000/rewards"
)

// Store implements all persistence for the rewards service using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Visitors (entities)
	CREATE TABLE IF NOT EXISTS visitors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		created_at TEXT NOT NULL
	);

	-- Denormalized point balances, updated with every ledger append
	CREATE TABLE IF NOT EXISTS point_balances (
		visitor_id TEXT PRIMARY KEY,
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TEXT NOT NULL
	);

	-- Point transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS point_transactions (
		id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		delta INTEGER NOT NULL,
		tx_type TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_point_transactions_visitor
		ON point_transactions(visitor_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_point_transactions_reference
		ON point_transactions(reference_id) WHERE reference_id IS NOT NULL;

	-- Quiz results (immutable facts)
	CREATE TABLE IF NOT EXISTS quiz_results (
		id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		museum_id TEXT NOT NULL,
		score TEXT NOT NULL,
		taken_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quiz_results_visitor
		ON quiz_results(visitor_id, taken_at);

	-- Badges: at most one per qualifying quiz result
	CREATE TABLE IF NOT EXISTS badges (
		id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		quiz_result_id TEXT NOT NULL UNIQUE,
		museum_id TEXT NOT NULL,
		level TEXT NOT NULL,
		awarded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_badges_visitor
		ON badges(visitor_id, awarded_at);

	-- Bookings (visit records)
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		museum_id TEXT NOT NULL,
		visit_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_visitor_status
		ON bookings(visitor_id, status);

	-- Visit-count threshold grants: once ever per (visitor, threshold)
	CREATE TABLE IF NOT EXISTS visit_tier_grants (
		visitor_id TEXT NOT NULL,
		threshold INTEGER NOT NULL,
		granted_at TEXT NOT NULL,
		PRIMARY KEY (visitor_id, threshold)
	);

	-- Reward catalog
	CREATE TABLE IF NOT EXISTS reward_catalog (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		point_cost INTEGER NOT NULL CHECK (point_cost >= 0)
	);

	-- Redemptions
	CREATE TABLE IF NOT EXISTS redemptions (
		id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		reward_id TEXT NOT NULL,
		points INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_redemptions_visitor
		ON redemptions(visitor_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// VISITORS
// =============================================================================

// Visitor is the stored entity record.
type Visitor struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// SaveVisitor inserts or updates a visitor and ensures a balance row exists.
func (s *Store) SaveVisitor(ctx context.Context, v Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO visitors (id, name, email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email`,
		v.ID, v.Name, v.Email, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save visitor: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO point_balances (visitor_id, balance, updated_at)
		VALUES (?, 0, ?)
		ON CONFLICT(visitor_id) DO NOTHING`,
		v.ID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to init balance: %w", err)
	}

	return tx.Commit()
}

// GetVisitor returns a visitor, or nil when not found.
func (s *Store) GetVisitor(ctx context.Context, id string) (*Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v Visitor
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(email, ''), created_at FROM visitors WHERE id = ?`, id,
	).Scan(&v.ID, &v.Name, &v.Email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &v, nil
}

// ListVisitors returns all visitors ordered by creation time.
func (s *Store) ListVisitors(ctx context.Context) ([]Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(email, ''), created_at FROM visitors ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []Visitor
	for rows.Next() {
		var v Visitor
		var createdAt string
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &createdAt); err != nil {
			return nil, err
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

// =============================================================================
// POINT LEDGER (rewards.TransactionStore interface)
// =============================================================================

// AppendTransaction writes a ledger entry and updates the denormalized
// balance in one SQL transaction. Duplicated idempotency keys and
// would-be-negative balances roll the whole write back.
func (s *Store) AppendTransaction(ctx context.Context, ltx rewards.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.appendTx(ctx, tx, ltx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) appendTx(ctx context.Context, tx *sql.Tx, ltx rewards.Transaction) error {
	createdAt := ltx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO point_transactions
		(id, visitor_id, delta, tx_type, reference_id, reason, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ltx.ID,
		ltx.VisitorID,
		int64(ltx.Delta),
		ltx.Type,
		nullString(ltx.ReferenceID),
		ltx.Reason,
		nullString(ltx.IdempotencyKey),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return rewards.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	// Guarded balance update: a negative result violates the CHECK
	// constraint and aborts the whole transaction.
	res, err := tx.ExecContext(ctx, `
		UPDATE point_balances
		SET balance = balance + ?, updated_at = ?
		WHERE visitor_id = ?`,
		int64(ltx.Delta), createdAt.Format(time.RFC3339), ltx.VisitorID,
	)
	if err != nil {
		if isCheckConstraintError(err) {
			return s.shortfallError(ctx, tx, ltx)
		}
		return fmt.Errorf("failed to update balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rewards.ErrVisitorNotFound
	}
	return nil
}

func (s *Store) shortfallError(ctx context.Context, tx *sql.Tx, ltx rewards.Transaction) error {
	var available int64
	if err := tx.QueryRowContext(ctx,
		`SELECT balance FROM point_balances WHERE visitor_id = ?`, ltx.VisitorID,
	).Scan(&available); err != nil {
		return rewards.ErrInsufficientPoints
	}
	requested := rewards.Points(-ltx.Delta)
	return &rewards.InsufficientPointsError{
		VisitorID: ltx.VisitorID,
		Available: rewards.Points(available),
		Requested: requested,
		Shortfall: requested - rewards.Points(available),
	}
}

// Transactions returns a visitor's ledger transactions, chronologically.
func (s *Store) Transactions(ctx context.Context, visitorID rewards.VisitorID) ([]rewards.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, visitor_id, delta, tx_type,
		       COALESCE(reference_id, ''), COALESCE(reason, ''),
		       COALESCE(idempotency_key, ''), created_at
		FROM point_transactions
		WHERE visitor_id = ?
		ORDER BY created_at, id`,
		visitorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []rewards.Transaction
	for rows.Next() {
		var ltx rewards.Transaction
		var delta int64
		var createdAt string
		if err := rows.Scan(&ltx.ID, &ltx.VisitorID, &delta, &ltx.Type,
			&ltx.ReferenceID, &ltx.Reason, &ltx.IdempotencyKey, &createdAt); err != nil {
			return nil, err
		}
		ltx.Delta = rewards.Points(delta)
		ltx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, ltx)
	}
	return txs, rows.Err()
}

// Balance returns the visitor's current point balance.
func (s *Store) Balance(ctx context.Context, visitorID rewards.VisitorID) (rewards.Points, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM point_balances WHERE visitor_id = ?`, visitorID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, rewards.ErrVisitorNotFound
	}
	if err != nil {
		return 0, err
	}
	return rewards.Points(balance), nil
}

// =============================================================================
// QUIZ RESULTS AND BADGES
// =============================================================================

// SaveQuizResult persists an immutable quiz result record.
func (s *Store) SaveQuizResult(ctx context.Context, qr rewards.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_results (id, visitor_id, museum_id, score, taken_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		qr.ID, qr.VisitorID, qr.MuseumID, qr.Score.String(),
		qr.TakenAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz result: %w", err)
	}
	return nil
}

// AppendQuizAccrual applies a quiz accrual atomically: the ledger
// transaction (idempotency key = quiz result ID) and, when a badge was
// unlocked, the badge record. A repeated quiz result ID makes the
// whole call a duplicate.
func (s *Store) AppendQuizAccrual(ctx context.Context, ltx rewards.Transaction, badge *rewards.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.appendTx(ctx, tx, ltx); err != nil {
		return err
	}

	if badge != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO badges (id, visitor_id, quiz_result_id, museum_id, level, awarded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			badge.ID, badge.VisitorID, badge.QuizResultID, badge.MuseumID,
			badge.Level, badge.AwardedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return rewards.ErrDuplicateIdempotencyKey
			}
			return fmt.Errorf("failed to save badge: %w", err)
		}
	}

	return tx.Commit()
}

// ListBadges returns a visitor's badges, oldest first.
func (s *Store) ListBadges(ctx context.Context, visitorID rewards.VisitorID) ([]rewards.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, visitor_id, quiz_result_id, museum_id, level, awarded_at
		FROM badges WHERE visitor_id = ? ORDER BY awarded_at, id`,
		visitorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []rewards.Badge
	for rows.Next() {
		var b rewards.Badge
		var awardedAt string
		if err := rows.Scan(&b.ID, &b.VisitorID, &b.QuizResultID, &b.MuseumID, &b.Level, &awardedAt); err != nil {
			return nil, err
		}
		b.AwardedAt, _ = time.Parse(time.RFC3339, awardedAt)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// =============================================================================
// BOOKINGS
// =============================================================================

// SaveBooking inserts a booking.
func (s *Store) SaveBooking(ctx context.Context, b rewards.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (id, visitor_id, museum_id, visit_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.VisitorID, b.MuseumID,
		b.VisitDate.UTC().Format("2006-01-02"),
		b.Status,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// GetBooking returns a booking, or nil when not found.
func (s *Store) GetBooking(ctx context.Context, id string) (*rewards.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b rewards.Booking
	var visitDate, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, visitor_id, museum_id, visit_date, status, created_at
		FROM bookings WHERE id = ?`, id,
	).Scan(&b.ID, &b.VisitorID, &b.MuseumID, &visitDate, &b.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.VisitDate, _ = time.Parse("2006-01-02", visitDate)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &b, nil
}

// UpdateBookingStatus applies a status transition. Only
// pending->confirmed and pending->cancelled are legal; anything else
// fails with ErrInvalidStatusTransition.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, to rewards.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if to != rewards.BookingConfirmed && to != rewards.BookingCancelled {
		return rewards.ErrInvalidStatusTransition
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = 'pending'`, to, id)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Missing row or a row that already left pending.
		var status string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
		if err == sql.ErrNoRows {
			return rewards.ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		return rewards.ErrInvalidStatusTransition
	}
	return nil
}

// CountConfirmedVisits returns the visitor's total confirmed bookings.
func (s *Store) CountConfirmedVisits(ctx context.Context, visitorID rewards.VisitorID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE visitor_id = ? AND status = 'confirmed'`,
		visitorID,
	).Scan(&n)
	return n, err
}

// =============================================================================
// VISIT TIER GRANTS
// =============================================================================

// GrantedVisitThresholds returns the visit-count thresholds already
// granted to the visitor.
func (s *Store) GrantedVisitThresholds(ctx context.Context, visitorID rewards.VisitorID) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT threshold FROM visit_tier_grants WHERE visitor_id = ? ORDER BY threshold`,
		visitorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []int
	for rows.Next() {
		var t int
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}

// AppendVisitGrant records a visit-threshold bonus atomically: the
// grant row and the ledger transaction either both land or neither
// does. A threshold already granted fails with
// ErrDuplicateIdempotencyKey, making the grant once-ever.
func (s *Store) AppendVisitGrant(ctx context.Context, ltx rewards.Transaction, threshold int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO visit_tier_grants (visitor_id, threshold, granted_at)
		VALUES (?, ?, ?)`,
		ltx.VisitorID, threshold, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return rewards.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to record visit grant: %w", err)
	}

	if err := s.appendTx(ctx, tx, ltx); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// REWARD CATALOG AND REDEMPTIONS
// =============================================================================

// SaveReward inserts or updates a catalog entry.
func (s *Store) SaveReward(ctx context.Context, r rewards.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reward_catalog (id, name, description, point_cost)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			point_cost = excluded.point_cost`,
		r.ID, r.Name, r.Description, int64(r.PointCost),
	)
	if err != nil {
		return fmt.Errorf("failed to save reward: %w", err)
	}
	return nil
}

// GetReward returns a catalog entry, or nil when not found.
func (s *Store) GetReward(ctx context.Context, id string) (*rewards.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r rewards.Reward
	var cost int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, ''), point_cost FROM reward_catalog WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.Description, &cost)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.PointCost = rewards.Points(cost)
	return &r, nil
}

// ListRewards returns the catalog ordered by cost.
func (s *Store) ListRewards(ctx context.Context) ([]rewards.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), point_cost FROM reward_catalog ORDER BY point_cost, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var catalog []rewards.Reward
	for rows.Next() {
		var r rewards.Reward
		var cost int64
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &cost); err != nil {
			return nil, err
		}
		r.PointCost = rewards.Points(cost)
		catalog = append(catalog, r)
	}
	return catalog, rows.Err()
}

// RedeemReward performs check-and-deduct atomically: validates the
// balance against the reward's cost, appends the redemption ledger
// transaction, and records the redemption. Concurrent redemptions
// cannot drive the balance negative; deliberate repeats deduct
// repeatedly (redemption is not idempotent).
func (s *Store) RedeemReward(ctx context.Context, visitorID rewards.VisitorID, reward rewards.Reward) (*rewards.Redemption, rewards.Points, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM point_balances WHERE visitor_id = ?`, visitorID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return nil, 0, rewards.ErrVisitorNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	newBalance, err := rewards.Redeem(rewards.Points(balance), reward.PointCost)
	if err != nil {
		var shortage *rewards.InsufficientPointsError
		if errors.As(err, &shortage) {
			shortage.VisitorID = visitorID
		}
		return nil, 0, err
	}

	redemption := rewards.Redemption{
		ID:        uuid.NewString(),
		VisitorID: visitorID,
		RewardID:  reward.ID,
		Points:    reward.PointCost,
		CreatedAt: time.Now().UTC(),
	}

	ltx := rewards.Transaction{
		ID:             rewards.TransactionID(uuid.NewString()),
		VisitorID:      visitorID,
		Delta:          -reward.PointCost,
		Type:           rewards.TxRedeem,
		ReferenceID:    redemption.ID,
		Reason:         "Redeemed " + reward.Name,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      redemption.CreatedAt,
	}
	if err := s.appendTx(ctx, tx, ltx); err != nil {
		return nil, 0, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO redemptions (id, visitor_id, reward_id, points, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		redemption.ID, redemption.VisitorID, redemption.RewardID,
		int64(redemption.Points), redemption.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to save redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return &redemption, newBalance, nil
}

// ListRedemptions returns a visitor's redemptions, oldest first.
func (s *Store) ListRedemptions(ctx context.Context, visitorID rewards.VisitorID) ([]rewards.Redemption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, visitor_id, reward_id, points, created_at
		FROM redemptions WHERE visitor_id = ? ORDER BY created_at, id`,
		visitorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var redemptions []rewards.Redemption
	for rows.Next() {
		var r rewards.Redemption
		var points int64
		var createdAt string
		if err := rows.Scan(&r.ID, &r.VisitorID, &r.RewardID, &points, &createdAt); err != nil {
			return nil, err
		}
		r.Points = rewards.Points(points)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		redemptions = append(redemptions, r)
	}
	return redemptions, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset wipes all data. Dev/test only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"point_transactions", "point_balances", "quiz_results", "badges",
		"bookings", "visit_tier_grants", "reward_catalog", "redemptions", "visitors",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}
