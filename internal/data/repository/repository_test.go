package repository_test

import (
	"context"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeDB satisfies database.PgxIface with canned results, recording the
// SQL and arguments each call received.
type fakeDB struct {
	execTag  pgconn.CommandTag
	execErr  error
	row      pgx.Row
	lastSQL  string
	lastArgs []any
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.lastSQL = sql
	db.lastArgs = args
	return db.execTag, db.execErr
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	db.lastSQL = sql
	db.lastArgs = args
	return db.row
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (db *fakeDB) Ping(ctx context.Context) error            { return nil }
func (db *fakeDB) Close()                                    {}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

func TestTransitionStatus_ReportsCASOutcome(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := repository.NewPaymentRepository(db, zaptest.NewLogger(t))

	paymentID := uuid.New()
	transitioned, err := repo.TransitionStatus(context.Background(), paymentID,
		entity.PaymentStatusPending, entity.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// The current status must guard the UPDATE, or the CAS is gone.
	assert.Contains(t, db.lastSQL, "status = $2")
	require.Len(t, db.lastArgs, 3)
	assert.Equal(t, entity.PaymentStatusPending, db.lastArgs[1])
	assert.Equal(t, entity.PaymentStatusCompleted, db.lastArgs[2])

	// A lost race touches zero rows.
	db.execTag = pgconn.NewCommandTag("UPDATE 0")
	transitioned, err = repo.TransitionStatus(context.Background(), paymentID,
		entity.PaymentStatusPending, entity.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.False(t, transitioned)
}

func TestSessionCreate_PersistsAllColumns(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := repository.NewSessionRepository(db, zaptest.NewLogger(t))

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:     uuid.New(),
		Token:      uuid.New(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}

	require.NoError(t, repo.Create(context.Background(), session))
	require.Len(t, db.lastArgs, 5)
	assert.Equal(t, session.Token, db.lastArgs[2])
}

func TestFindValidSession_NoRowsMeansNoSession(t *testing.T) {
	db := &fakeDB{row: &fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}}
	repo := repository.NewSessionRepository(db, zaptest.NewLogger(t))

	session, err := repo.FindValidSession(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestFindValidSession_ScansSession(t *testing.T) {
	userID := uuid.New()
	token := uuid.New()

	db := &fakeDB{row: &fakeRow{scan: func(dest ...any) error {
		*dest[0].(*uuid.UUID) = uuid.New()
		*dest[1].(*uuid.UUID) = userID
		*dest[2].(*uuid.UUID) = token
		*dest[3].(*time.Time) = time.Now().Add(time.Hour)
		*dest[5].(*time.Time) = time.Now()
		return nil
	}}}
	repo := repository.NewSessionRepository(db, zaptest.NewLogger(t))

	session, err := repo.FindValidSession(context.Background(), token.String())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, userID, session.UserID)
}
