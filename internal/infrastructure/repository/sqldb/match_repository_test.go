package sqldb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
)

const selectMatchesSQL = "SELECT id, position, home_team, away_team, home_goals, away_goals, neutral, recorded_at FROM matches ORDER BY position"

type MatchRepositoryTestSuite struct {
	suite.Suite
	db   *sqlx.DB
	mock sqlmock.Sqlmock
	repo *MatchRepository
}

func (s *MatchRepositoryTestSuite) SetupTest() {
	mockDB, mock, err := sqlmock.New()
	require.NoError(s.T(), err)

	s.db = sqlx.NewDb(mockDB, DriverPostgres)
	s.mock = mock
	s.repo = NewMatchRepository(s.db)
}

func (s *MatchRepositoryTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *MatchRepositoryTestSuite) TestLoad() {
	recordedAt := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(matchColumns).
		AddRow("m-1", 1, "Arsenal", "Chelsea", 2, 1, false, recordedAt.UnixMilli()).
		AddRow("m-2", 2, "Chelsea", "Arsenal", 0, 0, true, int64(0))
	s.mock.ExpectQuery(regexp.QuoteMeta(selectMatchesSQL)).WillReturnRows(rows)

	got, err := s.repo.Load(context.Background())

	require.NoError(s.T(), err)
	require.Len(s.T(), got, 2)
	assert.Equal(s.T(), "m-1", got[0].ID)
	assert.Equal(s.T(), match.Fact{HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeGoals: 2, AwayGoals: 1}, got[0].Fact)
	assert.True(s.T(), got[0].RecordedAt.Equal(recordedAt))
	assert.True(s.T(), got[1].Neutral)
	assert.True(s.T(), got[1].RecordedAt.IsZero())
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *MatchRepositoryTestSuite) TestLoad_QueryError() {
	s.mock.ExpectQuery(regexp.QuoteMeta(selectMatchesSQL)).WillReturnError(errors.New("connection reset"))

	_, err := s.repo.Load(context.Background())

	assert.ErrorContains(s.T(), err, "select matches")
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *MatchRepositoryTestSuite) TestSave_ReplacesLog() {
	recordedAt := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	records := []match.Record{
		{ID: "m-1", Position: 1, RecordedAt: recordedAt, Fact: match.Fact{HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeGoals: 2, AwayGoals: 1}},
		{ID: "m-2", Position: 2, Fact: match.Fact{HomeTeam: "Chelsea", AwayTeam: "Arsenal", Neutral: true}},
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches")).WillReturnResult(sqlmock.NewResult(0, 5))
	s.mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO matches (id, position, home_team, away_team, home_goals, away_goals, neutral, recorded_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8), ($9, $10, $11, $12, $13, $14, $15, $16)",
	)).
		WithArgs(
			"m-1", 1, "Arsenal", "Chelsea", 2, 1, false, recordedAt.UnixMilli(),
			"m-2", 2, "Chelsea", "Arsenal", 0, 0, true, int64(0),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	s.mock.ExpectCommit()

	err := s.repo.Save(context.Background(), records)

	require.NoError(s.T(), err)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *MatchRepositoryTestSuite) TestSave_EmptyLogOnlyDeletes() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches")).WillReturnResult(sqlmock.NewResult(0, 5))
	s.mock.ExpectCommit()

	require.NoError(s.T(), s.repo.Save(context.Background(), nil))
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *MatchRepositoryTestSuite) TestSave_BatchesInserts() {
	records := make([]match.Record, insertBatchSize+20)
	for i := range records {
		records[i] = match.Record{
			ID:       fmt.Sprintf("m-%d", i+1),
			Position: i + 1,
			Fact:     match.Fact{HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		}
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches")).WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches")).WillReturnResult(sqlmock.NewResult(0, insertBatchSize))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches")).WillReturnResult(sqlmock.NewResult(0, 20))
	s.mock.ExpectCommit()

	require.NoError(s.T(), s.repo.Save(context.Background(), records))
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *MatchRepositoryTestSuite) TestSave_RollsBackOnInsertFailure() {
	records := []match.Record{{ID: "m-1", Position: 1, Fact: match.Fact{HomeTeam: "Arsenal", AwayTeam: "Chelsea"}}}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches")).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches")).WillReturnError(errors.New("disk full"))
	s.mock.ExpectRollback()

	err := s.repo.Save(context.Background(), records)

	assert.ErrorContains(s.T(), err, "insert matches 1-1")
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func TestMatchRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MatchRepositoryTestSuite))
}

func TestMatchRepository_SQLiteUsesQuestionPlaceholders(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, DriverSQLite)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("VALUES (?, ?, ?, ?, ?, ?, ?, ?)")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewMatchRepository(db)
	err = repo.Save(context.Background(), []match.Record{{ID: "m-1", Position: 1, Fact: match.Fact{HomeTeam: "A", AwayTeam: "B"}}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
