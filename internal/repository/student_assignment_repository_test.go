package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/globalenglish-api/internal/models"
)

func TestStudentAssignmentRepositoryListForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentAssignmentRepository(db)

	end := day("2024-12-15")
	rows := sqlmock.NewRows([]string{"id", "student_id", "classroom_id", "valid_from", "valid_to", "created_at"}).
		AddRow("sa-1", "student-1", "room-3", day("2024-02-01"), end, day("2024-02-01")).
		AddRow("sa-2", "student-1", "room-10", day("2025-01-20"), nil, day("2025-01-20"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_classroom_history")).
		WithArgs("student-1").
		WillReturnRows(rows)

	items, err := repo.ListForStudent(context.Background(), nil, "student-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, end, *items[0].ValidTo)
	assert.Nil(t, items[1].ValidTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentAssignmentRepositoryListByClassroomOn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE classroom_id = $1 AND valid_from <= $2 AND (valid_to IS NULL OR valid_to >= $2)")).
		WithArgs("room-3", day("2025-03-01")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "valid_from", "valid_to"}).
			AddRow("sa-1", "student-1", day("2025-01-01"), nil))

	students, err := repo.ListByClassroomOn(context.Background(), "room-3", day("2025-03-01"))
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "student-1", students[0].StudentID)
}

func TestStudentAssignmentRepositoryCreateInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_classroom_history")).
		WithArgs(sqlmock.AnyArg(), "student-1", "room-3", day("2025-01-01"), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tx, &models.StudentAssignment{StudentID: "student-1", ClassroomID: "room-3", ValidFrom: day("2025-01-01")}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
