package videodb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gowvp/sense/internal/core/video"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func generateMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	return gdb, mock, err
}

func TestVideoGet(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	videoDB := NewDB(db)

	rows := sqlmock.NewRows([]string{"id", "status"}).AddRow("v1", video.StatusDone)
	mock.ExpectQuery(`SELECT \* FROM "videos" WHERE id=\$1 (.+) LIMIT \$2`).
		WithArgs("v1", 1).
		WillReturnRows(rows)

	var out video.Video
	if err := videoDB.Video().Get(context.Background(), &out, orm.Where("id=?", "v1")); err != nil {
		t.Fatal(err)
	}
	if out.Status != video.StatusDone {
		t.Fatalf("status = %s", out.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}
