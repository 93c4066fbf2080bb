package devicedb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gowvp/sense/internal/core/device"
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

type pager struct{}

func (pager) Limit() int  { return 10 }
func (pager) Offset() int { return 0 }

func TestDeviceGet(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	deviceDB := NewDB(db)

	rows := sqlmock.NewRows([]string{"id", "client_id", "name"}).
		AddRow("cam_1", "client-1", "门口")
	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE id=\$1 (.+) LIMIT \$2`).
		WithArgs("cam_1", 1).
		WillReturnRows(rows)

	var out device.Device
	if err := deviceDB.Device().Get(context.Background(), &out, orm.Where("id=?", "cam_1")); err != nil {
		t.Fatal(err)
	}
	if out.ClientID != "client-1" {
		t.Fatalf("client_id = %s", out.ClientID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestDeviceFind(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	deviceDB := NewDB(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "devices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "devices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("cam_1", "门口").
			AddRow("cam_2", "过道"))

	var out []*device.Device
	total, err := deviceDB.Device().Find(context.Background(), &out, pager{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(out) != 2 {
		t.Fatalf("total=%d len=%d", total, len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}
