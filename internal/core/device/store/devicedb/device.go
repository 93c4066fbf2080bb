package devicedb

import (
	"context"
	"log/slog"

	"github.com/gowvp/sense/internal/core/device"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

var _ device.Storer = DB{}

type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) DB {
	return DB{db: db}
}

// AutoMigrate 按需建表
func (d DB) AutoMigrate(ok bool) DB {
	if !ok {
		return d
	}
	if err := d.db.AutoMigrate(&device.Device{}); err != nil {
		slog.Error("AutoMigrate", "err", err)
	}
	return d
}

func (d DB) Device() device.DeviceStorer {
	return Device{db: d.db}
}

type Device struct {
	db *gorm.DB
}

func (d Device) Find(ctx context.Context, out *[]*device.Device, pager orm.Pager, opts ...orm.QueryOption) (int64, error) {
	db := d.db.WithContext(ctx).Model(&device.Device{})
	for _, fn := range opts {
		db = fn(db)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := db.Offset(pager.Offset()).Limit(pager.Limit()).Find(out).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (d Device) Get(ctx context.Context, out *device.Device, opts ...orm.QueryOption) error {
	db := d.db.WithContext(ctx)
	for _, fn := range opts {
		db = fn(db)
	}
	return db.First(out).Error
}

func (d Device) Add(ctx context.Context, in *device.Device) error {
	return d.db.WithContext(ctx).Create(in).Error
}

func (d Device) Edit(ctx context.Context, out *device.Device, changeFn func(*device.Device), opts ...orm.QueryOption) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		db := tx
		for _, fn := range opts {
			db = fn(db)
		}
		if err := db.First(out).Error; err != nil {
			return err
		}
		changeFn(out)
		return tx.Save(out).Error
	})
}

func (d Device) Del(ctx context.Context, out *device.Device, opts ...orm.QueryOption) error {
	db := d.db.WithContext(ctx)
	for _, fn := range opts {
		db = fn(db)
	}
	return db.Delete(out).Error
}
