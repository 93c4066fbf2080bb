package videodb

import (
	"context"
	"log/slog"

	"github.com/gowvp/sense/internal/core/video"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

var _ video.Storer = DB{}

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
	if err := d.db.AutoMigrate(&video.Video{}); err != nil {
		slog.Error("AutoMigrate", "err", err)
	}
	return d
}

func (d DB) Video() video.VideoStorer {
	return Video{db: d.db}
}

type Video struct {
	db *gorm.DB
}

func (v Video) Find(ctx context.Context, out *[]*video.Video, pager orm.Pager, opts ...orm.QueryOption) (int64, error) {
	db := v.db.WithContext(ctx).Model(&video.Video{})
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

func (v Video) Get(ctx context.Context, out *video.Video, opts ...orm.QueryOption) error {
	db := v.db.WithContext(ctx)
	for _, fn := range opts {
		db = fn(db)
	}
	return db.First(out).Error
}

func (v Video) Add(ctx context.Context, in *video.Video) error {
	return v.db.WithContext(ctx).Create(in).Error
}

func (v Video) Edit(ctx context.Context, out *video.Video, changeFn func(*video.Video), opts ...orm.QueryOption) error {
	return v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

func (v Video) Del(ctx context.Context, out *video.Video, opts ...orm.QueryOption) error {
	db := v.db.WithContext(ctx)
	for _, fn := range opts {
		db = fn(db)
	}
	return db.Delete(out).Error
}
