package gallery

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// imageRow mirrors an Image in the images table.
type imageRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	OriginalName string    `gorm:"column:original_name"`
	MimeType     string    `gorm:"column:mime_type"`
	Size         int64     `gorm:"column:size"`
	Width        int       `gorm:"column:width"`
	Height       int       `gorm:"column:height"`
	UploadedAt   time.Time `gorm:"column:uploaded_at;index"`
}

func (imageRow) TableName() string { return "images" }

// SQLBackend writes every mutation through to a database table. The table is
// a mirror for other consumers; the Store never reads it back.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

// Migrate creates the images table.
func (b *SQLBackend) Migrate() error {
	return b.db.AutoMigrate(&imageRow{})
}

func (b *SQLBackend) Upload(ctx context.Context, img Image, report func(int)) error {
	report(0)
	row := imageRow{
		ID:           img.ID,
		Name:         img.Name,
		OriginalName: img.OriginalName,
		MimeType:     img.MimeType,
		Size:         img.Size,
		Width:        img.Width,
		Height:       img.Height,
		UploadedAt:   img.UploadedAt,
	}
	if err := b.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	report(100)
	return nil
}

func (b *SQLBackend) Rename(ctx context.Context, id, name string) error {
	res := b.db.WithContext(ctx).Model(&imageRow{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *SQLBackend) Delete(ctx context.Context, id string) error {
	res := b.db.WithContext(ctx).Where("id = ?", id).Delete(&imageRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Names lists mirrored image names in upload order.
func (b *SQLBackend) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := b.db.WithContext(ctx).Model(&imageRow{}).Order("uploaded_at ASC").Pluck("name", &names).Error
	return names, err
}
