package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// tableRow stores one positional row of a named sheet.
type tableRow struct {
	Sheet    string   `gorm:"primaryKey;size:64"`
	Position int      `gorm:"primaryKey;autoIncrement:false"`
	Cells    []string `gorm:"serializer:json"`
}

func (tableRow) TableName() string {
	return "task_table_rows"
}

// gormTable implements Table on top of a SQL database, keeping the same
// positional semantics as the spreadsheet backend.
type gormTable struct {
	db    *gorm.DB
	sheet string
}

// NewGormTable creates a Table stored in db under the given sheet name.
func NewGormTable(db *gorm.DB, sheet string) (Table, error) {
	if err := db.AutoMigrate(&tableRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate task table: %w", err)
	}
	return &gormTable{db: db, sheet: sheet}, nil
}

func (t *gormTable) ReadAll(ctx context.Context) ([][]string, error) {
	var rows []tableRow
	if err := t.db.WithContext(ctx).
		Where("sheet = ?", t.sheet).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read task table: %w", err)
	}
	if len(rows) == 0 {
		return [][]string{}, nil
	}

	last := rows[len(rows)-1].Position
	out := make([][]string, last)
	for _, r := range rows {
		if r.Position >= 1 {
			out[r.Position-1] = r.Cells
		}
	}
	return out, nil
}

func (t *gormTable) AppendRow(ctx context.Context, row []string) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&tableRow{}).
			Where("sheet = ?", t.sheet).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return fmt.Errorf("failed to find last row: %w", err)
		}
		return tx.Create(&tableRow{
			Sheet:    t.sheet,
			Position: last + 1,
			Cells:    append([]string(nil), row...),
		}).Error
	})
}

func (t *gormTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell position R%dC%d", row, col)
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r tableRow
		err := tx.Where("sheet = ? AND position = ?", t.sheet, row).First(&r).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			r = tableRow{Sheet: t.sheet, Position: row}
		}
		for len(r.Cells) < col {
			r.Cells = append(r.Cells, "")
		}
		r.Cells[col-1] = value
		return tx.Save(&r).Error
	})
}
