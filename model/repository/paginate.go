// Package repository holds helpers shared by the per-entity repositories.
package repository

import (
	"gorm.io/gorm"

	"warehouse.GO/core/query"
)

// FindPage counts q, then loads one ordered page of it into a slice of T with the given preloads.
func FindPage[T any](q *gorm.DB, p query.Page, order string, preloads ...string) ([]T, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := make([]T, 0, p.Limit)
	if total == 0 {
		return items, 0, nil
	}
	q = p.Scope(q).Order(order)
	for _, rel := range preloads {
		q = q.Preload(rel)
	}
	err := q.Find(&items).Error
	return items, total, err
}

// UpdateFields applies a column map to the row with id and reports gorm.ErrRecordNotFound when
// no row matched.
func UpdateFields(db *gorm.DB, model interface{}, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
