// Package store holds the scoped repository operations. Every query and
// mutation carries a tenant scope filter; a row outside the caller's scope
// is indistinguishable from a missing row.
package store

import (
	"errors"
	"reflect"

	"gorm.io/gorm"
)

// ErrNotFound reports that no row matched the scoped filter, covering both
// truly missing rows and rows belonging to another tenant.
var ErrNotFound = errors.New("record not found")

// Scope is the tenant filter applied to every operation.
type Scope struct {
	Column string
	ID     uint
}

func Owner(id uint) Scope {
	return Scope{Column: "owner_id", ID: id}
}

func Manager(id uint) Scope {
	return Scope{Column: "manager_id", ID: id}
}

func (s Scope) apply(db *gorm.DB) *gorm.DB {
	return db.Where(s.Column+" = ?", s.ID)
}

// First loads one scoped row by id, preloading the named associations.
func First[T any](db *gorm.DB, sc Scope, id uint, preloads ...string) (*T, error) {
	var row T
	q := sc.apply(db)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Exists reports whether a scoped row with the given id exists.
func Exists[T any](db *gorm.DB, sc Scope, id uint) (bool, error) {
	var model T
	var count int64
	err := sc.apply(db.Model(&model)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ExistsWhere reports whether any row of T matches the condition. Used for
// global uniqueness checks (email, contact number, NIC) and for scoped
// name-key lookups where the condition carries the scope itself.
func ExistsWhere[T any](db *gorm.DB, query string, args ...any) (bool, error) {
	var model T
	var count int64
	err := db.Model(&model).Where(query, args...).Count(&count).Error
	return count > 0, err
}

// CountWhere counts matching rows; referential list checks compare the
// count against the number of distinct input ids.
func CountWhere[T any](db *gorm.DB, query string, args ...any) (int64, error) {
	var model T
	var count int64
	err := db.Model(&model).Where(query, args...).Count(&count).Error
	return count, err
}

// Page returns scoped rows after the cursor in id order, plus the cursor
// for the next page. The next cursor is the last row's id when a full page
// came back, nil otherwise.
func Page[T any](db *gorm.DB, sc Scope, cursor uint, take int, preloads ...string) ([]T, *uint, error) {
	rows := make([]T, 0, take)
	q := sc.apply(db).Where("id > ?", cursor).Order("id ASC").Limit(take)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *uint
	if len(rows) == take && take > 0 {
		if last := lastID(rows); last != 0 {
			next = &last
		}
	}
	return rows, next, nil
}

// Delete removes one scoped row. Zero rows affected maps to ErrNotFound so
// an out-of-scope id never reveals whether the row exists.
func Delete[T any](db *gorm.DB, sc Scope, id uint) error {
	var model T
	res := sc.apply(db).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func lastID[T any](rows []T) uint {
	if len(rows) == 0 {
		return 0
	}
	v := reflect.ValueOf(rows[len(rows)-1])
	f := v.FieldByName("ID")
	if f.IsValid() && f.CanUint() {
		return uint(f.Uint())
	}
	return 0
}
