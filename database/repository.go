/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package database

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Pageable struct {
	// Page 0-indexed
	Page uint `json:"page"`
	// Size zero for unlimited
	Size uint `json:"size"`
	// Sort for example "FIELD desc,FIELD"
	Sort string `json:"sort,omitempty"`
}

func (p Pageable) offset() int {
	return int(p.Page * p.Size)
}

// pages returns the number of pages holding total elements.
func (p Pageable) pages(total int64) int {
	switch {
	case total <= 0:
		return 0
	case p.Size == 0:
		return 1
	default:
		return int((total + int64(p.Size) - 1) / int64(p.Size))
	}
}

type Page[T any] struct {
	Content       []T      `json:"content"`
	TotalElements int      `json:"total_elements"`
	TotalPages    int      `json:"total_pages"`
	Pageable      Pageable `json:"pageable"`
}

func (p *Page[T]) ToAny() *Page[any] {
	r := &Page[any]{
		Content:       make([]any, len(p.Content)),
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Pageable:      p.Pageable,
	}
	for i, e := range p.Content {
		r.Content[i] = e
	}
	return r
}

type Repository[T any] interface {
	Save(v *T) error
	SaveIfAbsent(v *T) (bool, error)
	Delete(query interface{}, conds ...interface{}) error
	Count(query interface{}, conds ...interface{}) (int64, error)
	FindOne(query interface{}, conds ...interface{}) (*T, error)
	Find(query interface{}, conds ...interface{}) ([]T, error)
	FindWithOrder(order string, query interface{}, conds ...interface{}) ([]T, error)
	Page(p Pageable, query interface{}, conds ...interface{}) (*Page[T], error)
}

// DefaultRepository stores T in the table of name, which is migrated on creation.
type DefaultRepository[T any] struct {
	db   *gorm.DB
	name string
}

func NewDefaultRepository[T any](db *gorm.DB, name string) (*DefaultRepository[T], error) {
	if err := db.Table(name).AutoMigrate(new(T)); err != nil {
		return nil, err
	}
	return &DefaultRepository[T]{
		db:   db,
		name: name,
	}, nil
}

// WithTx returns the repository of the same table running on tx.
func (r *DefaultRepository[T]) WithTx(tx *gorm.DB) *DefaultRepository[T] {
	return &DefaultRepository[T]{
		db:   tx,
		name: r.name,
	}
}

func (r *DefaultRepository[T]) where(query interface{}, conds ...interface{}) *gorm.DB {
	ret := r.db.Table(r.name)
	if query != nil {
		ret = ret.Where(query, conds...)
	}
	return ret
}

func ignoreNotFound(err error) error {
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	return err
}

func (r *DefaultRepository[T]) Save(v *T) error {
	return r.db.Table(r.name).Save(v).Error
}

// SaveIfAbsent inserts v unless it conflicts with a unique key of a stored record.
func (r *DefaultRepository[T]) SaveIfAbsent(v *T) (bool, error) {
	ret := r.db.Table(r.name).Clauses(clause.OnConflict{DoNothing: true}).Create(v)
	if ret.Error != nil {
		return false, ret.Error
	}
	return ret.RowsAffected > 0, nil
}

func (r *DefaultRepository[T]) Delete(query interface{}, conds ...interface{}) error {
	return r.db.Table(r.name).Delete(query, conds...).Error
}

func (r *DefaultRepository[T]) Count(query interface{}, conds ...interface{}) (int64, error) {
	var count int64
	if err := r.where(query, conds...).Count(&count).Error; err != nil {
		return -1, err
	}
	return count, nil
}

// FindOne returns nil without error if nothing matches.
func (r *DefaultRepository[T]) FindOne(query interface{}, conds ...interface{}) (*T, error) {
	v := new(T)
	if err := r.where(query, conds...).First(v).Error; err != nil {
		return nil, ignoreNotFound(err)
	}
	return v, nil
}

func (r *DefaultRepository[T]) Find(query interface{}, conds ...interface{}) ([]T, error) {
	return r.FindWithOrder("", query, conds...)
}

func (r *DefaultRepository[T]) FindWithOrder(order string, query interface{}, conds ...interface{}) ([]T, error) {
	ret := r.where(query, conds...)
	if len(order) > 0 {
		ret = ret.Order(order)
	}
	var l []T
	if err := ret.Find(&l).Error; err != nil {
		return nil, ignoreNotFound(err)
	}
	return l, nil
}

func (r *DefaultRepository[T]) Page(p Pageable, query interface{}, conds ...interface{}) (*Page[T], error) {
	var count int64
	if err := r.where(query, conds...).Count(&count).Error; err != nil {
		return nil, err
	}
	ret := r.where(query, conds...)
	if p.Size > 0 {
		ret = ret.Offset(p.offset()).Limit(int(p.Size))
	}
	if len(p.Sort) > 0 {
		ret = ret.Order(p.Sort)
	}
	var l []T
	if err := ret.Find(&l).Error; err != nil {
		return nil, ignoreNotFound(err)
	}
	return &Page[T]{
		Content:       l,
		TotalElements: int(count),
		TotalPages:    p.pages(count),
		Pageable:      p,
	}, nil
}
