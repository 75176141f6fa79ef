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

package weth

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/icon-project/weth-sdk/database"
)

const (
	EventTable  = "weth_event"
	CursorTable = "weth_cursor"

	orderByHeightAndLogIndex = "block_height asc, log_index asc"
)

// Event is a stored log of IWETH9L1. Src, Dst and Guy are empty if the event has no such input.
type Event struct {
	database.Model
	Network     string `json:"network" gorm:"column:network;uniqueIndex:idx_weth_event_log,priority:1"`
	Name        string `json:"name" gorm:"column:name;index"`
	Address     string `json:"address" gorm:"column:address"`
	BlockHeight int64  `json:"block_height" gorm:"column:block_height;index"`
	BlockHash   string `json:"block_hash" gorm:"column:block_hash"`
	TxHash      string `json:"tx_hash" gorm:"column:tx_hash;uniqueIndex:idx_weth_event_log,priority:2"`
	LogIndex    uint   `json:"log_index" gorm:"column:log_index;uniqueIndex:idx_weth_event_log,priority:3"`
	Src         string `json:"src,omitempty" gorm:"column:src;index"`
	Dst         string `json:"dst,omitempty" gorm:"column:dst;index"`
	Guy         string `json:"guy,omitempty" gorm:"column:guy"`
	// Wad decimal string
	Wad string `json:"wad" gorm:"column:wad"`
}

type EventRepository struct {
	*database.DefaultRepository[Event]
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) (*EventRepository, error) {
	r, err := database.NewDefaultRepository[Event](db, EventTable)
	if err != nil {
		return nil, err
	}
	return &EventRepository{
		DefaultRepository: r,
		db:                db,
	}, nil
}

// PageBy returns the events which have all of network, name and address if not empty.
// address matches any of src, dst and guy.
func (r *EventRepository) PageBy(network, name, address string, p database.Pageable) (*database.Page[Event], error) {
	var (
		cond []string
		args []interface{}
	)
	if len(network) > 0 {
		cond = append(cond, "network = ?")
		args = append(args, network)
	}
	if len(name) > 0 {
		cond = append(cond, "name = ?")
		args = append(args, name)
	}
	if len(address) > 0 {
		cond = append(cond, "(src = ? OR dst = ? OR guy = ?)")
		args = append(args, address, address, address)
	}
	if len(p.Sort) == 0 {
		p.Sort = orderByHeightAndLogIndex
	}
	if len(cond) == 0 {
		return r.Page(p, nil)
	}
	return r.Page(p, strings.Join(cond, " AND "), args...)
}

type EventSummary struct {
	Network string `json:"network"`
	Name    string `json:"name"`
	Count   int64  `json:"count"`
}

func (r *EventRepository) Summary() ([]EventSummary, error) {
	var l []EventSummary
	err := r.db.Table(EventTable).
		Select("network, name, count(*) as count").
		Group("network, name").
		Order("network, name").
		Scan(&l).Error
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Cursor is the last height of the network which events are stored up to.
type Cursor struct {
	Network   string    `json:"network" gorm:"column:network;primaryKey"`
	Height    int64     `json:"height" gorm:"column:height"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CursorRepository struct {
	*database.DefaultRepository[Cursor]
}

func NewCursorRepository(db *gorm.DB) (*CursorRepository, error) {
	r, err := database.NewDefaultRepository[Cursor](db, CursorTable)
	if err != nil {
		return nil, err
	}
	return &CursorRepository{
		DefaultRepository: r,
	}, nil
}

func (r *CursorRepository) FindByNetwork(network string) (*Cursor, error) {
	return r.FindOne(&Cursor{Network: network})
}
