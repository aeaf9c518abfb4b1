package search

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Result 检索结果。Matched=true 表示条件命中；false 表示条件零命中、
// Items 为最近创建的推荐集（调用方凭标记区分，不靠猜空数组）。
type Result[T any] struct {
	Matched bool `json:"matched"`
	Count   int  `json:"count"`
	Items   []T  `json:"items"`
}

// Predicate 可选过滤条件，零值输入时应返回原查询
type Predicate func(*gorm.DB) *gorm.DB

// Substring 名称/标题的子串匹配；term 为空则不过滤
func Substring(column, term string) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		if term == "" {
			return q
		}
		return q.Where(fmt.Sprintf("%s LIKE ?", column), "%"+escapeLike(term)+"%")
	}
}

// Equals 等值过滤；value 为空串则不过滤
func Equals(column, value string) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		if value == "" {
			return q
		}
		return q.Where(fmt.Sprintf("%s = ?", column), value)
	}
}

// EqualsInt 数值等值过滤；负值视为未设置
func EqualsInt(column string, value int64) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		if value < 0 {
			return q
		}
		return q.Where(fmt.Sprintf("%s = ?", column), value)
	}
}

// Ceiling 数值上限过滤；max<=0 视为未设置
func Ceiling(column string, max int64) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		if max <= 0 {
			return q
		}
		return q.Where(fmt.Sprintf("%s <= ?", column), max)
	}
}

// Params 每种实体的检索常量，来自配置而非用户输入
type Params struct {
	MaxResults   int
	SuggestCount int
	Order        string // 为空时按创建时间倒序
}

const defaultOrder = "created_at DESC, id DESC"

// Run 统一的"检索+兜底推荐"实现：先跑过滤查询，零命中时改跑
// 无过滤的最近 N 条并打上 Suggested 标记。所有实体共用这一份语义。
func Run[T any](db *gorm.DB, p Params, preds ...Predicate) (Result[T], error) {
	if p.MaxResults <= 0 {
		p.MaxResults = 50
	}
	if p.SuggestCount <= 0 {
		p.SuggestCount = 10
	}
	order := p.Order
	if order == "" {
		order = defaultOrder
	}

	q := db.Session(&gorm.Session{})
	for _, pred := range preds {
		q = pred(q)
	}

	var items []T
	if err := q.Order(order).Limit(p.MaxResults).Find(&items).Error; err != nil {
		return Result[T]{}, err
	}
	if len(items) > 0 {
		return Result[T]{Matched: true, Count: len(items), Items: items}, nil
	}

	// 零命中：返回最近创建的推荐集，不带任何过滤条件
	var suggested []T
	if err := db.Session(&gorm.Session{}).
		Order(defaultOrder).
		Limit(p.SuggestCount).
		Find(&suggested).Error; err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Matched: false, Items: suggested}, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
