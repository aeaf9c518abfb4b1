package search

import (
	"testing"
	"time"

	"Campus_Community/internal/model"
	"Campus_Community/internal/testutils"

	"gorm.io/gorm"
)

func seedListings(t *testing.T, db *gorm.DB) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	rows := []model.Listing{
		{SellerID: 1, Title: "Calculus Textbook", Category: "Books", PriceCents: 1500, CreatedAt: base},
		{SellerID: 1, Title: "Linear Algebra Notes", Category: "Books", PriceCents: 500, CreatedAt: base.Add(time.Minute)},
		{SellerID: 2, Title: "Desk Lamp", Category: "Furniture", PriceCents: 2000, CreatedAt: base.Add(2 * time.Minute)},
		{SellerID: 2, Title: "Mechanical Keyboard", Category: "Electronics", PriceCents: 8000, CreatedAt: base.Add(3 * time.Minute)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// 测试内容：条件命中时返回 Matched=true 且只含命中行。
func TestRun_Matched(t *testing.T) {
	db := testutils.SetupDB(t)
	seedListings(t, db)

	res, err := Run[model.Listing](db.Model(&model.Listing{}), Params{},
		Substring("title", "algebra"),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched {
		t.Fatal("期望 Matched=true")
	}
	if res.Count != 1 || len(res.Items) != 1 {
		t.Fatalf("期望 1 条命中, got %d", len(res.Items))
	}
	if res.Items[0].Title != "Linear Algebra Notes" {
		t.Fatalf("命中了错误的行: %s", res.Items[0].Title)
	}
}

// 测试内容：组合条件（子串+品类+价格上限）的交集语义。
func TestRun_CombinedPredicates(t *testing.T) {
	db := testutils.SetupDB(t)
	seedListings(t, db)

	res, err := Run[model.Listing](db.Model(&model.Listing{}), Params{},
		Substring("title", "o"),
		Equals("category", "Books"),
		Ceiling("price_cents", 1000),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched || len(res.Items) != 1 {
		t.Fatalf("期望只命中 Linear Algebra Notes, got %d 条", len(res.Items))
	}
}

// 测试内容：零命中时退回无过滤的推荐集，Matched=false 且按创建时间倒序。
func TestRun_FallbackSuggestions(t *testing.T) {
	db := testutils.SetupDB(t)
	seedListings(t, db)

	res, err := Run[model.Listing](db.Model(&model.Listing{}), Params{SuggestCount: 2},
		Substring("title", "nonexistent gadget"),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Matched {
		t.Fatal("期望 Matched=false")
	}
	if res.Count != 0 {
		t.Fatalf("推荐结果 Count 应为 0, got %d", res.Count)
	}
	if len(res.Items) != 2 {
		t.Fatalf("期望 2 条推荐, got %d", len(res.Items))
	}
	if res.Items[0].Title != "Mechanical Keyboard" {
		t.Fatalf("推荐应按创建时间倒序, got %s", res.Items[0].Title)
	}
}

// 测试内容：品类过滤零命中同样走推荐分支（合法品类但没有商品）。
func TestRun_EmptyCategoryFallsBack(t *testing.T) {
	db := testutils.SetupDB(t)
	seedListings(t, db)

	res, err := Run[model.Listing](db.Model(&model.Listing{}), Params{},
		Equals("category", "Tickets"),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Matched {
		t.Fatal("Tickets 品类无商品，期望 Matched=false")
	}
	if len(res.Items) == 0 {
		t.Fatal("推荐集不应为空")
	}
}

// 测试内容：LIKE 通配符按字面处理，不允许用户注入 % 扩大匹配。
func TestRun_LikeEscaping(t *testing.T) {
	db := testutils.SetupDB(t)
	seedListings(t, db)

	res, err := Run[model.Listing](db.Model(&model.Listing{}), Params{},
		Substring("title", "%"),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Matched {
		t.Fatal("字面 %% 不应命中任何标题")
	}
}

// 测试内容：未设置的条件（空串/非正数）不过滤。
func TestRun_UnsetPredicates(t *testing.T) {
	db := testutils.SetupDB(t)
	seedListings(t, db)

	res, err := Run[model.Listing](db.Model(&model.Listing{}), Params{},
		Substring("title", ""),
		Equals("category", ""),
		Ceiling("price_cents", 0),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Matched || len(res.Items) != 4 {
		t.Fatalf("全部条件未设置应返回全量 4 条, got %d", len(res.Items))
	}
}
