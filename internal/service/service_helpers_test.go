package service

import (
	"testing"

	"Campus_Community/internal/lifecycle"
	"Campus_Community/internal/model"
	"Campus_Community/internal/rbac"
	"Campus_Community/internal/testutils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupManager(t *testing.T) (*lifecycle.Manager, *testutils.MemBlobStore) {
	t.Helper()
	db := testutils.SetupDB(t)
	blobs := testutils.NewMemBlobStore()
	return lifecycle.NewManager(db, blobs, zap.NewNop()), blobs
}

func seedUser(t *testing.T, db *gorm.DB, username string, siteRole rbac.SiteRole) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Password: "$2a$10$fakehashfakehashfakehashfakehashfakehashfakehash",
		Email:    username + "@example.com",
		SiteRole: int(siteRole),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedMember(t *testing.T, db *gorm.DB, groupID, userID uint64, role rbac.GroupRole) {
	t.Helper()
	m := &model.GroupMember{GroupID: groupID, UserID: userID, Role: int(role)}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
}

func pngImage(t *testing.T) *lifecycle.ImageUpload {
	t.Helper()
	return &lifecycle.ImageUpload{Data: testutils.PNGBytes(t, 200, 200), Ext: ".png"}
}
