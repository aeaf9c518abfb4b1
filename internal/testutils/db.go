package testutils

import (
	"fmt"
	"sync/atomic"
	"testing"

	"Campus_Community/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// SetupDB 为每个测试打开独立的内存 sqlite 并建全量表。
// TranslateError 与生产配置保持一致，唯一键冲突映射为 gorm.ErrDuplicatedKey。
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	seq := atomic.AddInt64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:campus_%d?mode=memory&cache=shared", seq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = gdb.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.GroupMember{},
		&model.Listing{},
		&model.Thread{},
		&model.Post{},
		&model.Attachment{},
		&model.Conversation{},
		&model.Message{},
		&model.NotifyOutbox{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}
