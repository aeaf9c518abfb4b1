package lifecycle

import (
	"context"

	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manager 统一编排"记录+媒体+从属记录"的多步创建/销毁。
// 五类资源（用户证件照、群组、商品、帖子、媒体更换）共用同一套
// 步骤顺序与补偿规则。
type Manager struct {
	db    *gorm.DB
	blobs storage.BlobStore
	log   *zap.Logger
}

func NewManager(db *gorm.DB, blobs storage.BlobStore, log *zap.Logger) *Manager {
	return &Manager{db: db, blobs: blobs, log: log}
}

func (m *Manager) DB() *gorm.DB             { return m.db }
func (m *Manager) Blobs() storage.BlobStore { return m.blobs }

// ImageUpload 上传的原始图片
type ImageUpload struct {
	Data []byte
	Ext  string // 含点，如 .png
}

// StagedMedia 已落盘的原图+缩略图路径
type StagedMedia struct {
	FullPath  string
	ThumbPath string
}

// CreateSpec 单次创建的步骤定义
type CreateSpec struct {
	// Guard 权限与前置校验（如名称/邮箱占用）；返回的错误原样透出
	Guard func(db *gorm.DB) error
	// Image 可选；非空时先生成缩略图并落盘两份 blob
	Image     *ImageUpload
	ThumbSize int
	Dir       string // blob 子目录：avatars / groups / listings / threads
	// Persist 在同一事务内插入核心记录与从属记录，返回新 id
	Persist func(tx *gorm.DB, media *StagedMedia) (uint64, error)
}

// Create 固定顺序执行：守卫 → 暂存媒体 → 事务写库。
// 媒体暂存之后任何一步失败都会先删掉已落盘的 blob 再返回错误：
// 失败的创建绝不留下上传文件。
func (m *Manager) Create(ctx context.Context, spec CreateSpec) (uint64, error) {
	if spec.Guard != nil {
		if err := spec.Guard(m.db.WithContext(ctx)); err != nil {
			return 0, err
		}
	}

	var media *StagedMedia
	if spec.Image != nil {
		staged, err := m.stage(spec.Image, spec.Dir, spec.ThumbSize)
		if err != nil {
			return 0, err
		}
		media = staged
	}

	var newID uint64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := spec.Persist(tx, media)
		if err != nil {
			return err
		}
		newID = id
		return nil
	})
	if err != nil {
		if media != nil {
			m.unstage(media)
		}
		return 0, errs.Wrap(err)
	}
	return newID, nil
}

// stage 校验扩展名、生成缩略图并写入两份 blob；
// 第二份写失败时回收第一份
func (m *Manager) stage(img *ImageUpload, dir string, size int) (*StagedMedia, error) {
	if !storage.ValidImageExt(img.Ext) {
		return nil, errs.Invalid("unsupported image type " + img.Ext)
	}
	if size <= 0 {
		size = storage.ThumbListing
	}

	thumb, err := storage.MakeThumbnail(img.Data, img.Ext, size)
	if err != nil {
		return nil, errs.Invalid("image file is not decodable")
	}

	fullPath, err := m.blobs.Save(img.Data, dir, img.Ext)
	if err != nil {
		return nil, errs.Internal(err)
	}
	thumbPath, err := m.blobs.Save(thumb, dir+"/thumbs", img.Ext)
	if err != nil {
		if derr := m.blobs.Delete(fullPath); derr != nil {
			m.log.Warn("orphan blob after failed staging", zap.String("path", fullPath), zap.Error(derr))
		}
		return nil, errs.Internal(err)
	}
	return &StagedMedia{FullPath: fullPath, ThumbPath: thumbPath}, nil
}

// unstage 创建失败的补偿：删除本次已落盘的 blob
func (m *Manager) unstage(media *StagedMedia) {
	for _, p := range []string{media.FullPath, media.ThumbPath} {
		if err := m.blobs.Delete(p); err != nil {
			m.log.Error("compensation delete failed", zap.String("path", p), zap.Error(err))
		}
	}
}

// ReplaceSpec 媒体更换的步骤定义
type ReplaceSpec struct {
	// Guard 权限判定；返回的错误原样透出
	Guard func() error
	// Image 新图，必传
	Image     *ImageUpload
	ThumbSize int
	Dir       string
	// OldPaths 被替换的旧 blob 路径，成功后尽力删除
	OldPaths []string
	// Persist 在事务内把新媒体路径写回记录
	Persist func(tx *gorm.DB, media *StagedMedia) error
}

// Replace 更换头像/照片：守卫 → 暂存新媒体 → 事务写回 → 旧 blob 尽力删除。
// 写回失败时回收新 blob，旧媒体原样保留。
func (m *Manager) Replace(ctx context.Context, spec ReplaceSpec) error {
	if spec.Guard != nil {
		if err := spec.Guard(); err != nil {
			return err
		}
	}
	if spec.Image == nil {
		return errs.Invalid("image required")
	}

	media, err := m.stage(spec.Image, spec.Dir, spec.ThumbSize)
	if err != nil {
		return err
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return spec.Persist(tx, media)
	})
	if err != nil {
		m.unstage(media)
		return errs.Wrap(err)
	}

	for _, p := range spec.OldPaths {
		if p == "" {
			continue
		}
		if derr := m.blobs.Delete(p); derr != nil {
			m.log.Warn("stale blob unlink failed", zap.String("path", p), zap.Error(derr))
		}
	}
	return nil
}

// DestroySpec 单次销毁的步骤定义
type DestroySpec struct {
	// Load 读出资源的媒体路径；资源不存在时返回 errs.NotFound
	Load func(db *gorm.DB) ([]string, error)
	// Guard 删除权限判定
	Guard func() error
	// Delete 在事务内删除核心记录与从属行
	Delete func(tx *gorm.DB) error
}

// Destroy 固定顺序执行：取媒体路径 → 守卫 → blob 尽力删除 → 事务删库。
// blob 删除失败只记日志不终止：可以容忍孤儿文件，不能容忍指向
// 不存在资源的数据库行。
func (m *Manager) Destroy(ctx context.Context, spec DestroySpec) error {
	paths, err := spec.Load(m.db.WithContext(ctx))
	if err != nil {
		return err
	}

	if spec.Guard != nil {
		if err := spec.Guard(); err != nil {
			return err
		}
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := m.blobs.Delete(p); err != nil {
			m.log.Warn("blob unlink failed, continuing", zap.String("path", p), zap.Error(err))
		}
	}

	if err := m.db.WithContext(ctx).Transaction(spec.Delete); err != nil {
		return errs.Wrap(err)
	}
	return nil
}
