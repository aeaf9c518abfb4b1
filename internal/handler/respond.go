package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"Campus_Community/internal/lifecycle"
	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/storage"

	"github.com/gin-gonic/gin"
)

// fail 按错误类别映射 HTTP 状态码，消息直接透出给客户端
func fail(c *gin.Context, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return
	}
	switch e.Kind {
	case errs.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"msg": e.Msg})
	case errs.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"msg": e.Msg})
	case errs.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"msg": e.Msg})
	case errs.KindInvalid:
		resp := gin.H{"msg": e.Msg}
		if len(e.Fields) > 0 {
			resp["fields"] = e.Fields
		}
		c.JSON(http.StatusBadRequest, resp)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
	}
}

func ok(c *gin.Context, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["msg"] = "ok"
	c.JSON(http.StatusOK, data)
}

func currentUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Invalid("invalid id")
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

const maxUploadBytes = 8 << 20

// formImage 从 multipart 表单取一张图；required=false 时缺省返回 nil
func formImage(c *gin.Context, field string, required bool) (*lifecycle.ImageUpload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if required {
			return nil, errs.Invalid(field + " file required")
		}
		return nil, nil
	}
	if file.Size > maxUploadBytes {
		return nil, errs.Invalid("file too large")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !storage.ValidImageExt(ext) {
		return nil, errs.Invalid("unsupported image type")
	}
	data, err := readAll(file)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &lifecycle.ImageUpload{Data: data, Ext: ext}, nil
}

func readAll(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
