package server

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"findash/internal/api"
	"findash/internal/store"
	"findash/internal/util"
)

// Janitor 定时清理过期下载与超出保留期的上传文件
type Janitor struct {
	cron      *cron.Cron
	users     store.UserData
	downloads *api.DownloadStore
	retention time.Duration
	now       func() time.Time
}

// NewJanitor 创建清理任务；schedule 为 cron 表达式或 @every 形式
func NewJanitor(schedule string, retention time.Duration, users store.UserData, downloads *api.DownloadStore) (*Janitor, error) {
	j := &Janitor{
		cron:      cron.New(),
		users:     users,
		downloads: downloads,
		retention: retention,
		now:       time.Now,
	}
	if _, err := j.cron.AddFunc(schedule, j.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start 启动定时任务
func (j *Janitor) Start() {
	j.cron.Start()
	util.LogInfo("janitor started", map[string]interface{}{"retention": j.retention.String()})
}

// Stop 停止并等待正在运行的清理结束
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce 执行一次清理
func (j *Janitor) RunOnce() {
	expired := 0
	if j.downloads != nil {
		paths := j.downloads.PurgeExpired()
		expired = len(paths)
		removeAll(paths)
	}

	stale := 0
	if j.users != nil && j.retention > 0 {
		purged, err := j.users.PurgeUploads(j.now().Add(-j.retention))
		if err != nil {
			util.LogError("purge uploads failed", err, nil)
		}
		stale = len(purged)
		for _, u := range purged {
			removeAll([]string{u.Path})
		}
	}

	if expired > 0 || stale > 0 {
		util.LogInfo("janitor run", map[string]interface{}{"expired_downloads": expired, "stale_uploads": stale})
	}
}

func removeAll(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			util.LogWarn("janitor remove failed", map[string]interface{}{"path": p, "error": err.Error()})
		}
	}
}
