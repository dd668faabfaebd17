// Package backup copies the SQLite data file to timestamped backups and
// optionally mirrors them off-site.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"vetclinic/m/internal/database"
	"vetclinic/m/internal/logger"
	"vetclinic/m/internal/notify"
)

var (
	// ErrUnsupported is returned for stores without a data file, such as
	// PostgreSQL or an in-memory SQLite database.
	ErrUnsupported = errors.New("backup is only supported for sqlite data files")
	ErrNoDataFile  = errors.New("database file not found")
)

// Uploader mirrors a finished backup file under key.
type Uploader interface {
	Upload(ctx context.Context, key, path string) error
}

type Service struct {
	dsn    string
	mirror Uploader
	log    logger.Logger
	now    func() time.Time
	rearm  chan struct{}
}

// New returns a backup service for dsn. mirror may be nil.
func New(dsn string, mirror Uploader, log logger.Logger) *Service {
	return &Service{dsn: dsn, mirror: mirror, log: log, now: time.Now, rearm: make(chan struct{}, 1)}
}

// Run copies the data file to <file>.<YYYYmmddHHMMSS>.bak next to it and
// returns the backup path. A mirror failure is logged but does not fail the
// local backup.
func (s *Service) Run(ctx context.Context) (string, error) {
	src, ok := database.SQLitePath(s.dsn)
	if !ok {
		return "", ErrUnsupported
	}
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoDataFile
		}
		return "", err
	}

	dst := fmt.Sprintf("%s.%s.bak", src, s.now().Format("20060102150405"))
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("backup %s: %w", src, err)
	}
	s.log.Info("backup created", map[string]any{"path": dst})

	if s.mirror != nil {
		key := "backups/" + filepath.Base(dst)
		if err := s.mirror.Upload(ctx, key, dst); err != nil {
			s.log.Error("backup mirror failed", map[string]any{"key": key, "error": err})
		} else {
			s.log.Info("backup mirrored", map[string]any{"key": key})
		}
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Schedule runs a backup every interval() until ctx is done. interval is
// read again after each backup and whenever Refresh is called, so a
// settings change takes effect without a restart. A non-positive interval
// pauses scheduled backups until the next Refresh.
func (s *Service) Schedule(ctx context.Context, interval func() time.Duration) {
	var timer *time.Timer
	var fire <-chan time.Time
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, fire = nil, nil
		every := interval()
		if every <= 0 {
			s.log.Info("scheduled backups disabled", nil)
			return
		}
		timer = time.NewTimer(every)
		fire = timer.C
		s.log.Debug("next backup scheduled", map[string]any{"in": every.String()})
	}
	arm()
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rearm:
			arm()
		case <-fire:
			if _, err := s.Run(ctx); err != nil && !errors.Is(err, ErrUnsupported) {
				s.log.Error("scheduled backup failed", map[string]any{"error": err})
			}
			arm()
		}
	}
}

// Refresh re-reads the schedule interval. It is subscribed to settings
// changes.
func (s *Service) Refresh(ctx context.Context, topic notify.Topic) error {
	select {
	case s.rearm <- struct{}{}:
	default:
	}
	return nil
}

// Days converts the backup_frequency setting to an interval.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
