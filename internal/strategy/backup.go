package strategy

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"

	"gorm.io/datatypes"
)

const backupPrefix = "backup_"

type BackupStrategy struct {
	log *logger.Logger
}

func NewBackupStrategy(log *logger.Logger) *BackupStrategy {
	return &BackupStrategy{log: log}
}

func (s *BackupStrategy) Type() model.TaskType {
	return model.TaskTypeBackup
}

func (s *BackupStrategy) Execute(ctx context.Context, raw datatypes.JSON) (Result, error) {
	cfg, err := dto.DecodeBackupConfig(raw)
	if err != nil {
		return failedResult(err.Error()), err
	}

	if _, err := os.Stat(cfg.SourcePath); err != nil {
		return failedResult(fmt.Sprintf("source path does not exist: %s", cfg.SourcePath)), nil
	}

	if err := os.MkdirAll(cfg.DestinationPath, 0o755); err != nil {
		return failedResult(fmt.Sprintf("failed to create destination: %v", err)), nil
	}

	timestamp := utils.TimeNowUTC().Format("20060102_150405")

	var artifact string
	if *cfg.Compress {
		artifact = backupPrefix + timestamp + ".zip"
		err = zipTree(ctx, cfg.SourcePath, filepath.Join(cfg.DestinationPath, artifact))
	} else {
		artifact = backupPrefix + timestamp
		err = copyTree(ctx, cfg.SourcePath, filepath.Join(cfg.DestinationPath, artifact))
	}
	if err != nil {
		return failedResult(fmt.Sprintf("backup failed: %v", err)), nil
	}

	removed := s.sweepExpired(cfg.DestinationPath, artifact, cfg.RetentionDays)

	output := fmt.Sprintf("Created %s", artifact)
	if removed > 0 {
		output += fmt.Sprintf(", removed %d expired backup(s)", removed)
	}
	return Result{
		Status:   model.StatusSuccess,
		Output:   output,
		ExitCode: 0,
	}, nil
}

// sweepExpired removes prior backup artifacts older than the retention
// window. The artifact written by the current run is never touched.
func (s *BackupStrategy) sweepExpired(dir, keep string, retentionDays int) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn("failed to scan backup destination for retention",
			logger.StringField("dir", dir), logger.ErrorField(err))
		return 0
	}

	cutoff := utils.TimeNowUTC().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, backupPrefix) || name == keep {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			s.log.Warn("failed to remove expired backup",
				logger.StringField("artifact", name), logger.ErrorField(err))
			continue
		}
		removed++
	}
	return removed
}

func zipTree(ctx context.Context, source, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return addZipFile(zw, source, filepath.Base(source))
	}

	base := filepath.Base(source)
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		return addZipFile(zw, path, filepath.Join(base, rel))
	})
}

func addZipFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(name)
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

func copyTree(ctx context.Context, source, dest string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return err
		}
		return copyFile(source, filepath.Join(dest, filepath.Base(source)), info.Mode())
	}

	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(source, dest string, mode os.FileMode) error {
	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
