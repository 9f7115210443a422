// Package snapshotrepo manages the persisted ledger snapshot.
package snapshotrepo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/go-petr/pet-atm/internal/domain"
)

// StorageKind is recorded in the snapshot metadata.
const StorageKind = "json_snapshot"

const corruptTimeLayout = "20060102T150405Z"

// RepoFile keeps the whole ledger in a single JSON file.
type RepoFile struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// NewRepoFile returns RepoFile backed by the operating system filesystem.
func NewRepoFile(path string) *RepoFile {
	return NewRepoFileFs(afero.NewOsFs(), path)
}

// NewRepoFileFs returns RepoFile backed by fs.
func NewRepoFileFs(fs afero.Fs, path string) *RepoFile {
	return &RepoFile{
		fs:   fs,
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Path returns the snapshot file location.
func (r *RepoFile) Path() string {
	return r.path
}

// Load reads the snapshot. A missing file is a first run and yields an empty snapshot.
//
// A file that cannot be decoded, or that was written by an unknown layout
// version, is copied aside to <path>.corrupt-<timestamp> before the error is
// returned, so the next save cannot destroy it.
func (r *RepoFile) Load(ctx context.Context) (domain.Snapshot, error) {
	l := zerolog.Ctx(ctx).With().Str("path", r.path).Logger()

	var snap domain.Snapshot

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.Info().Msg("no snapshot found, starting fresh")
			return snap, nil
		}

		l.Error().Err(err).Send()

		return snap, errors.Wrap(err, "read snapshot")
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		_ = r.quarantine(ctx, data) // Logged.
		return domain.Snapshot{}, errors.Wrap(err, "decode snapshot")
	}

	if snap.Meta.Version != domain.SnapshotVersion {
		_ = r.quarantine(ctx, data) // Logged.
		return domain.Snapshot{}, errors.Errorf("unsupported snapshot version %d", snap.Meta.Version)
	}

	l.Debug().Int("accounts", len(snap.Accounts)).Time("written_at", snap.Meta.Timestamp).Msg("snapshot loaded")

	return snap, nil
}

// Save writes the snapshot atomically: the data goes to <path>.tmp first,
// which is then renamed over the previous snapshot.
func (r *RepoFile) Save(ctx context.Context, snap domain.Snapshot) error {
	l := zerolog.Ctx(ctx).With().Str("path", r.path).Logger()

	snap.Meta = domain.Meta{
		Storage:   StorageKind,
		Version:   domain.SnapshotVersion,
		Timestamp: r.now(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		l.Error().Err(err).Send()
		return errors.Wrap(err, "encode snapshot")
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o700); err != nil {
			l.Error().Err(err).Send()
			return errors.Wrap(err, "create snapshot dir")
		}
	}

	tmp := r.path + ".tmp"

	if err := afero.WriteFile(r.fs, tmp, data, 0o600); err != nil {
		l.Error().Err(err).Send()
		return errors.Wrap(err, "write snapshot")
	}

	if err := r.fs.Rename(tmp, r.path); err != nil {
		l.Error().Err(err).Send()
		_ = r.fs.Remove(tmp)

		return errors.Wrap(err, "replace snapshot")
	}

	l.Trace().Int("accounts", len(snap.Accounts)).Int("bytes", len(data)).Msg("snapshot saved")

	return nil
}

// Preserve copies the current snapshot file to <path>.corrupt-<timestamp>.
//
// It is used when the file decodes but its content cannot be restored.
func (r *RepoFile) Preserve(ctx context.Context) error {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("path", r.path).Send()
		return errors.Wrap(err, "read snapshot")
	}

	return r.quarantine(ctx, data)
}

func (r *RepoFile) quarantine(ctx context.Context, data []byte) error {
	l := zerolog.Ctx(ctx)

	dst := r.path + ".corrupt-" + r.now().Format(corruptTimeLayout)

	if err := afero.WriteFile(r.fs, dst, data, 0o600); err != nil {
		l.Error().Err(err).Str("path", r.path).Msg("cannot preserve unreadable snapshot")
		return errors.Wrap(err, "preserve snapshot")
	}

	l.Warn().Str("path", r.path).Str("copy", dst).Msg("unreadable snapshot preserved")

	return nil
}
