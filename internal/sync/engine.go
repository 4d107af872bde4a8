package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/klauern/notesync/internal/backup"
	"github.com/klauern/notesync/internal/logging"
	"github.com/klauern/notesync/internal/model"
	"github.com/klauern/notesync/internal/notify"
	"github.com/klauern/notesync/internal/resolve"
	"github.com/klauern/notesync/internal/store"
)

// ProgressFunc receives per-note progress during a pass. current is
// 1-based; total is the number of notes in the current direction.
type ProgressFunc func(direction Direction, current, total int, path string)

// Options configures an Engine.
type Options struct {
	// Resolver decides the surviving content when both sides changed.
	Resolver resolve.Resolver

	// Backups snapshots the local notes directory before each pass.
	// Nil disables backups.
	Backups *backup.Manager

	// MaxBackups prunes old snapshots after a successful backup.
	// Zero or negative keeps everything.
	MaxBackups int

	// Notifier receives pass outcomes. Nil means no notifications.
	Notifier notify.Notifier

	// NotifyOnSuccess sends a notification when a pass changed notes.
	NotifyOnSuccess bool

	// NotifyOnError sends a notification when a pass fails or has
	// per-note errors.
	NotifyOnError bool

	// DryRun reports what would happen without writing anything.
	DryRun bool

	// OnProgress, when set, is called for every note considered.
	OnProgress ProgressFunc
}

// Engine performs bidirectional note synchronization between a local
// store and a remote store.
type Engine struct {
	local    store.Store
	remote   store.Store
	resolver resolve.Resolver
	backups  *backup.Manager
	maxKeep  int
	notifier notify.Notifier

	notifySuccess bool
	notifyError   bool
	dryRun        bool
	onProgress    ProgressFunc
}

// NewEngine builds an engine syncing between local and remote.
func NewEngine(local store.Store, remote store.Store, opts Options) *Engine {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = resolve.ForStrategy("", resolve.Options{DryRun: opts.DryRun})
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}

	return &Engine{
		local:         local,
		remote:        remote,
		resolver:      resolver,
		backups:       opts.Backups,
		maxKeep:       opts.MaxBackups,
		notifier:      notifier,
		notifySuccess: opts.NotifyOnSuccess,
		notifyError:   opts.NotifyOnError,
		dryRun:        opts.DryRun,
		onProgress:    opts.OnProgress,
	}
}

// Run performs one full bidirectional pass: backup, reachability
// probe, push, then pull. A failed probe aborts the pass before any
// note is touched. Per-note failures are counted and do not stop the
// pass.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{DryRun: e.dryRun}

	if e.backups != nil {
		path, err := e.backups.Create()
		if err != nil {
			logging.Warn("backup failed, continuing sync", logging.Err(err))
		} else if path != "" {
			report.BackupPath = path
			if e.maxKeep > 0 && !e.dryRun {
				if _, err := e.backups.CleanupOld(e.maxKeep); err != nil {
					logging.Warn("backup cleanup failed", logging.Err(err))
				}
			}
		}
	}

	if pinger, ok := e.remote.(store.Pinger); ok {
		if !pinger.TestConnection(ctx) {
			err := fmt.Errorf("%s store is unreachable", e.remote.Name())
			if e.notifyError {
				e.notifier.Notify(ctx, "sync aborted: "+err.Error(), true)
			}
			return nil, err
		}
	}

	// Both listings are taken before either leg writes, so a note
	// created by the push leg is not re-examined by the pull leg.
	localRefs, localErr := e.local.List(ctx)
	remoteRefs, remoteErr := e.remote.List(ctx)

	if localErr != nil {
		logging.Error("failed to list notes",
			logging.Store(e.local.Name()), logging.Err(localErr))
		report.LocalToRemote.Errors++
	} else {
		report.LocalToRemote = e.syncDirection(ctx, LocalToRemote, localRefs, e.local, e.remote)
	}

	if remoteErr != nil {
		logging.Error("failed to list notes",
			logging.Store(e.remote.Name()), logging.Err(remoteErr))
		report.RemoteToLocal.Errors++
	} else {
		report.RemoteToLocal = e.syncDirection(ctx, RemoteToLocal, remoteRefs, e.remote, e.local)
	}

	report.Duration = time.Since(start)

	logging.Info("sync pass complete",
		logging.Direction(string(LocalToRemote)), logging.Count(report.LocalToRemote.Changed()))
	logging.Info("sync pass complete",
		logging.Direction(string(RemoteToLocal)), logging.Count(report.RemoteToLocal.Changed()))

	if report.HasErrors() && e.notifyError {
		e.notifier.Notify(ctx, fmt.Sprintf("sync finished with errors: %s / %s",
			report.LocalToRemote, report.RemoteToLocal), true)
	} else if report.TotalChanged() > 0 && e.notifySuccess && !e.dryRun {
		e.notifier.Notify(ctx, fmt.Sprintf("synced %d notes", report.TotalChanged()), false)
	}

	return report, nil
}

// syncDirection pushes every listed note from src into tgt. Each note
// is handled in isolation; a failure affects only its own counter.
func (e *Engine) syncDirection(ctx context.Context, dir Direction, refs []model.Ref, src, tgt store.Store) Stats {
	var stats Stats

	for i, ref := range refs {
		if e.onProgress != nil {
			e.onProgress(dir, i+1, len(refs), ref.Path)
		}

		srcContent, ok, err := src.Read(ctx, ref.Path)
		if err != nil {
			logging.Error("failed to read note",
				logging.Note(ref.Name), logging.Store(src.Name()), logging.Err(err))
			stats.Errors++
			continue
		}
		if !ok {
			// Listed but gone by the time we read it.
			logging.Warn("note vanished between list and read",
				logging.Note(ref.Name), logging.Store(src.Name()))
			stats.Errors++
			continue
		}

		tgtContent, exists, err := tgt.Read(ctx, ref.Path)
		if err != nil {
			logging.Error("failed to read note",
				logging.Note(ref.Name), logging.Store(tgt.Name()), logging.Err(err))
			stats.Errors++
			continue
		}

		switch {
		case !exists:
			if err := tgt.Write(ctx, ref.Path, srcContent); err != nil {
				logging.Error("failed to write note",
					logging.Note(ref.Name), logging.Store(tgt.Name()), logging.Err(err))
				stats.Errors++
				continue
			}
			logging.Info("created note",
				logging.Note(ref.Name), logging.Direction(string(dir)))
			stats.Created++

		case model.ContentHash(srcContent) == model.ContentHash(tgtContent):
			stats.Skipped++

		default:
			localSide, remoteSide := orient(dir, srcContent, tgtContent)
			resolved := e.resolver.Resolve(localSide, remoteSide, e.localPath(ref.Path))
			if err := tgt.Write(ctx, ref.Path, resolved); err != nil {
				logging.Error("failed to write note",
					logging.Note(ref.Name), logging.Store(tgt.Name()), logging.Err(err))
				stats.Errors++
				continue
			}
			logging.Info("updated note",
				logging.Note(ref.Name), logging.Direction(string(dir)))
			stats.Updated++
		}
	}

	return stats
}

// orient orders the two contents so the resolver always sees the
// filesystem side first, whichever direction is running.
func orient(dir Direction, src, tgt string) (localSide, remoteSide string) {
	if dir == LocalToRemote {
		return src, tgt
	}
	return tgt, src
}

// localPath maps a store-relative note path to its filesystem path so
// resolvers can stat and back up the file.
func (e *Engine) localPath(path string) string {
	if l, ok := e.local.(*store.Local); ok {
		return l.AbsPath(path)
	}
	return path
}
