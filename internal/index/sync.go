package index

import (
	"log/slog"

	"github.com/halvard/tavla/internal/store"
)

// Sync walks the canvases directory and brings the index up to date:
// new and changed documents are re-indexed, documents removed from disk
// are dropped from the index.
func Sync(db *DB, fs *store.FS, logger *slog.Logger) error {
	infos, err := fs.ListCanvases()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		disk[info.ID] = struct{}{}

		if checksums[info.ID] == info.Checksum {
			continue
		}

		data, err := fs.ReadCanvasRaw(info.ID)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("canvas", info.ID), slog.String("error", err.Error()))
			continue
		}
		if err := db.IndexDocument(info.ID, data, info.Checksum); err != nil {
			logger.Warn("sync: index failed", slog.String("canvas", info.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("canvas", info.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteCanvas(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("canvas", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("canvas", id))
			}
		}
	}

	return nil
}
