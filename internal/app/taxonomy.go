package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/job-matcher/internal/config"
	"github.com/fairyhunter13/job-matcher/internal/skills"
)

// ReloadTaxonomy loads the taxonomy at path and swaps it into ex. On error the
// current snapshot stays in place.
func ReloadTaxonomy(path string, ex *skills.Extractor) error {
	tax, err := config.LoadSkillTaxonomy(path)
	if err != nil {
		return err
	}
	ex.Swap(tax)
	slog.Info("skill taxonomy loaded", slog.String("version", tax.Version()), slog.Int("skills", tax.Len()))
	return nil
}

// WatchTaxonomy reloads the taxonomy on every SIGHUP until ctx is done.
func WatchTaxonomy(ctx context.Context, path string, ex *skills.Extractor) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := ReloadTaxonomy(path, ex); err != nil {
				slog.Error("skill taxonomy reload failed; keeping current version",
					slog.String("version", ex.Version()),
					slog.Any("error", err))
			}
		}
	}
}
