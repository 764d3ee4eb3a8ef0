package usecase

import (
	"context"
	"strings"
	"time"

	"marketpulse/internal/domain/models"
	"marketpulse/internal/domain/repository"
	"marketpulse/internal/domain/service"
	"marketpulse/pkg/logger"
)

// packHeadlineLimit caps how many headlines a brief pack carries. The brief
// is a skim, not the full window.
const packHeadlineLimit = 10

// BriefService builds retrieval packs from the current snapshot and turns a
// pack into prose. Generation never fails from the caller's point of view:
// when the summarizer is absent or errors, the deterministic template is the
// answer.
type BriefService struct {
	log        *logger.Logger
	summarizer service.Summarizer
	tasks      repository.TaskStore

	now func() time.Time
}

// NewBriefService wires the brief pipeline. summarizer and tasks may be nil.
func NewBriefService(log *logger.Logger, summarizer service.Summarizer, tasks repository.TaskStore) *BriefService {
	return &BriefService{
		log:        log,
		summarizer: summarizer,
		tasks:      tasks,
		now:        time.Now,
	}
}

// BuildPack assembles the pack from already-fetched snapshot data plus the
// open task list. It performs no upstream fetching.
func (b *BriefService) BuildPack(ctx context.Context, snap *models.Snapshot) models.BriefPack {
	pack := models.BriefPack{
		Time:      b.now().Format("Monday, 2 January 2006 15:04 MST"),
		Pulse:     []models.Quote{},
		Headlines: []models.Headline{},
		Tasks:     []models.Task{},
	}
	if snap != nil {
		pack.Pulse = snap.Quotes
		pack.Headlines = snap.Headlines
		if len(pack.Headlines) > packHeadlineLimit {
			pack.Headlines = pack.Headlines[:packHeadlineLimit]
		}
	}

	if b.tasks != nil {
		open, err := b.tasks.Open(ctx)
		if err != nil {
			b.log.Warn("task list unavailable for brief pack", logger.Error(err))
		} else {
			pack.Tasks = open
		}
	}

	return pack
}

// Generate turns a pack into a text brief. The summarizer path is tried
// first; any failure falls back to the deterministic template. The result is
// always non-empty.
func (b *BriefService) Generate(ctx context.Context, pack string) string {
	if b.summarizer != nil {
		brief, err := b.summarizer.Summarize(ctx, pack)
		if err == nil && strings.TrimSpace(brief) != "" {
			return brief
		}
		if err != nil {
			b.log.Warn("summarizer unavailable, using fallback brief", logger.Error(err))
		}
	}
	return fallbackBrief(pack)
}

// fallbackBrief is the offline rendering of a pack: the pack's own sections
// under a fixed header. No facts are added or dropped.
func fallbackBrief(pack string) string {
	var b strings.Builder
	b.WriteString("DAILY BRIEF (offline mode)\n")
	b.WriteString("==========================\n\n")
	b.WriteString(strings.TrimSpace(pack))
	b.WriteString("\n\nGenerated without the summarizer; contents mirror the source pack verbatim.\n")
	return b.String()
}
