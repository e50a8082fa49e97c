package assets

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"kidreel/client"
	"kidreel/internal/fsutil"
	"kidreel/mediatool"
	"kidreel/models"
)

// ImageService generates one still image per prompt.
// *client.ImageClient satisfies it.
type ImageService interface {
	Generate(ctx context.Context, prompt, outputPath string) error
}

// StockService searches and downloads stock footage.
// *client.StockClient satisfies it.
type StockService interface {
	Search(ctx context.Context, query string, perPage int) ([]client.StockVideo, error)
	Download(ctx context.Context, fileURL, outputPath string) error
}

const (
	defaultAPISlots      = 2 // concurrent generate/search calls
	defaultDownloadSlots = 3 // concurrent bulk downloads

	searchPerPage  = 5   // candidates requested per section
	minClipSeconds = 3.0 // clips shorter than this are unusable
	maxPromptLen   = 1000
)

// imageStyle is the fixed style preamble for generated scenes. The
// no-text clause matters: generated lettering is almost always garbled.
const imageStyle = "Bright 3D cartoon illustration for children aged 4-8, " +
	"modern animated-movie style. Saturated cheerful colors, soft rounded shapes, " +
	"big expressive eyes, friendly smiling characters, soft lighting, clean " +
	"composition with one clear focal point. " +
	"No text, no words, no letters, no watermarks."

// Acquirer fetches the visual assets for a script, one asset per
// section. Sections whose asset cannot be produced are skipped with a
// warning; the run only fails when nothing at all could be acquired.
type Acquirer struct {
	images        ImageService
	stock         StockService
	gateway       mediatool.Gateway
	logger        zerolog.Logger
	apiSlots      int
	downloadSlots int
}

// NewAcquirer creates an acquirer. Services are attached with the
// setters; the gateway validates downloaded clips by probing them.
func NewAcquirer(gateway mediatool.Gateway, logger zerolog.Logger) *Acquirer {
	return &Acquirer{
		gateway:       gateway,
		logger:        logger.With().Str("component", "assets").Logger(),
		apiSlots:      defaultAPISlots,
		downloadSlots: defaultDownloadSlots,
	}
}

// SetImageService attaches the image-generation client.
func (a *Acquirer) SetImageService(svc ImageService) *Acquirer {
	a.images = svc
	return a
}

// SetStockService attaches the stock-footage client.
func (a *Acquirer) SetStockService(svc StockService) *Acquirer {
	a.stock = svc
	return a
}

// SetSlots overrides the concurrency limits. Values below one are ignored.
func (a *Acquirer) SetSlots(api, download int) *Acquirer {
	if api > 0 {
		a.apiSlots = api
	}
	if download > 0 {
		a.downloadSlots = download
	}
	return a
}

// AcquireImages generates one image per script section into dir and
// returns the ordered asset list. Failed sections are dropped with a
// warning; an error is returned only when no image could be generated
// or the context was canceled.
func (a *Acquirer) AcquireImages(ctx context.Context, script *models.Script, dir string) ([]models.VisualAsset, []models.Warning, error) {
	if a.images == nil {
		return nil, nil, fmt.Errorf("no image service configured")
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, nil, err
	}

	sched := NewScheduler([]ResourceConstraint{
		{Type: ResourceAPI, MaxSlots: a.apiSlots},
	})
	sched.SetProgressCallback(a.logProgress)

	n := len(script.Sections)
	paths := make([]string, n)
	tasks := make([]*Task, n)

	for i := 0; i < n; i++ {
		section := &script.Sections[i]
		out := filepath.Join(dir, fmt.Sprintf("scene_%02d.png", i+1))
		paths[i] = out

		task := &Task{
			ID:       fmt.Sprintf("image-%02d", i),
			Resource: ResourceAPI,
			Run: func(ctx context.Context) error {
				prompt := imagePrompt(script.Topic, section)
				if err := a.images.Generate(ctx, prompt, out); err != nil {
					return err
				}
				if !fsutil.NonEmpty(out) {
					return fmt.Errorf("generation wrote no image to %s", out)
				}
				return nil
			},
		}
		tasks[i] = task
		if err := sched.Add(task); err != nil {
			return nil, nil, err
		}
	}

	a.logger.Info().Int("sections", n).Msg("generating images")
	if err := sched.Execute(ctx); err != nil {
		return nil, nil, err
	}

	return a.collect(ctx, tasks, paths, models.AssetImage)
}

// AcquireClips searches and downloads one stock clip per script section
// into dir. Each section runs as a search task followed by a dependent
// download task; downloads are validated by probing. Failed sections
// are dropped with a warning.
func (a *Acquirer) AcquireClips(ctx context.Context, script *models.Script, dir string) ([]models.VisualAsset, []models.Warning, error) {
	if a.stock == nil {
		return nil, nil, fmt.Errorf("no stock service configured")
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, nil, err
	}

	sched := NewScheduler([]ResourceConstraint{
		{Type: ResourceAPI, MaxSlots: a.apiSlots},
		{Type: ResourceDownload, MaxSlots: a.downloadSlots},
	})
	sched.SetProgressCallback(a.logProgress)

	n := len(script.Sections)
	paths := make([]string, n)
	urls := make([]string, n)
	searches := make([]*Task, n)
	downloads := make([]*Task, n)

	for i := 0; i < n; i++ {
		section := &script.Sections[i]
		out := filepath.Join(dir, fmt.Sprintf("section_%02d.mp4", i+1))
		paths[i] = out
		idx := i

		searchID := fmt.Sprintf("search-%02d", i)
		search := &Task{
			ID:       searchID,
			Resource: ResourceAPI,
			Run: func(ctx context.Context) error {
				query := searchQuery(script.Topic, section)
				videos, err := a.stock.Search(ctx, query, searchPerPage)
				if err != nil {
					return err
				}
				chosen := pickClip(videos)
				if chosen == nil {
					return fmt.Errorf("no usable footage for %q", query)
				}
				urls[idx] = chosen.URL
				return nil
			},
		}
		searches[i] = search
		if err := sched.Add(search); err != nil {
			return nil, nil, err
		}

		download := &Task{
			ID:           fmt.Sprintf("download-%02d", i),
			Resource:     ResourceDownload,
			Dependencies: []string{searchID},
			Run: func(ctx context.Context) error {
				if err := a.stock.Download(ctx, urls[idx], out); err != nil {
					return err
				}
				// A download that ffprobe rejects would poison the
				// encode much later; verify now.
				duration, err := mediatool.Duration(ctx, a.gateway, out)
				if err != nil {
					return fmt.Errorf("downloaded clip unreadable: %w", err)
				}
				if duration <= 0 {
					return fmt.Errorf("downloaded clip has no duration")
				}
				return nil
			},
		}
		downloads[i] = download
		if err := sched.Add(download); err != nil {
			return nil, nil, err
		}
	}

	a.logger.Info().Int("sections", n).Msg("fetching stock clips")
	if err := sched.Execute(ctx); err != nil {
		return nil, nil, err
	}

	// A failed search cascades into its download as a bare dependency
	// error; surface the search failure instead.
	for i := range downloads {
		if downloads[i].Status != TaskCompleted && searches[i].Status == TaskFailed {
			downloads[i].Err = fmt.Errorf("search failed: %w", searches[i].Err)
		}
	}

	return a.collect(ctx, downloads, paths, models.AssetClip)
}

// collect turns settled tasks into a compacted, validated asset list.
// Positions are renumbered so the sequence stays sequential after
// failed sections drop out.
func (a *Acquirer) collect(ctx context.Context, tasks []*Task, paths []string, kind models.AssetKind) ([]models.VisualAsset, []models.Warning, error) {
	var assets []models.VisualAsset
	var warnings []models.Warning

	for i, task := range tasks {
		if task.Status != TaskCompleted {
			warnings = append(warnings, models.NewWarning("assets",
				"section %d %s failed: %v", i, kind, task.Err))
			continue
		}
		assets = append(assets, models.VisualAsset{
			Position: len(assets),
			Kind:     kind,
			Path:     paths[i],
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, warnings, fmt.Errorf("asset acquisition canceled: %w", err)
	}
	if len(assets) == 0 {
		return nil, warnings, fmt.Errorf("no %s assets could be acquired (%d sections failed)", kind, len(tasks))
	}

	for _, w := range warnings {
		a.logger.Warn().Str("warning", w.Message).Msg("section degraded")
	}
	a.logger.Info().
		Int("acquired", len(assets)).
		Int("requested", len(tasks)).
		Msg("asset acquisition complete")

	return assets, warnings, nil
}

func (a *Acquirer) logProgress(completed, total int, task *Task) {
	a.logger.Debug().
		Str("task", task.ID).
		Int("completed", completed).
		Int("total", total).
		Bool("ok", task.Status == TaskCompleted).
		Msg("acquisition task settled")
}

// imagePrompt builds the generation prompt for one section: fixed style
// preamble, then the section's visual hint (or title) as the scene.
func imagePrompt(topic string, section *models.ScriptSection) string {
	subject := section.VisualHint
	if subject == "" {
		subject = section.Title
	}
	if subject == "" {
		subject = topic
	}

	prompt := fmt.Sprintf("%s Scene: %s. Topic: %s.", imageStyle, subject, topic)
	if len(prompt) > maxPromptLen {
		prompt = prompt[:maxPromptLen]
	}
	return prompt
}

// searchQuery builds the stock-footage query for one section.
func searchQuery(topic string, section *models.ScriptSection) string {
	if section.VisualHint != "" {
		return section.VisualHint
	}
	if section.Title != "" {
		return section.Title
	}
	return topic
}

// pickClip chooses the first landscape hit long enough to fill a slot,
// falling back to the first hit of any shape.
func pickClip(videos []client.StockVideo) *client.StockVideo {
	for i := range videos {
		v := &videos[i]
		if v.Duration >= minClipSeconds && v.Width > v.Height {
			return v
		}
	}
	if len(videos) > 0 {
		return &videos[0]
	}
	return nil
}
