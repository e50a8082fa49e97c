// Package workspace manages the on-disk layout of one pipeline run:
// a scratch directory for intermediate files, stable naming for the
// finished video, and retention cleanup so the output directory does
// not grow without bound.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kidreel/internal/fsutil"
	"kidreel/internal/timeutil"
)

// Subdirectories created inside every run directory.
const (
	assetsSubdir = "assets"
	audioSubdir  = "audio"
)

// runsSubdir holds the per-run scratch directories under the output root.
const runsSubdir = "runs"

// Run is the working area for a single pipeline invocation. All
// intermediate files live under Dir; only the finished video, its
// thumbnail and its metadata sidecar land in the output root.
type Run struct {
	ID        string
	Root      string
	Dir       string
	CreatedAt time.Time

	logger zerolog.Logger
}

// NewRun creates a fresh run directory under outputDir and returns the
// workspace handle. The directory name carries a timestamp and the
// first uuid segment so concurrent-free scheduled runs never collide.
func NewRun(outputDir string, logger zerolog.Logger) (*Run, error) {
	id := uuid.NewString()
	now := time.Now()

	dir := filepath.Join(outputDir, runsSubdir,
		fmt.Sprintf("run_%s_%s", timeutil.Timestamp(now), id[:8]))

	for _, d := range []string{dir, filepath.Join(dir, assetsSubdir), filepath.Join(dir, audioSubdir)} {
		if err := fsutil.EnsureDir(d); err != nil {
			return nil, fmt.Errorf("create run workspace: %w", err)
		}
	}

	r := &Run{
		ID:        id,
		Root:      outputDir,
		Dir:       dir,
		CreatedAt: now,
		logger:    logger.With().Str("component", "workspace").Logger(),
	}
	r.logger.Debug().Str("run_id", id).Str("dir", dir).Msg("run workspace created")
	return r, nil
}

// AssetsDir returns the directory for acquired visual assets.
func (r *Run) AssetsDir() string {
	return filepath.Join(r.Dir, assetsSubdir)
}

// AudioDir returns the directory for narration and mixed audio files.
func (r *Run) AudioDir() string {
	return filepath.Join(r.Dir, audioSubdir)
}

// Path returns the path of a scratch file inside the run directory.
func (r *Run) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// VideoPath returns the final video location in the output root,
// named after the run timestamp and the topic slug.
func (r *Run) VideoPath(topic string) string {
	stem := timeutil.Timestamp(r.CreatedAt) + "_" + timeutil.SafeName(topic)
	return filepath.Join(r.Root, stem+".mp4")
}

// SidecarPath returns the metadata sidecar location for a video path.
func SidecarPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".json"
}

// ThumbnailPath returns the thumbnail location for a video path.
func ThumbnailPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "_thumb.jpg"
}

// Remove deletes the run's scratch directory. The finished video and
// its companions in the output root are untouched.
func (r *Run) Remove() error {
	if err := os.RemoveAll(r.Dir); err != nil {
		return fmt.Errorf("remove run workspace %s: %w", r.Dir, err)
	}
	r.logger.Debug().Str("dir", r.Dir).Msg("run workspace removed")
	return nil
}

// CleanupVideos keeps the newest keep finished videos in outputDir and
// deletes the rest, along with each deleted video's thumbnail and
// metadata sidecar. Returns how many videos were removed.
func CleanupVideos(outputDir string, keep int, logger zerolog.Logger) (int, error) {
	if keep < 0 {
		keep = 0
	}
	log := logger.With().Str("component", "workspace").Logger()

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read output dir %s: %w", outputDir, err)
	}

	type video struct {
		path    string
		modTime time.Time
	}
	var videos []video
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp4") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		videos = append(videos, video{
			path:    filepath.Join(outputDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(videos) <= keep {
		return 0, nil
	}

	// Newest first; everything past the retention window goes.
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].modTime.After(videos[j].modTime)
	})

	removed := 0
	for _, v := range videos[keep:] {
		for _, path := range []string{v.path, SidecarPath(v.path), ThumbnailPath(v.path)} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", path).Msg("could not remove old artifact")
				continue
			}
		}
		removed++
		log.Info().Str("video", v.path).Msg("old video removed")
	}
	return removed, nil
}
