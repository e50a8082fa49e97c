// Package uploader publishes a finished video to YouTube through the
// Data API v3, with OAuth2 credentials and refresh token read from
// flat files. A missing thumbnail never fails the upload; a failed
// upload never deletes the local video.
package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"kidreel/internal/fsutil"
	"kidreel/models"
)

// Uploader publishes videos to a YouTube channel.
type Uploader struct {
	credentialsFile string
	tokenFile       string
	logger          zerolog.Logger
}

// New creates an Uploader reading OAuth2 client credentials and the
// stored refresh token from the given files.
func New(credentialsFile, tokenFile string, logger zerolog.Logger) *Uploader {
	return &Uploader{
		credentialsFile: credentialsFile,
		tokenFile:       tokenFile,
		logger:          logger.With().Str("component", "uploader").Logger(),
	}
}

// IsConfigured reports whether both credential files exist. Token
// acquisition (the one-time browser consent flow) is an operator task
// outside this program.
func (u *Uploader) IsConfigured() bool {
	return fsutil.NonEmpty(u.credentialsFile) && fsutil.NonEmpty(u.tokenFile)
}

// Upload sends the video and its metadata to YouTube and returns the
// new video id. thumbnailPath may be empty; a thumbnail that fails to
// set is logged and ignored since the video itself is already live.
func (u *Uploader) Upload(ctx context.Context, videoPath, thumbnailPath string, meta *models.VideoMetadata) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", fmt.Errorf("upload metadata invalid: %w", err)
	}
	if !fsutil.NonEmpty(videoPath) {
		return "", fmt.Errorf("video file %s is missing or empty", videoPath)
	}

	httpClient, err := u.httpClient(ctx)
	if err != nil {
		return "", err
	}
	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return "", fmt.Errorf("create youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.PrivacyStatus,
			SelfDeclaredMadeForKids: meta.MadeForKids,
			// False must still reach the API explicitly; the COPPA
			// declaration has no meaningful "unset".
			ForceSendFields: []string{"SelfDeclaredMadeForKids"},
		},
	}
	if meta.Language != "" {
		video.Snippet.DefaultAudioLanguage = meta.Language
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video for upload: %w", err)
	}
	defer file.Close()

	u.logger.Info().
		Str("video", videoPath).
		Str("title", meta.Title).
		Str("privacy", meta.PrivacyStatus).
		Msg("uploading video")

	inserted, err := service.Videos.
		Insert([]string{"snippet", "status"}, video).
		Media(file).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("video upload failed: %w", err)
	}

	u.logger.Info().Str("video_id", inserted.Id).Msg("video uploaded")

	if thumbnailPath != "" && fsutil.NonEmpty(thumbnailPath) {
		if err := u.setThumbnail(ctx, service, inserted.Id, thumbnailPath); err != nil {
			u.logger.Warn().Err(err).Msg("thumbnail upload failed, keeping auto-generated one")
		}
	}

	return inserted.Id, nil
}

func (u *Uploader) setThumbnail(ctx context.Context, service *youtube.Service, videoID, thumbnailPath string) error {
	file, err := os.Open(thumbnailPath)
	if err != nil {
		return fmt.Errorf("open thumbnail: %w", err)
	}
	defer file.Close()

	_, err = service.Thumbnails.
		Set(videoID).
		Media(file).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("set thumbnail: %w", err)
	}
	u.logger.Info().Str("video_id", videoID).Msg("thumbnail set")
	return nil
}

// httpClient builds an authenticated client from the flat-file
// credentials and token.
func (u *Uploader) httpClient(ctx context.Context) (*http.Client, error) {
	credentials, err := os.ReadFile(u.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth credentials %s: %w", u.credentialsFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(credentials, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth credentials: %w", err)
	}

	tokenData, err := os.ReadFile(u.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token %s (run the consent flow first): %w", u.tokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	return oauthConfig.Client(ctx, &token), nil
}
