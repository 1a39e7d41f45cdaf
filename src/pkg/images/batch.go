package images

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// BatchResult is the outcome for one item of a batch. Source is the input
// (a file path for uploads, an id for downloads); Path is the written file.
type BatchResult struct {
	Source string
	ID     string
	Path   string
	Err    error
}

func (r BatchResult) OK() bool {
	return r.Err == nil
}

// UploadFiles uploads each file in order. A failure is recorded and the loop
// moves on; once ctx is done the remaining files are marked with its error.
func UploadFiles(ctx context.Context, cli ImageClient, paths []string) []BatchResult {
	results := make([]BatchResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{Source: path, Err: err})
			continue
		}

		slog.InfoContext(ctx, "Uploading image", "path", path)
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, BatchResult{Source: path, Err: fmt.Errorf("failed to read %s: %w", path, err)})
			continue
		}

		uploaded, err := cli.Upload(ctx, data)
		if err != nil {
			slog.WarnContext(ctx, "Upload failed", "path", path, "error", err)
			results = append(results, BatchResult{Source: path, Err: err})
			continue
		}
		results = append(results, BatchResult{Source: path, ID: uploaded.ID})
	}

	succeeded, _ := Summarize(results)
	slog.InfoContext(ctx, "Uploaded images", "succeeded", succeeded, "total", len(paths))
	return results
}

// DownloadToDir downloads each id into dir, creating dir if needed. Files are
// named after the id with an extension derived from the content type.
func DownloadToDir(ctx context.Context, cli ImageClient, ids []string, dir string) ([]BatchResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{Source: id, ID: id, Err: err})
			continue
		}

		img, err := cli.Download(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "Download failed", "image_id", id, "error", err)
			results = append(results, BatchResult{Source: id, ID: id, Err: err})
			continue
		}

		path := filepath.Join(dir, FileName(id, img.ContentType))
		if err := os.WriteFile(path, img.Data, 0644); err != nil {
			results = append(results, BatchResult{Source: id, ID: id, Err: fmt.Errorf("failed to write %s: %w", path, err)})
			continue
		}
		results = append(results, BatchResult{Source: id, ID: id, Path: path})
	}

	succeeded, _ := Summarize(results)
	slog.InfoContext(ctx, "Downloaded images", "succeeded", succeeded, "total", len(ids))
	return results, nil
}

// FileName returns a local file name for an image id that cannot escape
// its directory.
func FileName(id, contentType string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, id)
	if name == "." || name == ".." {
		name = "_"
	}
	return name + ExtensionFor(contentType)
}

func Summarize(results []BatchResult) (succeeded, failed int) {
	succeeded = lo.CountBy(results, func(r BatchResult) bool {
		return r.OK()
	})
	return succeeded, len(results) - succeeded
}
