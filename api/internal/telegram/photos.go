package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"mediclick/api/internal/analysis"
	"mediclick/api/internal/util"
)

var httpc = &http.Client{Timeout: 60 * time.Second}

func (r *Router) acceptImage(ctx context.Context, cid int64, fileID, filename, mimeType, caption string) {
	link, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.log().Error("telegram get file failed", zap.Int64("chat_id", cid), zap.Error(err))
		r.SendError(cid, errors.New("could not fetch the photo"))
		return
	}
	img, err := download(ctx, link, r.MaxImageBytes)
	if err != nil {
		r.log().Error("telegram download failed", zap.Int64("chat_id", cid), zap.Error(err))
		r.SendError(cid, errors.New("could not download the photo"))
		return
	}
	if filename == "" {
		filename = fileNameFromURL(link)
	}

	res, err := r.Svc.Analyze(ctx, analysis.Request{
		Image: &analysis.Image{
			Data:     img,
			MIMEType: util.PickMIME(mimeType, img),
			Filename: filename,
		},
		Query: caption,
	})
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.SendResult(cid, res)
}

func download(ctx context.Context, link string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		// the direct URL embeds the bot token
		return nil, fmt.Errorf("download: %s", strings.ReplaceAll(err.Error(), link, "<file url>"))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}
	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(b)) > limit {
		return nil, fmt.Errorf("download: file exceeds %d bytes", limit)
	}
	return b, nil
}

func fileNameFromURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "photo.jpg"
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "photo.jpg"
	}
	return name
}

func isImageMIME(m string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(m)), "image/")
}
