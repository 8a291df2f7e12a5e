package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bnema/followcheck/internal/adapters/transport/telegram"

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file info: %w", err)
	}
	if int64(file.FileSize) > b.cfg.MaxFileSize {
		return nil, errFileTooLarge
	}

	url := fmt.Sprintf(b.cfg.FileEndpoint, b.cfg.Token, file.FilePath)
	return fetch(ctx, b.files, url, b.cfg.MaxFileSize)
}

// fetch reads at most limit bytes from url and fails when the body is larger.
func fetch(ctx context.Context, client *resty.Client, url string, limit int64) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode())
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errFileTooLarge
	}
	return data, nil
}

func instrument(client *resty.Client) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), "telegram.download")
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		span := trace.SpanFromContext(resp.Request.Context())
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
		if resp.StatusCode() >= http.StatusBadRequest {
			span.SetStatus(codes.Error, resp.Status())
		}
		span.End()
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
	})
}
