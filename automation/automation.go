package automation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const pdfTimeout = 60 * time.Second

// HTMLToPDF はヘッドレスブラウザで HTML を開き、PDF に変換したバイト列を返します。
// browserBin が空の場合は rod の launcher が見つけたブラウザを使います。
func HTMLToPDF(ctx context.Context, html, browserBin string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfTimeout)
	defer cancel()

	// Leakless(false) でセキュリティソフト対策
	l := launcher.New().
		Headless(true).
		Leakless(false)
	if browserBin != "" {
		l = l.Bin(browserBin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("failed to set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for page load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:       true,
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf stream: %w", err)
	}
	zap.L().Debug("pdf rendered", zap.Int("bytes", len(data)))
	return data, nil
}
