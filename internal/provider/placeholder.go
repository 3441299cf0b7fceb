package provider

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// PlaceholderImage 本地占位图提供者
// 不依赖任何外部服务，画一张带场景文案的深色纯色图
// 作为远端图片生成反复失败后的兜底，也可单独用于离线调试
// 实现了 scene.ImageProvider 接口
type PlaceholderImage struct {
	width    int
	height   int
	fontPath string
}

// NewPlaceholderImage 创建占位图提供者
func NewPlaceholderImage(width, height int, fontPath string) *PlaceholderImage {
	if width <= 0 {
		width = 540
	}
	if height <= 0 {
		height = 960
	}
	return &PlaceholderImage{width: width, height: height, fontPath: fontPath}
}

// GenerateImage 画占位图并返回 PNG 字节
// 本方法不返回错误：编码失败时记录日志并返回空字节
func (p *PlaceholderImage) GenerateImage(_ context.Context, prompt, filename string) ([]byte, error) {
	dc := gg.NewContext(p.width, p.height)

	dc.SetRGB(0.12, 0.12, 0.16)
	dc.Clear()

	dc.SetFontFace(p.loadFace(28))
	dc.SetRGB(0.85, 0.85, 0.9)

	label := strings.TrimSuffix(filename, ".png")
	if label != "" {
		dc.DrawStringAnchored(label, float64(p.width)/2, float64(p.height)*0.4, 0.5, 0.5)
	}

	text := truncateRunes(prompt, 120)
	dc.SetFontFace(p.loadFace(18))
	dc.DrawStringWrapped(text, float64(p.width)/2, float64(p.height)*0.55, 0.5, 0.5,
		float64(p.width)*0.8, 1.5, gg.AlignCenter)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		log.Error().Err(err).Msg("占位图编码失败")
		return nil, nil
	}
	return buf.Bytes(), nil
}

// truncateRunes 按字符数截断，不从多字节字符中间切开
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// loadFace 加载配置字体，失败时回退到内置位图字体
func (p *PlaceholderImage) loadFace(size float64) font.Face {
	if p.fontPath != "" {
		if fontBytes, err := os.ReadFile(p.fontPath); err == nil {
			if parsed, err := truetype.Parse(fontBytes); err == nil {
				return truetype.NewFace(parsed, &truetype.Options{Size: size})
			}
		}
	}
	return basicfont.Face7x13
}
