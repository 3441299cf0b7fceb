package scene

import "strings"

// StripCodeFence 剥离模型回复外层的 Markdown 代码栅栏
// 兼容 ```json ... ``` 与 ``` ... ``` 两种包裹，无栅栏时原样返回
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+len("```"):]
	} else {
		return text
	}

	if end := strings.Index(text, "```"); end != -1 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}
