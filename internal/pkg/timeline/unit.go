package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Millis 规范化的毫秒时间戳
// 所有时间一旦进入本包即为 Millis，单位推断只在边界处（ParseRaw）发生一次
type Millis int64

// Seconds 转换为秒（浮点）
func (m Millis) Seconds() float64 {
	return float64(m) / 1000.0
}

// secondsToMillisThreshold 数值单位推断阈值
// 低于该值的数值按秒处理，否则按毫秒处理。阈值取 1e5，
// 对应约 27.7 小时的秒表示，正常音频不会与毫秒表示冲突。
// 这是一个已知的近似（外部模型返回秒或毫秒且无元信息可区分）。
const secondsToMillisThreshold = 100000

// ParseClock 解析 "M:SS" 或 "M:SS.mmm" 形式的时间字符串
// 小数部分按毫秒位解析，最多取 3 位
func ParseClock(s string) (Millis, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock format: %q", s)
	}

	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}

	secParts := strings.SplitN(parts[1], ".", 2)
	seconds, err := strconv.Atoi(secParts[0])
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}

	millis := 0
	if len(secParts) == 2 {
		frac := secParts[1]
		if frac == "" {
			return 0, fmt.Errorf("invalid fraction in %q", s)
		}
		// 小数位按毫秒整数取值，不右补零（"07.5" 是 7s5ms），最多取 3 位
		if len(frac) > 3 {
			frac = frac[:3]
		}
		millis, err = strconv.Atoi(frac)
		if err != nil {
			return 0, fmt.Errorf("invalid fraction in %q", s)
		}
	}

	return Millis(minutes)*60_000 + Millis(seconds)*1000 + Millis(millis), nil
}

// FromNumber 将无单位数值规范化为毫秒
// 绝对值小于阈值视为秒，否则视为已是毫秒
func FromNumber(v float64) Millis {
	if math.Abs(v) < secondsToMillisThreshold {
		return Millis(math.Round(v * 1000))
	}
	return Millis(math.Round(v))
}

// ParseRaw 解析 JSON 解码后的任意时间值（string / json.Number / float64 / int）
// 返回规范化毫秒，恒为非负；负值与解析失败一样由调用方丢弃该条目（记日志，不致命）
//
// 字面量形式可用时优先于数量级推断：带小数点的字面量是秒的小数表示，
// 纯整数字面量已是毫秒。只有类型擦除后的 float64 才退回数量级推断
func ParseRaw(v any) (Millis, error) {
	switch t := v.(type) {
	case string:
		return parseLiteral(strings.TrimSpace(t))
	case json.Number:
		return parseLiteral(t.String())
	case float64:
		if t < 0 {
			return 0, fmt.Errorf("negative timestamp: %v", t)
		}
		return FromNumber(t), nil
	case int:
		if t < 0 {
			return 0, fmt.Errorf("negative timestamp: %d", t)
		}
		return Millis(t), nil
	case int64:
		if t < 0 {
			return 0, fmt.Errorf("negative timestamp: %d", t)
		}
		return Millis(t), nil
	case nil:
		return 0, fmt.Errorf("missing timestamp")
	default:
		return 0, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

// parseLiteral 解析时间字面量：M:SS[.mmm]、十进制秒或整数毫秒
func parseLiteral(lit string) (Millis, error) {
	if lit == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	if strings.Contains(lit, ":") {
		return ParseClock(lit)
	}
	if strings.ContainsAny(lit, ".eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid timestamp literal: %q", lit)
		}
		return FromNumber(f), nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid timestamp literal: %q", lit)
	}
	return Millis(n), nil
}
