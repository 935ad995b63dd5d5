// Package webhook 封装对外部 Webhook 端点（不透明远程过程）的调用。
// 端点 URL 属于部署机密，全部来自配置；本包不做重试、不做去重，
// 超时之外的可靠性语义由外部系统负责。
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape 标识 Webhook 响应体的已知形态。
// 历史上同一批端点先后返回过三种形态，所有调用点共享这一个解码契约，
// 不允许再各自做 ad hoc 的形态嗅探。
type Shape int

const (
	// ShapeUnknown 无法识别的形态，按空结果处理（不是错误）。
	ShapeUnknown Shape = iota
	// ShapeArray 裸 JSON 数组。
	ShapeArray
	// ShapeJSONString 对象包一层 json 字符串字段：{"json": "[...]"}。
	ShapeJSONString
	// ShapeUsersWrapper 旧版包装：{"users": [...]}。
	ShapeUsersWrapper
)

// envelopeProbe 用于探测对象形态的判别字段。
type envelopeProbe struct {
	JSON  string          `json:"json"`
	Users json.RawMessage `json:"users"`
}

// DecodeEnvelope 把三种已知响应形态归一化后解码进 v（必须是指向切片的指针）。
// 返回识别出的形态；无法识别时返回 ShapeUnknown 且 v 保持零值——
// 调用方据此得到空结果，而不是一个错误（见错误处理设计）。
func DecodeEnvelope(data []byte, v interface{}) (Shape, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ShapeUnknown, nil
	}

	// 1. 裸数组：第一个非空白字符是 '['
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, v); err != nil {
			return ShapeArray, fmt.Errorf("decode array envelope: %w", err)
		}
		return ShapeArray, nil
	}

	// 2. 对象形态：先探测判别字段
	if trimmed[0] == '{' {
		var probe envelopeProbe
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return ShapeUnknown, fmt.Errorf("probe envelope: %w", err)
		}
		if probe.JSON != "" {
			if err := json.Unmarshal([]byte(probe.JSON), v); err != nil {
				return ShapeJSONString, fmt.Errorf("decode json-string envelope: %w", err)
			}
			return ShapeJSONString, nil
		}
		if len(probe.Users) > 0 && !bytes.Equal(bytes.TrimSpace(probe.Users), []byte("null")) {
			if err := json.Unmarshal(probe.Users, v); err != nil {
				return ShapeUsersWrapper, fmt.Errorf("decode users envelope: %w", err)
			}
			return ShapeUsersWrapper, nil
		}
	}

	// 3. 其余一律视为空结果
	return ShapeUnknown, nil
}
