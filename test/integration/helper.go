//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 需要先启动服务：go run ./cmd/api，再执行 go test -tags integration ./test/integration/...
// BOOKSTORE_BASE_URL 可指定服务地址

const (
	// DefaultBaseURL 默认服务地址
	DefaultBaseURL = "http://localhost:8080"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// BaseURL 服务地址
func BaseURL() string {
	if u := os.Getenv("BOOKSTORE_BASE_URL"); u != "" {
		return u
	}
	return DefaultBaseURL
}

// ErrorBody 错误响应
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AuthorData 作者响应数据
type AuthorData struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// BookData 图书响应数据
type BookData struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	ISBN          string `json:"isbn"`
	Publisher     string `json:"publisher"`
	PublishedYear int    `json:"published_year"`
}

// Do 发送请求，返回状态码和响应体
// data为nil时不发送请求体
func Do(t *testing.T, method, path string, data interface{}) (int, []byte) {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, BaseURL()+path, body)
	require.NoError(t, err, "创建HTTP请求失败")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败，服务是否已启动？")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	return resp.StatusCode, raw
}

// DecodeJSON 解析响应体
func DecodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "解析JSON响应失败: %s", string(raw))
	return v
}

// UniqueName 生成唯一名称，避免重复运行时数据混淆
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// CreateTestAuthor 创建测试作者并返回
func CreateTestAuthor(t *testing.T, name string) AuthorData {
	t.Helper()

	status, raw := Do(t, http.MethodPost, "/authors", map[string]string{"name": name, "bio": "集成测试"})
	require.Equal(t, http.StatusCreated, status, "创建作者失败: %s", string(raw))
	return DecodeJSON[AuthorData](t, raw)
}
