// Package http は外部API呼び出し用のHTTPクライアント構成を提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API呼び出し用のタイムアウト付きHTTPクライアントを作成します。
// http.DefaultClientにはタイムアウトがないため、外部呼び出しには必ずこちらを使用します。
// Transportは接続の安定性とアイドル接続の再利用のために明示的に設定しています。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
