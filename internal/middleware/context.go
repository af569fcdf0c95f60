// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// requestIDContextKey はリクエストコンテキストにリクエストIDを格納するためのキー。
var requestIDContextKey = contextKey("request_id")

// RequestIDFromContext はコンテキストからリクエストIDを取り出す。未設定なら空文字列。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// ClientKey はレート制限とログに使うクライアント識別子を返す。
// 通常はRemoteAddrのホスト部を使う。trustForwardedFor が true の場合に限り
// X-Forwarded-For の先頭アドレスを優先する。このヘッダーはクライアントが自由に
// 付けられるため、信頼できるリバースプロキシの背後でのみ有効にすること。
func ClientKey(r *http.Request, trustForwardedFor bool) string {
	if !trustForwardedFor {
		return remoteHost(r)
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
